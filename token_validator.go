package auth

import "context"

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	if f == nil {
		return nil, ErrTokenMalformed
	}
	return f(tokenString)
}

// IdentityResolvingValidator wraps a stateless validator and re-reads the
// identity record behind the claims subject. A token whose subject no longer
// resolves is rejected even if its signature and expiry are fine. Services
// that trust claims alone should use the base validator directly.
type IdentityResolvingValidator struct {
	base     TokenValidator
	provider IdentityProvider
	logger   Logger
}

// NewIdentityResolvingValidator builds a resolve-mode validator.
func NewIdentityResolvingValidator(base TokenValidator, provider IdentityProvider, logger Logger) *IdentityResolvingValidator {
	if logger == nil {
		logger = defLogger{}
	}
	return &IdentityResolvingValidator{
		base:     base,
		provider: provider,
		logger:   logger,
	}
}

// Validate satisfies the TokenValidator interface. The identity lookup uses a
// background context; resolution happens outside any request-scoped deadline
// because the middleware API carries no context through this interface.
func (v *IdentityResolvingValidator) Validate(tokenString string) (AuthClaims, error) {
	claims, err := v.base.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	if _, err := v.provider.FindIdentityByID(context.Background(), claims.Subject()); err != nil {
		v.logger.Warn("token subject no longer resolves to an identity", "subject", claims.Subject(), "error", err)
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// NewTokenVerifier builds the validator for the configured verification mode.
// VerificationModeResolve requires a provider; VerificationModeTrustClaims
// (and the empty default) returns the stateless service as-is.
func NewTokenVerifier(cfg Config, service TokenService, provider IdentityProvider, logger Logger) TokenValidator {
	if cfg.GetVerificationMode() == VerificationModeResolve && provider != nil {
		return NewIdentityResolvingValidator(service, provider, logger)
	}
	return service
}
