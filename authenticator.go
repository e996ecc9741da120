package auth

import (
	"context"
	"reflect"
)

// Auther orchestrates the identity provider, the registration handler, and
// the token service. It keeps no per-request state.
type Auther struct {
	provider       IdentityProvider
	registrar      *RegisterUserHandler
	signingKey     []byte
	logger         Logger
	tokenService   TokenService
	tokenValidator TokenValidator
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, repo RepositoryManager, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		provider:     provider,
		registrar:    NewRegisterUserHandler(repo),
		signingKey:   []byte(opts.GetSigningKey()),
		logger:       defLogger{},
		tokenService: tokenService,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenValidator sets a custom token validator, e.g. a resolve-mode
// validator that re-reads the identity store per token.
func (s *Auther) WithTokenValidator(validator TokenValidator) *Auther {
	s.tokenValidator = validator
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Register creates a new identity and returns it without the password hash
func (s *Auther) Register(ctx context.Context, email, password string, role Role) (Identity, error) {
	user, err := s.registrar.Execute(ctx, RegisterUserMessage{
		Email:    email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		s.logger.Warn("Register failed", "email", email, "error", err)
		return nil, err
	}

	s.logger.Info("Register succeeded", "user_id", user.ID.String())
	return user.Identity(), nil
}

// Login validates the credentials and returns a signed bearer token
func (s *Auther) Login(ctx context.Context, email, password string) (string, error) {
	identity, err := s.provider.VerifyIdentity(ctx, email, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		return "", err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return "", ErrMismatchedHashAndPassword
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("Login token generation failed", "error", err)
		return "", err
	}

	return token, nil
}

// ClaimsFromToken validates a raw bearer token and returns its claims
func (s Auther) ClaimsFromToken(raw string) (AuthClaims, error) {
	validator := s.tokenValidator
	if validator == nil {
		validator = s.tokenService
	}

	claims, err := validator.Validate(raw)
	if err != nil {
		s.logger.Error("ClaimsFromToken validation failed", "error", err)
		return nil, err
	}

	return claims, nil
}

// IdentityFromClaims resolves the full identity behind validated claims
func (s *Auther) IdentityFromClaims(ctx context.Context, claims AuthClaims) (Identity, error) {
	identity, err := s.provider.FindIdentityByID(ctx, claims.Subject())
	if err != nil {
		s.logger.Error("IdentityFromClaims find identity by id", "error", err)
		return nil, err
	}

	return identity, nil
}

var _ Authenticator = (*Auther)(nil)
