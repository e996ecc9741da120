package auth

import (
	"net/http"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/tablekit/go-auth/middleware/jwtware"
)

// RouteAuthenticator wires the token middleware and the error boundary for a
// service. The routing collaborator must run ProtectedRoute before any
// protected business logic; the middleware validates first and role-checks
// second, rejecting before the handler in either failure.
type RouteAuthenticator struct {
	auth         Authenticator
	cfg          Config
	guard        *AccessGuard
	Logger       Logger
	ErrorHandler func(c router.Context, err error) error
}

func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	a := &RouteAuthenticator{
		cfg:    cfg,
		auth:   auther,
		guard:  NewAccessGuard(),
		Logger: defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler

	return a, nil
}

func (a *RouteAuthenticator) WithLogger(logger Logger) *RouteAuthenticator {
	if logger != nil {
		a.Logger = logger
		a.guard.WithLogger(logger)
	}
	return a
}

// ProtectedRoute guards a route with token validation plus the declared role
// set. An empty set admits any authenticated caller. Role decisions run
// through the access guard, the same one RequireRoles mounts.
func (a *RouteAuthenticator) ProtectedRoute(requiredRoles ...Role) router.MiddlewareFunc {
	return jwtware.New(jwtware.Config{
		ErrorHandler: a.authErrorHandler,
		SigningKey: jwtware.SigningKey{
			Key:    []byte(a.cfg.GetSigningKey()),
			JWTAlg: a.cfg.GetSigningMethod(),
		},
		AuthScheme:      a.cfg.GetAuthScheme(),
		ContextKey:      a.cfg.GetContextKey(),
		TokenLookup:     a.cfg.GetTokenLookup(),
		TokenValidator:  tokenValidatorAdapter{auth: a.auth},
		RequiredRoles:   requiredRoles,
		RoleChecker:     GuardRoleChecker(a.guard),
		ContextEnricher: ContextEnricherAdapter,
	})
}

// Login runs the credential check and returns the signed token
func (a *RouteAuthenticator) Login(ctx router.Context, payload LoginPayload) (string, error) {
	token, err := a.auth.Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("Login error", "error", err)
		return "", err
	}

	return token, nil
}

// authErrorHandler answers for the middleware: a single unauthorized shape
// for missing, malformed, and expired tokens; forbidden for out-of-role
// callers. The distinct internal kinds are logged before being collapsed.
func (a *RouteAuthenticator) authErrorHandler(c router.Context, err error) error {
	var roleErr *jwtware.RoleError
	if errors.As(err, &roleErr) {
		a.Logger.Info(
			"request denied: insufficient role",
			"role", roleErr.Role,
			"required", roleErr.Required,
			"path", c.Path(),
		)
		return c.JSON(http.StatusForbidden, map[string]any{
			"error":          "forbidden",
			"required_roles": roleErr.Required,
		})
	}

	switch {
	case errors.Is(err, jwtware.ErrJWTMissingOrMalformed):
		a.Logger.Info("request rejected: no bearer token", "path", c.Path())
	case IsTokenExpiredError(err):
		a.Logger.Info("request rejected: token expired", "path", c.Path())
	default:
		a.Logger.Info("request rejected: token invalid", "path", c.Path(), "error", err)
	}

	return c.JSON(http.StatusUnauthorized, map[string]any{
		"error": "unauthorized",
	})
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Info(
		"request error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	return WriteError(c, a.Logger, err)
}

type tokenValidatorAdapter struct {
	auth Authenticator
}

func (t tokenValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := t.auth.ClaimsFromToken(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// WriteError maps the error taxonomy onto the JSON boundary. Expected,
// user-facing outcomes keep their distinct shapes; infrastructure faults are
// logged with detail and answered with a generic server error.
func WriteError(c router.Context, logger Logger, err error) error {
	if logger == nil {
		logger = defLogger{}
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		logger.Error("unexpected error at boundary", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"error": "internal_error",
		})
	}

	switch richErr.Category {
	case errors.CategoryConflict:
		return c.JSON(http.StatusConflict, map[string]any{
			"error":   "identity_conflict",
			"message": richErr.Message,
		})
	case errors.CategoryAuth:
		return c.JSON(http.StatusUnauthorized, map[string]any{
			"error": "invalid_credentials",
		})
	case errors.CategoryAuthz:
		return c.JSON(http.StatusForbidden, map[string]any{
			"error": "forbidden",
		})
	case errors.CategoryNotFound:
		return c.JSON(http.StatusNotFound, map[string]any{
			"error":   "not_found",
			"message": richErr.Message,
		})
	case errors.CategoryValidation, errors.CategoryBadInput:
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":   "validation_error",
			"message": richErr.Message,
		})
	default:
		logger.Error(
			"internal error at boundary",
			"error", richErr.Message,
			"category", richErr.Category,
			"details", print.MaybePrettyJSON(richErr.Metadata),
		)
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"error": "internal_error",
		})
	}
}
