package auth

import (
	"net/http"

	"github.com/goliatone/go-router"
	"github.com/tablekit/go-auth/middleware/jwtware"
)

// RoleClaims is the slice of validated claims the guard needs for a decision.
// Both AuthClaims and the middleware's claims interface satisfy it.
type RoleClaims interface {
	Subject() string
	Role() string
	HasRole(role string) bool
}

// AccessGuard decides admit/deny from validated claims and the role set a
// route declares. It must run strictly after token validation; the middleware
// in this package and in middleware/jwtware enforces that ordering.
type AccessGuard struct {
	logger Logger
}

func NewAccessGuard() *AccessGuard {
	return &AccessGuard{logger: defLogger{}}
}

func (g *AccessGuard) WithLogger(l Logger) *AccessGuard {
	if l != nil {
		g.logger = l
	}
	return g
}

// Authorize admits when the required role set is empty (the operation is
// public once authenticated) or when the claims role is a member of the set.
func (g *AccessGuard) Authorize(claims RoleClaims, requiredRoles ...Role) error {
	if claims == nil {
		return ErrTokenMissing
	}

	if len(requiredRoles) == 0 {
		return nil
	}

	if RoleIn(claims.Role(), requiredRoles) {
		return nil
	}

	g.logger.Info(
		"access denied",
		"subject", claims.Subject(),
		"role", claims.Role(),
		"required", requiredRoles,
	)

	return ErrForbidden.Clone().WithMetadata(map[string]any{
		"required_roles": requiredRoles,
	})
}

// GuardRoleChecker adapts the guard into the token middleware's role hook so
// every route, in every service, runs the same admission decision. A denial
// is reported as the middleware's RoleError; boundaries map it to forbidden.
func GuardRoleChecker(guard *AccessGuard) func(claims jwtware.AuthClaims, required []string) error {
	if guard == nil {
		guard = NewAccessGuard()
	}
	return func(claims jwtware.AuthClaims, required []string) error {
		if err := guard.Authorize(claims, required...); err != nil {
			if claims == nil {
				return err
			}
			return &jwtware.RoleError{Required: required, Role: claims.Role()}
		}
		return nil
	}
}

// RequireRoles is the routing glue: it reads the claims the token middleware
// stored in the request context and runs the guard before the handler. It
// never validates tokens itself; requests that skipped the token middleware
// are rejected outright.
func RequireRoles(guard *AccessGuard, requiredRoles ...Role) router.MiddlewareFunc {
	if guard == nil {
		guard = NewAccessGuard()
	}
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			claims, ok := GetClaims(ctx.Context())
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, map[string]any{
					"error": "unauthorized",
				})
			}

			if err := guard.Authorize(claims, requiredRoles...); err != nil {
				return ctx.JSON(http.StatusForbidden, map[string]any{
					"error":          "forbidden",
					"required_roles": requiredRoles,
				})
			}

			return next(ctx)
		}
	}
}
