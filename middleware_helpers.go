package auth

import (
	"context"

	"github.com/tablekit/go-auth/middleware/jwtware"
)

// ContextEnricherAdapter adapts jwtware.AuthClaims to auth.AuthClaims and
// stores the claims in the standard context so that guards and handlers
// downstream read them by value, never from ambient state.
func ContextEnricherAdapter(c context.Context, claims jwtware.AuthClaims) context.Context {
	authClaims, ok := claims.(AuthClaims)
	if !ok {
		return c
	}

	return WithClaimsContext(c, authClaims)
}
