package auth

import "github.com/google/uuid"

func newTokenID() string {
	return uuid.NewString()
}

// HasUserUUID reports whether the claims subject parses as a UUID.
func HasUserUUID(claims AuthClaims) bool {
	if claims == nil {
		return false
	}
	_, err := uuid.Parse(claims.Subject())
	return err == nil
}
