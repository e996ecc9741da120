package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/tablekit/go-auth"
)

func newTestIdentity(id, email, role string) *MockIdentity {
	identity := &MockIdentity{}
	identity.On("ID").Return(id)
	identity.On("Email").Return(email)
	identity.On("Role").Return(role)
	return identity
}

func TestTokenService_Generate(t *testing.T) {
	signingKey := []byte("test-signing-key")
	issuer := "test-issuer"
	audience := jwt.ClaimStrings{"test-audience"}

	service := auth.NewTokenService(signingKey, 1, issuer, audience, noopLogger{})

	t.Run("generates a signed token carrying the identity snapshot", func(t *testing.T) {
		identity := newTestIdentity("user-123", "person@example.com", auth.RoleAdmin)

		tokenString, err := service.Generate(identity)

		assert.NoError(t, err)
		assert.NotEmpty(t, tokenString)

		token, err := jwt.ParseWithClaims(tokenString, &auth.JWTClaims{}, func(token *jwt.Token) (any, error) {
			return signingKey, nil
		})
		assert.NoError(t, err)
		assert.True(t, token.Valid)

		claims, ok := token.Claims.(*auth.JWTClaims)
		assert.True(t, ok)
		assert.Equal(t, "user-123", claims.Subject())
		assert.Equal(t, "person@example.com", claims.Email())
		assert.Equal(t, auth.RoleAdmin, claims.Role())
		assert.Equal(t, issuer, claims.Issuer)
		assert.Equal(t, audience, claims.Audience)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("sets the configured expiration", func(t *testing.T) {
		identity := newTestIdentity("user-123", "person@example.com", auth.RoleUser)

		longLived := auth.NewTokenService(signingKey, 24, issuer, audience, noopLogger{})
		tokenString, err := longLived.Generate(identity)
		assert.NoError(t, err)

		claims, err := longLived.Validate(tokenString)
		assert.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.Expires(), time.Minute)
	})

	t.Run("defaults the expiration to one hour", func(t *testing.T) {
		identity := newTestIdentity("user-123", "person@example.com", auth.RoleUser)

		defaulted := auth.NewTokenService(signingKey, 0, issuer, audience, nil)
		tokenString, err := defaulted.Generate(identity)
		assert.NoError(t, err)

		claims, err := defaulted.Validate(tokenString)
		assert.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), claims.Expires(), time.Minute)
	})
}

func TestTokenService_Validate(t *testing.T) {
	signingKey := []byte("test-signing-key")
	issuer := "test-issuer"
	audience := jwt.ClaimStrings{"test-audience"}

	service := auth.NewTokenService(signingKey, 1, issuer, audience, noopLogger{})

	t.Run("round trips a generated token", func(t *testing.T) {
		identity := newTestIdentity("user-123", "person@example.com", auth.RoleUser)

		tokenString, err := service.Generate(identity)
		assert.NoError(t, err)

		claims, err := service.Validate(tokenString)
		assert.NoError(t, err)
		assert.Equal(t, "user-123", claims.Subject())
		assert.Equal(t, "person@example.com", claims.Email())
		assert.Equal(t, auth.RoleUser, claims.Role())
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		past := time.Now().Add(-2 * time.Hour)
		expired := &auth.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				Subject:   "user-123",
				Audience:  audience,
				IssuedAt:  jwt.NewNumericDate(past),
				ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
			},
		}

		tokenString, err := service.SignClaims(expired)
		assert.NoError(t, err)

		_, err = service.Validate(tokenString)
		assert.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrTokenExpired)
		assert.True(t, auth.IsTokenExpiredError(err))
	})

	t.Run("rejects a token signed with a different key", func(t *testing.T) {
		forger := auth.NewTokenService([]byte("attacker-key"), 1, issuer, audience, noopLogger{})
		identity := newTestIdentity("user-123", "person@example.com", auth.RoleUser)

		tokenString, err := forger.Generate(identity)
		assert.NoError(t, err)

		_, err = service.Validate(tokenString)
		assert.Error(t, err)
		assert.True(t, auth.IsMalformedError(err))
	})

	t.Run("rejects a tampered token", func(t *testing.T) {
		identity := newTestIdentity("user-123", "person@example.com", auth.RoleUser)

		tokenString, err := service.Generate(identity)
		assert.NoError(t, err)

		parts := strings.Split(tokenString, ".")
		assert.Len(t, parts, 3)
		tampered := parts[0] + ".eyJyb2xlIjoiQURNSU4ifQ." + parts[2]

		_, err = service.Validate(tampered)
		assert.Error(t, err)
		assert.True(t, auth.IsMalformedError(err))
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := service.Validate("not-a-token")
		assert.Error(t, err)
		assert.True(t, auth.IsMalformedError(err))
	})

	t.Run("rejects a token with the wrong issuer", func(t *testing.T) {
		other := auth.NewTokenService(signingKey, 1, "another-issuer", audience, noopLogger{})
		identity := newTestIdentity("user-123", "person@example.com", auth.RoleUser)

		tokenString, err := other.Generate(identity)
		assert.NoError(t, err)

		_, err = service.Validate(tokenString)
		assert.Error(t, err)
	})

	t.Run("expired and malformed stay distinguishable", func(t *testing.T) {
		past := time.Now().Add(-2 * time.Hour)
		expired := &auth.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				Subject:   "user-123",
				Audience:  audience,
				IssuedAt:  jwt.NewNumericDate(past),
				ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
			},
		}
		tokenString, err := service.SignClaims(expired)
		assert.NoError(t, err)

		_, expiredErr := service.Validate(tokenString)
		_, malformedErr := service.Validate("garbage")

		assert.True(t, auth.IsTokenExpiredError(expiredErr))
		assert.False(t, auth.IsTokenExpiredError(malformedErr))
		assert.True(t, auth.IsMalformedError(malformedErr))
		assert.False(t, auth.IsMalformedError(expiredErr))
	})
}

func TestTokenService_SignClaims(t *testing.T) {
	service := auth.NewTokenService([]byte("test-signing-key"), 1, "", nil, noopLogger{})

	t.Run("rejects nil claims", func(t *testing.T) {
		_, err := service.SignClaims(nil)
		assert.Error(t, err)
	})
}
