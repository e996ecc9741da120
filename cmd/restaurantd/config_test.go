package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tablekit/go-auth"
)

func TestLoadConfig(t *testing.T) {
	t.Run("refuses to start without the shared signing key", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")

		_, err := LoadConfig()

		assert.ErrorContains(t, err, "JWT_SECRET is required")
	})

	t.Run("always trusts claims without resolving identities", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "shared-secret")

		cfg, err := LoadConfig()

		assert.NoError(t, err)
		assert.Equal(t, auth.VerificationModeTrustClaims, cfg.GetVerificationMode())
		assert.Equal(t, ":8081", cfg.Address)
		assert.Equal(t, "identityd", cfg.GetIssuer())
	})
}
