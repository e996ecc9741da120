package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/tablekit/go-auth"
)

// restaurantd never issues tokens, it only verifies them, so the signing
// secret must match the one identityd signs with.
type Config struct {
	Address         string   `env:"HTTP_ADDR" envDefault:":8081"`
	Environment     string   `env:"APP_ENV" envDefault:"development"`
	DatabaseDSN     string   `env:"DATABASE_DSN" envDefault:"file:restaurants.db?cache=shared&mode=rwc"`
	SigningKey      string   `env:"JWT_SECRET"`
	TokenExpiration int      `env:"TOKEN_TTL_HOURS" envDefault:"1"`
	Issuer          string   `env:"JWT_ISSUER" envDefault:"identityd"`
	Audience        []string `env:"JWT_AUDIENCE" envSeparator:","`
	Debug           bool     `env:"DEBUG" envDefault:"false"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("unable to parse environment: %w", err)
	}

	if cfg.SigningKey == "" {
		return nil, fmt.Errorf("JWT_SECRET is required: restaurantd must share the issuer signing key")
	}

	return cfg, nil
}

func (c *Config) GetSigningKey() string    { return c.SigningKey }
func (c *Config) GetSigningMethod() string { return "HS256" }
func (c *Config) GetContextKey() string    { return "user" }
func (c *Config) GetTokenExpiration() int  { return c.TokenExpiration }
func (c *Config) GetTokenLookup() string   { return "header:Authorization" }
func (c *Config) GetAuthScheme() string    { return "Bearer" }
func (c *Config) GetIssuer() string        { return c.Issuer }
func (c *Config) GetAudience() []string    { return c.Audience }

// Tokens are accepted on claim contents alone; this service has no access to
// the identity store to re-resolve subjects.
func (c *Config) GetVerificationMode() string {
	return auth.VerificationModeTrustClaims
}

var _ auth.Config = (*Config)(nil)
