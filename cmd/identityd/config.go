package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/tablekit/go-auth"
)

// insecureDevSecret is only ever used outside production, and loudly.
const insecureDevSecret = "dev-only-insecure-signing-key"

type Config struct {
	Address          string   `env:"HTTP_ADDR" envDefault:":8080"`
	Environment      string   `env:"APP_ENV" envDefault:"development"`
	DatabaseDSN      string   `env:"DATABASE_DSN" envDefault:"file:identity.db?cache=shared&mode=rwc"`
	SigningKey       string   `env:"JWT_SECRET"`
	TokenExpiration  int      `env:"TOKEN_TTL_HOURS" envDefault:"1"`
	Issuer           string   `env:"JWT_ISSUER" envDefault:"identityd"`
	Audience         []string `env:"JWT_AUDIENCE" envSeparator:","`
	VerificationMode string   `env:"TOKEN_VERIFICATION_MODE" envDefault:"resolve"`
	Debug            bool     `env:"DEBUG" envDefault:"false"`
}

// LoadConfig reads the environment. A missing signing secret is fatal in
// production; anywhere else we fall back to a flagged insecure default so
// local development works out of the box.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("unable to parse environment: %w", err)
	}

	if cfg.SigningKey == "" {
		if cfg.Environment == "production" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.SigningKey = insecureDevSecret
	}

	return cfg, nil
}

// UsingInsecureDefault reports whether the fallback secret is in play so the
// service can warn at startup.
func (c *Config) UsingInsecureDefault() bool {
	return c.SigningKey == insecureDevSecret
}

func (c *Config) GetSigningKey() string     { return c.SigningKey }
func (c *Config) GetSigningMethod() string  { return "HS256" }
func (c *Config) GetContextKey() string     { return "user" }
func (c *Config) GetTokenExpiration() int   { return c.TokenExpiration }
func (c *Config) GetTokenLookup() string    { return "header:Authorization" }
func (c *Config) GetAuthScheme() string     { return "Bearer" }
func (c *Config) GetIssuer() string         { return c.Issuer }
func (c *Config) GetAudience() []string     { return c.Audience }
func (c *Config) GetVerificationMode() string {
	return c.VerificationMode
}

var _ auth.Config = (*Config)(nil)
