package token

import (
	"errors"
	"time"
)

// MinSecretLength is the minimum accepted HMAC signing key length in bytes.
// A shorter key is a fatal configuration error, not a per-request error.
const MinSecretLength = 32

// Config configures the token service.
// Loadable from YAML/env via mapstructure tags.
type Config struct {
	// Secret is the HMAC-SHA256 signing key. Required, at least 32 bytes.
	Secret string `mapstructure:"secret"`

	// Issuer is the "iss" claim stamped on every token (default: "stackskills").
	Issuer string `mapstructure:"issuer"`

	// Audience is the "aud" claim stamped on every token
	// (default: "stackskills-users").
	Audience string `mapstructure:"audience"`

	// TokenTTL is the lifetime of issued tokens (default: 7d).
	TokenTTL time.Duration `mapstructure:"token_ttl"`

	// RefreshWindow is the remaining-lifetime threshold below which a token
	// becomes eligible for refresh (default: 1h). Tokens with more life left
	// are not rotated.
	RefreshWindow time.Duration `mapstructure:"refresh_window"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
// The secret has no default on purpose.
func (c *Config) ApplyDefaults() {
	if c.Issuer == "" {
		c.Issuer = "stackskills"
	}
	if c.Audience == "" {
		c.Audience = "stackskills-users"
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = 7 * 24 * time.Hour
	}
	if c.RefreshWindow == 0 {
		c.RefreshWindow = time.Hour
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if len(c.Secret) < MinSecretLength {
		return errors.New("token: secret must be at least 32 bytes")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token: token_ttl must be positive")
	}
	if c.RefreshWindow <= 0 || c.RefreshWindow >= c.TokenTTL {
		return errors.New("token: refresh_window must be positive and below token_ttl")
	}
	return nil
}
