package ratelimit

import (
	"errors"
	"time"
)

// Config configures the credential-attempt limiter.
// Loadable from YAML/env via mapstructure tags.
type Config struct {
	// MaxAttempts is the number of attempts permitted per identifier within
	// a window (default: 5). The attempt after the cap is denied.
	MaxAttempts int `mapstructure:"max_attempts"`

	// Window is the rolling time span over which attempts are counted
	// (default: 15m).
	Window time.Duration `mapstructure:"window"`

	// SweepInterval controls how often stale identifiers are evicted
	// (default: 5m).
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 5
	}
	if c.Window == 0 {
		c.Window = 15 * time.Minute
	}
	if c.SweepInterval == 0 {
		c.SweepInterval = 5 * time.Minute
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.MaxAttempts < 1 {
		return errors.New("ratelimit: max_attempts must be at least 1")
	}
	if c.Window <= 0 {
		return errors.New("ratelimit: window must be positive")
	}
	return nil
}
