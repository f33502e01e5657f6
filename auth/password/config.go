package password

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config configures password hashing behavior.
// Loadable from YAML/env via mapstructure tags.
type Config struct {
	// Pepper is the server-side secret appended to every password before
	// hashing, distinct from the per-password salt bcrypt generates.
	// Required: there is deliberately no fallback value — a defaulted pepper
	// protects nothing, so startup fails without one.
	Pepper string `mapstructure:"pepper"`

	// Cost is the bcrypt cost factor (default: 15, i.e. 2^15 iterations,
	// tuned for >=100ms per hash on reference hardware).
	Cost int `mapstructure:"cost"`

	// JitterMin and JitterMax bound the randomized delay applied to every
	// hash/compare path (defaults: 100ms and 500ms). The delay makes the
	// cheap rejection paths indistinguishable by latency from the expensive
	// hashing path.
	JitterMin time.Duration `mapstructure:"jitter_min"`
	JitterMax time.Duration `mapstructure:"jitter_max"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
// The pepper has no default on purpose.
func (c *Config) ApplyDefaults() {
	if c.Cost == 0 {
		c.Cost = 15
	}
	if c.JitterMin == 0 && c.JitterMax == 0 {
		c.JitterMin = 100 * time.Millisecond
		c.JitterMax = 500 * time.Millisecond
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Pepper == "" {
		return errors.New("password: pepper is required and has no default")
	}
	if c.Cost < bcrypt.MinCost || c.Cost > bcrypt.MaxCost {
		return fmt.Errorf("password: cost must be between %d and %d (got: %d)", bcrypt.MinCost, bcrypt.MaxCost, c.Cost)
	}
	if c.JitterMin < 0 || c.JitterMax <= c.JitterMin {
		return errors.New("password: jitter_max must be greater than jitter_min")
	}
	return nil
}
