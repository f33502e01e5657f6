package account

import (
	"fmt"
	"time"
)

// Config holds account service configuration.
type Config struct {
	// AdminRegistrationToken is the shared secret required to register an
	// ADMIN account, on top of an authenticated ADMIN session. Required.
	AdminRegistrationToken string `yaml:"admin_registration_token" mapstructure:"admin_registration_token"`

	// OTPTTL is how long an email verification code stays valid.
	OTPTTL time.Duration `yaml:"otp_ttl" mapstructure:"otp_ttl"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.OTPTTL == 0 {
		c.OTPTTL = 15 * time.Minute
	}
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if c.AdminRegistrationToken == "" {
		return fmt.Errorf("account admin_registration_token is required")
	}
	if c.OTPTTL <= 0 {
		return fmt.Errorf("account otp_ttl must be positive")
	}
	return nil
}
