package main

import (
	"fmt"

	"github.com/stackskills/platform/account"
	"github.com/stackskills/platform/auth/password"
	"github.com/stackskills/platform/auth/ratelimit"
	"github.com/stackskills/platform/auth/token"
	"github.com/stackskills/platform/config"
	"github.com/stackskills/platform/database"
	"github.com/stackskills/platform/email"
	"github.com/stackskills/platform/redis"
	"github.com/stackskills/platform/server"
)

// ObservabilityConfig enables OTLP export of metrics and traces.
type ObservabilityConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure bool   `yaml:"insecure" mapstructure:"insecure"`
}

// AppConfig is the full configuration for the API service.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config       `yaml:"server" mapstructure:"server"`
	Token         token.Config        `yaml:"token" mapstructure:"token"`
	Password      password.Config     `yaml:"password" mapstructure:"password"`
	RateLimit     ratelimit.Config    `yaml:"ratelimit" mapstructure:"ratelimit"`
	Account       account.Config      `yaml:"account" mapstructure:"account"`
	Email         email.Config        `yaml:"email" mapstructure:"email"`
	Database      database.Config     `yaml:"database" mapstructure:"database"`
	Redis         redis.Config        `yaml:"redis" mapstructure:"redis"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults applies defaults across all sections.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "api"
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Token.ApplyDefaults()
	c.Password.ApplyDefaults()
	c.RateLimit.ApplyDefaults()
	c.Account.ApplyDefaults()
	c.Email.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Redis.ApplyDefaults()
	if c.Observability.Endpoint == "" {
		c.Observability.Endpoint = "localhost:4318"
	}
}

// Validate validates all sections. Secrets (token signing key, pepper, admin
// registration token) are fatal when missing.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Token.Validate(); err != nil {
		return err
	}
	if err := c.Password.Validate(); err != nil {
		return err
	}
	if err := c.RateLimit.Validate(); err != nil {
		return err
	}
	if err := c.Account.Validate(); err != nil {
		return fmt.Errorf("account: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}
