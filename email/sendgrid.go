package email

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/stackskills/platform/logger"
)

// Config holds SendGrid delivery configuration.
type Config struct {
	APIKey   string `yaml:"api_key" mapstructure:"api_key"`
	From     string `yaml:"from" mapstructure:"from"`
	FromName string `yaml:"from_name" mapstructure:"from_name"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.FromName == "" {
		c.FromName = "StackSkills"
	}
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("email api_key is required")
	}
	if c.From == "" {
		return fmt.Errorf("email from address is required")
	}
	return nil
}

// SendGridSender delivers messages through the SendGrid v3 API.
type SendGridSender struct {
	client *sendgrid.Client
	cfg    Config
	log    *logger.Logger
}

// NewSendGridSender creates a SendGrid-backed Sender.
func NewSendGridSender(cfg Config, log *logger.Logger) (*SendGridSender, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("email config: %w", err)
	}
	return &SendGridSender{
		client: sendgrid.NewSendClient(cfg.APIKey),
		cfg:    cfg,
		log:    log.WithComponent("email"),
	}, nil
}

// Send delivers the message. An accepted response from SendGrid is any 2xx.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	from := mail.NewEmail(s.cfg.FromName, s.cfg.From)
	to := mail.NewEmail(msg.ToName, msg.To)
	m := mail.NewSingleEmail(from, msg.Subject, to, msg.PlainBody, msg.HTMLBody)

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sendgrid send: unexpected status %d", resp.StatusCode)
	}

	s.log.Debug("Email sent", logger.Fields(logger.FieldEmail, msg.To, "subject", msg.Subject))
	return nil
}

var _ Sender = (*SendGridSender)(nil)
