package email

import (
	"context"

	"github.com/stackskills/platform/logger"
)

// LogSender logs messages instead of delivering them. Used in development
// when no SendGrid key is configured.
type LogSender struct {
	log *logger.Logger
}

// NewLogSender creates a Sender that only logs.
func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log.WithComponent("email")}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.log.Info("Email delivery skipped (log sender)", logger.Fields(
		logger.FieldEmail, msg.To,
		"subject", msg.Subject,
		"body", msg.PlainBody,
	))
	return nil
}

var _ Sender = (*LogSender)(nil)
