package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Login attempt results recorded on auth.login.total.
const (
	LoginSuccess     = "success"
	LoginBadPassword = "bad_password"
	LoginUnknownUser = "unknown_user"
	LoginRateLimited = "rate_limited"
)

// Token verification results recorded on auth.token.verify.total.
const (
	TokenValid   = "valid"
	TokenInvalid = "invalid"
	TokenRevoked = "revoked"
)

// AuthMetrics holds the authentication instruments.
type AuthMetrics struct {
	loginTotal       metric.Int64Counter
	rateLimitDenials metric.Int64Counter
	tokenVerifyTotal metric.Int64Counter
}

// NewAuthMetrics creates the authentication instruments on the given meter.
func NewAuthMetrics(meter metric.Meter) (*AuthMetrics, error) {
	loginTotal, err := meter.Int64Counter("auth.login.total",
		metric.WithDescription("Login attempts by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.login.total counter: %w", err)
	}

	rateLimitDenials, err := meter.Int64Counter("auth.ratelimit.denied.total",
		metric.WithDescription("Requests denied by the attempt rate limiter"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.ratelimit.denied.total counter: %w", err)
	}

	tokenVerifyTotal, err := meter.Int64Counter("auth.token.verify.total",
		metric.WithDescription("Token verifications by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.token.verify.total counter: %w", err)
	}

	return &AuthMetrics{
		loginTotal:       loginTotal,
		rateLimitDenials: rateLimitDenials,
		tokenVerifyTotal: tokenVerifyTotal,
	}, nil
}

// RecordLogin records a login attempt with its result.
func (m *AuthMetrics) RecordLogin(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.loginTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordRateLimitDenial records a request denied by the rate limiter.
func (m *AuthMetrics) RecordRateLimitDenial(ctx context.Context, scope string) {
	if m == nil {
		return
	}
	m.rateLimitDenials.Add(ctx, 1, metric.WithAttributes(attribute.String("scope", scope)))
}

// RecordTokenVerification records a token verification with its result.
func (m *AuthMetrics) RecordTokenVerification(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.tokenVerifyTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
