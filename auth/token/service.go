// Package token issues, verifies, refreshes, and revokes the platform's
// signed identity tokens.
//
// Verification is deliberately oracle-free: any failure — bad signature,
// wrong algorithm, wrong issuer or audience, expiry, malformed structure,
// missing claims — collapses to the same nil result, so a caller probing the
// endpoint learns nothing about which check rejected the input.
//
// Revocation is tracked per token identifier (jti), not per account: logging
// out invalidates exactly one session and leaves the principal's other
// sessions untouched. Per token the lifecycle is
// issued -> valid -> {expired | revoked}, with no way back to valid.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/stackskills/platform/auth"
)

var (
	// ErrInvalidToken covers every verification failure. Callers must not
	// distinguish forgery from expiry from malformed input.
	ErrInvalidToken = errors.New("token: invalid token")

	// ErrTokenRevoked marks a cryptographically valid token whose jti has
	// been blacklisted. Logically distinct from never-valid.
	ErrTokenRevoked = errors.New("token: token revoked")

	// ErrRefreshTooEarly is returned when a token still has more remaining
	// lifetime than the refresh window.
	ErrRefreshTooEarly = errors.New("token: not close enough to expiry")
)

// Claims is the signed token payload.
type Claims struct {
	gojwt.RegisteredClaims
	Role string `json:"role"`
}

// Identity is the verified content of a token: the principal plus the
// metadata needed for revocation and refresh decisions.
type Identity struct {
	Principal auth.Principal
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Service signs, verifies, and refreshes identity tokens and checks them
// against the revocation blacklist.
type Service struct {
	cfg       Config
	blacklist Blacklist
	now       func() time.Time
}

// NewService creates a token service. It fails fast on a missing or short
// signing secret; treat the returned error as fatal at startup.
func NewService(cfg Config, blacklist Blacklist) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if blacklist == nil {
		return nil, errors.New("token: blacklist store is required")
	}
	return &Service{cfg: cfg, blacklist: blacklist, now: time.Now}, nil
}

// Generate issues a signed token for the principal with a fresh random jti.
func (s *Service) Generate(p auth.Principal) (string, error) {
	if p.ID == "" || !p.Role.Valid() {
		return "", fmt.Errorf("token: cannot issue token for incomplete principal")
	}

	now := s.now()
	claims := Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   p.ID,
			ID:        uuid.NewString(),
			Issuer:    s.cfg.Issuer,
			Audience:  gojwt.ClaimStrings{s.cfg.Audience},
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
		Role: string(p.Role),
	}

	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).
		SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify validates signature, algorithm, issuer, audience, and expiry in one
// pass and returns the embedded identity. It returns nil on ANY failure.
func (s *Service) Verify(tokenString string) *Identity {
	claims := &Claims{}
	parsed, err := gojwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithIssuer(s.cfg.Issuer),
		gojwt.WithAudience(s.cfg.Audience),
		gojwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil
	}

	role, err := auth.ParseRole(claims.Role)
	if err != nil || claims.Subject == "" || claims.ID == "" {
		return nil
	}

	id := &Identity{
		Principal: auth.Principal{ID: claims.Subject, Role: role},
		JTI:       claims.ID,
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id
}

// Refresh re-issues a token only when the old one is currently valid and its
// remaining lifetime is at or below the refresh window. The new token gets a
// fresh jti; the old one is left to expire naturally.
func (s *Service) Refresh(oldToken string) (string, error) {
	id := s.Verify(oldToken)
	if id == nil {
		return "", ErrInvalidToken
	}
	if id.ExpiresAt.Sub(s.now()) > s.cfg.RefreshWindow {
		return "", ErrRefreshTooEarly
	}
	return s.Generate(id.Principal)
}

// Revoke blacklists the token's jti for the remainder of its natural
// lifetime. Revoking an already-invalid token fails with ErrInvalidToken.
func (s *Service) Revoke(ctx context.Context, tokenString string) error {
	id := s.Verify(tokenString)
	if id == nil {
		return ErrInvalidToken
	}
	ttl := id.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return ErrInvalidToken
	}
	return s.blacklist.Revoke(ctx, id.JTI, ttl)
}

// VerifyNotRevoked composes Verify with the blacklist lookup: a token is
// usable only if it is cryptographically valid AND its jti is not revoked.
// The two failure modes stay distinguishable for the caller.
func (s *Service) VerifyNotRevoked(ctx context.Context, tokenString string) (*Identity, error) {
	id := s.Verify(tokenString)
	if id == nil {
		return nil, ErrInvalidToken
	}
	revoked, err := s.blacklist.IsRevoked(ctx, id.JTI)
	if err != nil {
		return nil, fmt.Errorf("token: blacklist lookup: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return id, nil
}

// TTL returns the configured token lifetime, used to align cookie max-age
// with token expiry.
func (s *Service) TTL() time.Duration {
	return s.cfg.TokenTTL
}

func (s *Service) keyFunc(t *gojwt.Token) (interface{}, error) {
	if t.Method.Alg() != gojwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("token: unexpected signing method: %s", t.Method.Alg())
	}
	return []byte(s.cfg.Secret), nil
}
