package account

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stackskills/platform/auth"
	"github.com/stackskills/platform/auth/password"
	"github.com/stackskills/platform/auth/ratelimit"
	"github.com/stackskills/platform/auth/token"
	"github.com/stackskills/platform/email"
	apperrors "github.com/stackskills/platform/errors"
	"github.com/stackskills/platform/logger"
	"github.com/stackskills/platform/observability"
)

// Service composes the hasher, rate limiter, token service, store, and
// mailer into the account flows.
type Service struct {
	cfg     Config
	store   Store
	hasher  *password.Hasher
	tokens  *token.Service
	limiter *ratelimit.Limiter
	mailer  email.Sender
	metrics *observability.AuthMetrics
	log     *logger.Logger
	now     func() time.Time
}

// NewService creates the account service. All collaborators are required
// except metrics, which may be nil.
func NewService(cfg Config, store Store, hasher *password.Hasher, tokens *token.Service,
	limiter *ratelimit.Limiter, mailer email.Sender, metrics *observability.AuthMetrics,
	log *logger.Logger) (*Service, error) {

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil || hasher == nil || tokens == nil || limiter == nil || mailer == nil {
		return nil, fmt.Errorf("account: missing required collaborator")
	}
	return &Service{
		cfg:     cfg,
		store:   store,
		hasher:  hasher,
		tokens:  tokens,
		limiter: limiter,
		mailer:  mailer,
		metrics: metrics,
		log:     log.WithComponent("account"),
		now:     time.Now,
	}, nil
}

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	ClientIP string
}

// Session is the result of a flow that establishes a login: the user plus a
// freshly issued token.
type Session struct {
	User  Profile
	Token string
}

// Register creates a USER account: rate limit per client IP, duplicate check,
// strength check and hash, verification code issue and email, then a fresh
// session token. A failed verification email is a hard stop; no account is
// created.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	limitKey := "register:" + in.ClientIP
	if res := s.limiter.Check(limitKey); !res.Allowed {
		s.metrics.RecordRateLimitDenial(ctx, "register")
		return nil, apperrors.RateLimited(res.ResetAt)
	}
	return s.register(ctx, in, auth.RoleUser)
}

// RegisterAdmin creates an ADMIN account. The caller must already hold an
// ADMIN session (enforced by middleware); on top of that the shared admin
// registration token must match, compared in constant time.
func (s *Service) RegisterAdmin(ctx context.Context, in RegisterInput, adminToken, actorID string) (*Session, error) {
	if subtle.ConstantTimeCompare([]byte(adminToken), []byte(s.cfg.AdminRegistrationToken)) != 1 {
		return nil, apperrors.Unauthorized("Invalid admin registration token.")
	}

	limitKey := "admin-register:" + actorID + ":" + in.ClientIP
	if res := s.limiter.Check(limitKey); !res.Allowed {
		s.metrics.RecordRateLimitDenial(ctx, "admin-register")
		return nil, apperrors.RateLimited(res.ResetAt)
	}
	return s.register(ctx, in, auth.RoleAdmin)
}

func (s *Service) register(ctx context.Context, in RegisterInput, role auth.Role) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := s.store.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperrors.AlreadyExists("user")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	hashed := s.hasher.Hash(in.Password)
	if !hashed.OK {
		switch {
		case errors.Is(hashed.Err, password.ErrWeakPassword):
			return nil, apperrors.WeakPassword(password.ValidateStrength(in.Password).Feedback)
		case errors.Is(hashed.Err, password.ErrInvalidInput):
			return nil, apperrors.Validation("password is empty or too long")
		default:
			return nil, apperrors.Internal(hashed.Err)
		}
	}

	otp, err := newOTP()
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.mailer.Send(ctx, email.VerificationMessage(in.Email, in.Name, otp)); err != nil {
		s.log.Error("Verification email failed", logger.ErrorFields("register", err))
		return nil, apperrors.EmailDelivery(err)
	}

	now := s.now()
	user := &User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hashed.Hash,
		Role:         role,
		OTP:          otp,
		OTPExpiry:    now.Add(s.cfg.OTPTTL),
		CreatedAt:    now,
	}
	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, apperrors.AlreadyExists("user")
		}
		return nil, apperrors.Internal(err)
	}

	signed, err := s.tokens.Generate(auth.Principal{ID: user.ID, Role: user.Role})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.log.Info("Account registered", logger.Fields(
		logger.FieldUserID, user.ID,
		logger.FieldEmail, user.Email,
		"role", user.Role,
	))
	return &Session{User: user.Profile(), Token: signed}, nil
}

// LoginInput is the payload for authenticating.
type LoginInput struct {
	Email    string
	Password string
	ClientIP string
}

// Login authenticates credentials. Attempts are limited per email+IP pair;
// the limiter entry is cleared on success so legitimate users start fresh.
// Unknown email and wrong password collapse to the same error.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	limitKey := "login:" + in.Email + ":" + in.ClientIP

	if res := s.limiter.Check(limitKey); !res.Allowed {
		s.metrics.RecordRateLimitDenial(ctx, "login")
		s.metrics.RecordLogin(ctx, observability.LoginRateLimited)
		return nil, apperrors.RateLimited(res.ResetAt)
	}

	user, err := s.store.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Burn a compare so unknown emails cost the same as bad
			// passwords.
			s.hasher.Compare(in.Password, "")
			s.metrics.RecordLogin(ctx, observability.LoginUnknownUser)
			return nil, apperrors.Unauthorized("Invalid email or password.")
		}
		return nil, apperrors.Internal(err)
	}

	cmp := s.hasher.Compare(in.Password, user.PasswordHash)
	if !cmp.OK {
		return nil, apperrors.Internal(cmp.Err)
	}
	if !cmp.Match {
		s.metrics.RecordLogin(ctx, observability.LoginBadPassword)
		return nil, apperrors.Unauthorized("Invalid email or password.")
	}

	signed, err := s.tokens.Generate(auth.Principal{ID: user.ID, Role: user.Role})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.limiter.Reset(limitKey)
	s.metrics.RecordLogin(ctx, observability.LoginSuccess)
	s.log.Info("Login", logger.Fields(logger.FieldUserID, user.ID, "role", user.Role))
	return &Session{User: user.Profile(), Token: signed}, nil
}

// LoginAdmin is Login restricted to ADMIN accounts. A valid USER credential
// gets the same rejection as a bad one.
func (s *Service) LoginAdmin(ctx context.Context, in LoginInput) (*Session, error) {
	session, err := s.Login(ctx, in)
	if err != nil {
		return nil, err
	}
	if session.User.Role != auth.RoleAdmin {
		return nil, apperrors.Unauthorized("Invalid email or password.")
	}
	return session, nil
}

// Logout revokes the session token's jti for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	if err := s.tokens.Revoke(ctx, rawToken); err != nil {
		if errors.Is(err, token.ErrInvalidToken) {
			return apperrors.InvalidToken()
		}
		return apperrors.Internal(err)
	}
	return nil
}

// Refresh exchanges a near-expiry token for a fresh one.
func (s *Service) Refresh(ctx context.Context, rawToken string) (string, error) {
	signed, err := s.tokens.Refresh(rawToken)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrRefreshTooEarly):
			return "", apperrors.Validation("token is not yet eligible for refresh")
		case errors.Is(err, token.ErrInvalidToken):
			return "", apperrors.InvalidToken()
		default:
			return "", apperrors.Internal(err)
		}
	}
	return signed, nil
}

// Me returns the profile for the authenticated principal.
func (s *Service) Me(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.Internal(err)
	}
	p := user.Profile()
	return &p, nil
}

// VerifyEmail checks the one-time code for the authenticated principal and
// marks the account verified. Codes expire after Config.OTPTTL and are
// single-use: a successful match clears the stored code.
func (s *Service) VerifyEmail(ctx context.Context, userID, code string) error {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperrors.NotFound("user")
		}
		return apperrors.Internal(err)
	}

	if user.EmailVerified {
		return nil
	}
	if user.OTP == "" || s.now().After(user.OTPExpiry) {
		return apperrors.Validation("verification code has expired")
	}
	if subtle.ConstantTimeCompare([]byte(user.OTP), []byte(code)) != 1 {
		return apperrors.Validation("verification code is incorrect")
	}

	user.EmailVerified = true
	user.OTP = ""
	user.OTPExpiry = time.Time{}
	if err := s.store.Update(ctx, user); err != nil {
		return apperrors.Internal(err)
	}

	s.log.Info("Email verified", logger.Fields(logger.FieldUserID, user.ID))
	return nil
}

// GetUser returns one user's profile. Admin-only at the route level.
func (s *Service) GetUser(ctx context.Context, id string) (*Profile, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.Internal(err)
	}
	p := user.Profile()
	return &p, nil
}

// ListUsers returns all profiles. Admin-only at the route level.
func (s *Service) ListUsers(ctx context.Context) ([]Profile, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	profiles := make([]Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}
	return profiles, nil
}

// TokenTTL exposes the session lifetime so the transport layer can align
// cookie max-age with token expiry.
func (s *Service) TokenTTL() time.Duration {
	return s.tokens.TTL()
}
