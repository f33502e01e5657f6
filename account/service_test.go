package account

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/stackskills/platform/auth"
	"github.com/stackskills/platform/auth/password"
	"github.com/stackskills/platform/auth/ratelimit"
	"github.com/stackskills/platform/auth/token"
	"github.com/stackskills/platform/email"
	apperrors "github.com/stackskills/platform/errors"
	"github.com/stackskills/platform/logger"
)

const (
	testSecret     = "0123456789abcdef0123456789abcdef"
	strongPassword = "Tr4ck!ngBird$42"
	testIP         = "10.0.0.1"
)

// captureSender records sent messages and can be told to fail.
type captureSender struct {
	mu       sync.Mutex
	messages []email.Message
	fail     bool
}

func (s *captureSender) Send(ctx context.Context, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("smtp unreachable")
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *captureSender) last() (email.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return email.Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

type fixture struct {
	svc     *Service
	store   *MemoryStore
	tokens  *token.Service
	limiter *ratelimit.Limiter
	mailer  *captureSender
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	bl := token.NewMemoryBlacklist(time.Minute)
	t.Cleanup(bl.Close)
	tokens, err := token.NewService(token.Config{Secret: testSecret}, bl)
	if err != nil {
		t.Fatalf("token.NewService: %v", err)
	}

	hasher, err := password.NewHasher(password.Config{
		Pepper:    "test-pepper",
		Cost:      bcrypt.MinCost,
		JitterMin: time.Microsecond,
		JitterMax: 2 * time.Microsecond,
	})
	if err != nil {
		t.Fatalf("password.NewHasher: %v", err)
	}

	limiter := ratelimit.New(ratelimit.Config{MaxAttempts: 5, Window: 15 * time.Minute, SweepInterval: time.Hour})
	t.Cleanup(limiter.Close)

	store := NewMemoryStore()
	mailer := &captureSender{}

	svc, err := NewService(Config{AdminRegistrationToken: "shared-admin-secret"},
		store, hasher, tokens, limiter, mailer, nil, logger.NewDefault("test"))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &fixture{svc: svc, store: store, tokens: tokens, limiter: limiter, mailer: mailer}
}

func registerInput(email string) RegisterInput {
	return RegisterInput{
		Name:     "Test User",
		Email:    email,
		Phone:    "+15550001234",
		Password: strongPassword,
		ClientIP: testIP,
	}
}

func wantCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("err = %v, want AppError with code %s", err, code)
	}
	if appErr.Code != code {
		t.Fatalf("code = %s, want %s", appErr.Code, code)
	}
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.Register(ctx, registerInput("new@example.com"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if session.User.Role != auth.RoleUser {
		t.Errorf("role = %s, want USER", session.User.Role)
	}
	if session.User.EmailVerified {
		t.Error("new account should start unverified")
	}

	id := f.tokens.Verify(session.Token)
	if id == nil {
		t.Fatal("issued token does not verify")
	}
	if id.Principal.ID != session.User.ID {
		t.Errorf("token subject = %s, want %s", id.Principal.ID, session.User.ID)
	}

	msg, ok := f.mailer.last()
	if !ok {
		t.Fatal("no verification email sent")
	}
	if msg.To != "new@example.com" {
		t.Errorf("email to = %s", msg.To)
	}

	stored, err := f.store.GetByEmail(ctx, "new@example.com")
	if err != nil {
		t.Fatalf("stored user missing: %v", err)
	}
	if stored.OTP == "" || len(stored.OTP) != 6 {
		t.Errorf("stored OTP = %q, want 6 digits", stored.OTP)
	}
	if stored.PasswordHash == strongPassword {
		t.Error("password stored in plaintext")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, registerInput("dup@example.com")); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := f.svc.Register(ctx, registerInput("DUP@example.com"))
	wantCode(t, err, apperrors.ErrCodeAlreadyExists)
}

func TestRegisterWeakPassword(t *testing.T) {
	f := newFixture(t)

	in := registerInput("weak@example.com")
	in.Password = "password"
	_, err := f.svc.Register(context.Background(), in)
	wantCode(t, err, apperrors.ErrCodeWeakPassword)

	appErr, _ := apperrors.AsAppError(err)
	if appErr.Details["feedback"] == nil {
		t.Error("weak password error missing feedback detail")
	}
}

func TestRegisterEmailFailureIsHardStop(t *testing.T) {
	f := newFixture(t)
	f.mailer.fail = true
	ctx := context.Background()

	_, err := f.svc.Register(ctx, registerInput("unreachable@example.com"))
	wantCode(t, err, apperrors.ErrCodeEmailDelivery)

	if _, err := f.store.GetByEmail(ctx, "unreachable@example.com"); !errors.Is(err, ErrNotFound) {
		t.Error("account created despite failed verification email")
	}
}

func TestRegisterRateLimited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		in := registerInput(fmt.Sprintf("user%d@example.com", i))
		if _, err := f.svc.Register(ctx, in); err != nil {
			t.Fatalf("Register %d: %v", i, err)
		}
	}

	_, err := f.svc.Register(ctx, registerInput("user6@example.com"))
	wantCode(t, err, apperrors.ErrCodeRateLimited)

	appErr, _ := apperrors.AsAppError(err)
	if appErr.Details["reset_time"] == nil {
		t.Error("rate limited error missing reset_time detail")
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, registerInput("login@example.com")); err != nil {
		t.Fatalf("Register: %v", err)
	}

	session, err := f.svc.Login(ctx, LoginInput{
		Email:    "Login@Example.com",
		Password: strongPassword,
		ClientIP: testIP,
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if id := f.tokens.Verify(session.Token); id == nil {
		t.Error("login token does not verify")
	}
}

func TestLoginBadCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, registerInput("known@example.com")); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, errWrongPw := f.svc.Login(ctx, LoginInput{Email: "known@example.com", Password: "Wr0ng!Pass$word", ClientIP: testIP})
	wantCode(t, errWrongPw, apperrors.ErrCodeUnauthorized)

	_, errUnknown := f.svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: strongPassword, ClientIP: testIP})
	wantCode(t, errUnknown, apperrors.ErrCodeUnauthorized)

	// Unknown email and wrong password must be indistinguishable.
	a, _ := apperrors.AsAppError(errWrongPw)
	b, _ := apperrors.AsAppError(errUnknown)
	if a.Message != b.Message {
		t.Errorf("credential failures differ: %q vs %q", a.Message, b.Message)
	}
}

func TestLoginRateLimitAndResetOnSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, registerInput("limited@example.com")); err != nil {
		t.Fatalf("Register: %v", err)
	}

	bad := LoginInput{Email: "limited@example.com", Password: "Wr0ng!Pass$word", ClientIP: testIP}
	good := LoginInput{Email: "limited@example.com", Password: strongPassword, ClientIP: testIP}

	// Burn 4 attempts, succeed on the 5th; the limiter entry must clear.
	for i := 0; i < 4; i++ {
		if _, err := f.svc.Login(ctx, bad); err == nil {
			t.Fatal("wrong password accepted")
		}
	}
	if _, err := f.svc.Login(ctx, good); err != nil {
		t.Fatalf("5th attempt with correct password: %v", err)
	}

	// Fresh window after success: five more attempts before denial.
	for i := 0; i < 4; i++ {
		f.svc.Login(ctx, bad)
	}
	if _, err := f.svc.Login(ctx, good); err != nil {
		t.Errorf("limiter not reset on success: %v", err)
	}
}

func TestLoginSixthAttemptDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, registerInput("hammer@example.com")); err != nil {
		t.Fatalf("Register: %v", err)
	}

	bad := LoginInput{Email: "hammer@example.com", Password: "Wr0ng!Pass$word", ClientIP: testIP}
	for i := 0; i < 5; i++ {
		_, err := f.svc.Login(ctx, bad)
		wantCode(t, err, apperrors.ErrCodeUnauthorized)
	}

	// 6th attempt is denied by the limiter even with correct credentials.
	_, err := f.svc.Login(ctx, LoginInput{Email: "hammer@example.com", Password: strongPassword, ClientIP: testIP})
	wantCode(t, err, apperrors.ErrCodeRateLimited)
}

func TestRegisterAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RegisterAdmin(ctx, registerInput("admin@example.com"), "wrong-secret", "actor-1")
	wantCode(t, err, apperrors.ErrCodeUnauthorized)

	session, err := f.svc.RegisterAdmin(ctx, registerInput("admin@example.com"), "shared-admin-secret", "actor-1")
	if err != nil {
		t.Fatalf("RegisterAdmin: %v", err)
	}
	if session.User.Role != auth.RoleAdmin {
		t.Errorf("role = %s, want ADMIN", session.User.Role)
	}
}

func TestLoginAdminRejectsUserAccounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, registerInput("plain@example.com")); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := f.svc.LoginAdmin(ctx, LoginInput{Email: "plain@example.com", Password: strongPassword, ClientIP: testIP})
	wantCode(t, err, apperrors.ErrCodeUnauthorized)
}

func TestVerifyEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.Register(ctx, registerInput("verify@example.com"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	stored, _ := f.store.GetByEmail(ctx, "verify@example.com")

	// Codes are 100000-999999, so "000000" is always wrong.
	err = f.svc.VerifyEmail(ctx, session.User.ID, "000000")
	wantCode(t, err, apperrors.ErrCodeInvalidInput)

	if err := f.svc.VerifyEmail(ctx, session.User.ID, stored.OTP); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}

	after, _ := f.store.GetByID(ctx, session.User.ID)
	if !after.EmailVerified {
		t.Error("account not marked verified")
	}
	if after.OTP != "" {
		t.Error("OTP not cleared after use")
	}

	// Idempotent once verified.
	if err := f.svc.VerifyEmail(ctx, session.User.ID, "whatever"); err != nil {
		t.Errorf("VerifyEmail on verified account: %v", err)
	}
}

func TestVerifyEmailExpiredCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.Register(ctx, registerInput("stale@example.com"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	stored, _ := f.store.GetByEmail(ctx, "stale@example.com")

	f.svc.now = func() time.Time { return time.Now().Add(16 * time.Minute) }
	err = f.svc.VerifyEmail(ctx, session.User.ID, stored.OTP)
	wantCode(t, err, apperrors.ErrCodeInvalidInput)
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.Register(ctx, registerInput("bye@example.com"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := f.svc.Logout(ctx, session.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := f.tokens.VerifyNotRevoked(ctx, session.Token); !errors.Is(err, token.ErrTokenRevoked) {
		t.Errorf("err = %v, want ErrTokenRevoked", err)
	}
}

func TestMe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.Register(ctx, registerInput("me@example.com"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	profile, err := f.svc.Me(ctx, session.User.ID)
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if profile.Email != "me@example.com" {
		t.Errorf("email = %s", profile.Email)
	}

	_, err = f.svc.Me(ctx, "no-such-user")
	wantCode(t, err, apperrors.ErrCodeNotFound)
}
