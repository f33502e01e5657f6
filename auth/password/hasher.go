// Package password provides strength validation and peppered bcrypt hashing
// with timing-attack mitigation.
//
// Every Hash and Compare path — success, early rejection, internal failure —
// sleeps a random duration inside the configured jitter window before
// returning. The jitter is not decoration: it bounds what an attacker can
// learn from response latency about whether a given identifier/password pair
// reached the expensive hashing path. The sleep never holds a lock and the
// bcrypt work runs outside any request-serializing lock.
package password

import (
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidInput covers empty and over-length input. Deliberately
	// unspecific: failure reasons must not form an oracle.
	ErrInvalidInput = errors.New("password: invalid input")

	// ErrWeakPassword is returned when strength validation rejects the
	// password. The strength feedback travels separately via
	// ValidateStrength so registration can show it.
	ErrWeakPassword = errors.New("password: too weak")

	// ErrHashFailed covers internal hashing/comparison failures.
	ErrHashFailed = errors.New("password: operation failed")
)

// HashResult is the explicit outcome of a Hash call.
type HashResult struct {
	OK   bool
	Hash string
	Err  error
}

// CompareResult is the explicit outcome of a Compare call.
type CompareResult struct {
	OK    bool
	Match bool
	Err   error
}

// Hasher hashes and verifies peppered passwords.
type Hasher struct {
	cfg   Config
	sleep func(time.Duration) // swapped out in tests
}

// NewHasher creates a Hasher. It fails when no pepper is configured; treat
// the returned error as fatal at startup.
func NewHasher(cfg Config) (*Hasher, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Hasher{cfg: cfg, sleep: time.Sleep}, nil
}

// Hash validates, peppers, and hashes a password. Every return path applies
// the same randomized delay.
func (h *Hasher) Hash(pw string) HashResult {
	defer h.jitter()

	if pw == "" || len(pw) > MaxLength {
		return HashResult{Err: ErrInvalidInput}
	}

	strength := ValidateStrength(pw)
	if !strength.Valid {
		return HashResult{Err: errors.Join(ErrWeakPassword,
			errors.New(strings.Join(strength.Feedback, ", ")))}
	}

	hash, err := bcrypt.GenerateFromPassword(h.peppered(pw), h.cfg.Cost)
	if err != nil {
		return HashResult{Err: ErrHashFailed}
	}
	return HashResult{OK: true, Hash: string(hash)}
}

// Compare checks a password against a stored hash with the same defensive
// structure as Hash: input validation, pepper, constant-time comparison,
// and the randomized delay on every path.
func (h *Hasher) Compare(pw, storedHash string) CompareResult {
	defer h.jitter()

	if pw == "" || storedHash == "" || len(pw) > MaxLength {
		return CompareResult{Err: ErrInvalidInput}
	}

	err := bcrypt.CompareHashAndPassword([]byte(storedHash), h.peppered(pw))
	switch {
	case err == nil:
		return CompareResult{OK: true, Match: true}
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return CompareResult{OK: true, Match: false}
	default:
		return CompareResult{Err: ErrHashFailed}
	}
}

// peppered appends the server pepper and truncates to bcrypt's 72-byte input
// limit, matching how the stored hashes were produced.
func (h *Hasher) peppered(pw string) []byte {
	b := []byte(pw + h.cfg.Pepper)
	if len(b) > 72 {
		b = b[:72]
	}
	return b
}

// jitter sleeps for a random duration in [JitterMin, JitterMax).
func (h *Hasher) jitter() {
	span := h.cfg.JitterMax - h.cfg.JitterMin
	h.sleep(h.cfg.JitterMin + rand.N(span))
}
