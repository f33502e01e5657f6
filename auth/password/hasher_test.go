package password

import (
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const strongPassword = "Tr4ck!ngBird$42"

// newTestHasher returns a hasher with minimum bcrypt cost and a recording
// sleep so tests stay fast while still asserting the jitter discipline.
func newTestHasher(t *testing.T) (*Hasher, *[]time.Duration) {
	t.Helper()
	h, err := NewHasher(Config{
		Pepper:    "test-pepper",
		Cost:      bcrypt.MinCost,
		JitterMin: 100 * time.Millisecond,
		JitterMax: 500 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	var slept []time.Duration
	h.sleep = func(d time.Duration) { slept = append(slept, d) }
	return h, &slept
}

func TestNewHasherRequiresPepper(t *testing.T) {
	if _, err := NewHasher(Config{}); err == nil {
		t.Error("expected error without pepper")
	}
}

func TestHashCompareRoundtrip(t *testing.T) {
	h, _ := newTestHasher(t)

	res := h.Hash(strongPassword)
	if !res.OK {
		t.Fatalf("Hash failed: %v", res.Err)
	}
	if res.Hash == "" || strings.Contains(res.Hash, strongPassword) {
		t.Fatalf("suspicious hash output: %q", res.Hash)
	}

	cmp := h.Compare(strongPassword, res.Hash)
	if !cmp.OK || !cmp.Match {
		t.Errorf("Compare(correct) = %+v, want OK match", cmp)
	}

	cmp = h.Compare("Wr0ng!Password$1", res.Hash)
	if !cmp.OK {
		t.Fatalf("Compare(wrong) errored: %v", cmp.Err)
	}
	if cmp.Match {
		t.Error("wrong password matched")
	}
}

func TestHashRejectsInvalidInput(t *testing.T) {
	h, _ := newTestHasher(t)

	if res := h.Hash(""); res.OK || !errors.Is(res.Err, ErrInvalidInput) {
		t.Errorf("Hash(empty) = %+v, want ErrInvalidInput", res)
	}
	long := strings.Repeat("Aa1!", 33) // 132 chars
	if res := h.Hash(long); res.OK || !errors.Is(res.Err, ErrInvalidInput) {
		t.Errorf("Hash(overlong) = %+v, want ErrInvalidInput", res)
	}
}

func TestHashRejectsWeakPassword(t *testing.T) {
	h, _ := newTestHasher(t)

	res := h.Hash("password")
	if res.OK {
		t.Fatal("weak password accepted")
	}
	if !errors.Is(res.Err, ErrWeakPassword) {
		t.Errorf("err = %v, want ErrWeakPassword", res.Err)
	}
}

func TestCompareRejectsInvalidInput(t *testing.T) {
	h, _ := newTestHasher(t)

	if res := h.Compare("", "some-hash"); res.OK || !errors.Is(res.Err, ErrInvalidInput) {
		t.Errorf("Compare(empty pw) = %+v, want ErrInvalidInput", res)
	}
	if res := h.Compare(strongPassword, ""); res.OK || !errors.Is(res.Err, ErrInvalidInput) {
		t.Errorf("Compare(empty hash) = %+v, want ErrInvalidInput", res)
	}
}

func TestJitterAppliedOnEveryPath(t *testing.T) {
	h, slept := newTestHasher(t)

	res := h.Hash(strongPassword)
	h.Hash("")          // invalid input path
	h.Hash("password")  // weak password path
	h.Compare("", "")   // invalid compare path
	h.Compare(strongPassword, res.Hash)

	if len(*slept) != 5 {
		t.Fatalf("jitter applied %d times, want 5", len(*slept))
	}
	for i, d := range *slept {
		if d < 100*time.Millisecond || d >= 500*time.Millisecond {
			t.Errorf("sleep %d = %v, want in [100ms, 500ms)", i, d)
		}
	}
}

func TestPepperChangesHashInput(t *testing.T) {
	h1, _ := newTestHasher(t)

	h2, err := NewHasher(Config{Pepper: "different-pepper", Cost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	h2.sleep = func(time.Duration) {}

	res := h1.Hash(strongPassword)
	if !res.OK {
		t.Fatalf("Hash: %v", res.Err)
	}

	cmp := h2.Compare(strongPassword, res.Hash)
	if !cmp.OK {
		t.Fatalf("Compare: %v", cmp.Err)
	}
	if cmp.Match {
		t.Error("hash verified under a different pepper")
	}
}

func TestPepperedTruncation(t *testing.T) {
	h, _ := newTestHasher(t)

	// 72-byte bcrypt input limit: the pepper pushes a long password over it
	// and must be truncated the same way on hash and compare.
	pw := "Aa1!" + strings.Repeat("xY3!", 17) // 72 chars, +pepper > 72
	res := h.Hash(pw)
	if !res.OK {
		t.Fatalf("Hash(long valid password): %v", res.Err)
	}
	cmp := h.Compare(pw, res.Hash)
	if !cmp.OK || !cmp.Match {
		t.Errorf("Compare after truncation = %+v, want match", cmp)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults with pepper", Config{Pepper: "p"}, false},
		{"missing pepper", Config{}, true},
		{"cost too high", Config{Pepper: "p", Cost: bcrypt.MaxCost + 1}, true},
		{"inverted jitter", Config{Pepper: "p", JitterMin: time.Second, JitterMax: time.Millisecond}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.ApplyDefaults()
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
