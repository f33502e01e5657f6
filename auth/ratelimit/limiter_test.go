package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T) *Limiter {
	t.Helper()
	l := New(Config{MaxAttempts: 5, Window: 15 * time.Minute, SweepInterval: time.Hour})
	t.Cleanup(l.Close)
	return l
}

func TestCheckAllowsUpToCap(t *testing.T) {
	l := newTestLimiter(t)
	const id = "login:user@example.com:10.0.0.1"

	for i := 1; i <= 5; i++ {
		res := l.Check(id)
		if !res.Allowed {
			t.Fatalf("attempt %d denied, want allowed", i)
		}
		if want := 5 - i; res.Remaining != want {
			t.Errorf("attempt %d Remaining = %d, want %d", i, res.Remaining, want)
		}
	}

	res := l.Check(id)
	if res.Allowed {
		t.Error("6th attempt allowed, want denied")
	}
	if res.Remaining != 0 {
		t.Errorf("denied Remaining = %d, want 0", res.Remaining)
	}
	if res.ResetAt.IsZero() {
		t.Error("denied result missing ResetAt")
	}
}

func TestCheckIsolatesIdentifiers(t *testing.T) {
	l := newTestLimiter(t)

	for i := 0; i < 6; i++ {
		l.Check("login:a@example.com:1.1.1.1")
	}
	if res := l.Check("login:b@example.com:1.1.1.1"); !res.Allowed {
		t.Error("fresh identifier denied because another identifier is capped")
	}
}

func TestReset(t *testing.T) {
	l := newTestLimiter(t)
	const id = "login:user@example.com:10.0.0.1"

	for i := 0; i < 6; i++ {
		l.Check(id)
	}
	if res := l.Check(id); res.Allowed {
		t.Fatal("expected identifier to be capped")
	}

	l.Reset(id)
	res := l.Check(id)
	if !res.Allowed {
		t.Error("attempt after Reset denied")
	}
	if res.Remaining != 4 {
		t.Errorf("Remaining after Reset = %d, want 4", res.Remaining)
	}
}

func TestWindowElapsedStartsFresh(t *testing.T) {
	l := newTestLimiter(t)
	const id = "login:user@example.com:10.0.0.1"

	current := time.Now()
	l.now = func() time.Time { return current }

	for i := 0; i < 6; i++ {
		l.Check(id)
	}

	current = current.Add(15 * time.Minute)
	res := l.Check(id)
	if !res.Allowed {
		t.Error("attempt after window elapsed denied")
	}
	if res.Remaining != 4 {
		t.Errorf("Remaining = %d, want 4", res.Remaining)
	}
}

func TestDeniedAttemptsReArmTheWindow(t *testing.T) {
	l := newTestLimiter(t)
	const id = "login:user@example.com:10.0.0.1"

	current := time.Now()
	l.now = func() time.Time { return current }

	for i := 0; i < 5; i++ {
		l.Check(id)
	}

	// Keep hammering just inside the window: each denial pushes the reset
	// time forward from the denied attempt.
	for i := 0; i < 3; i++ {
		current = current.Add(14 * time.Minute)
		res := l.Check(id)
		if res.Allowed {
			t.Fatalf("hammering attempt %d allowed inside re-armed window", i)
		}
		if want := current.Add(15 * time.Minute); !res.ResetAt.Equal(want) {
			t.Errorf("ResetAt = %v, want %v", res.ResetAt, want)
		}
	}

	// Waiting out a full quiet window finally clears it.
	current = current.Add(15 * time.Minute)
	if res := l.Check(id); !res.Allowed {
		t.Error("attempt after full quiet window denied")
	}
}

func TestConcurrentChecksRespectCap(t *testing.T) {
	l := newTestLimiter(t)
	const id = "login:user@example.com:10.0.0.1"

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Check(id).Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 5 {
		t.Errorf("concurrent allowed = %d, want exactly 5", allowed)
	}
}

func TestSweepEvictsStaleRecords(t *testing.T) {
	l := New(Config{MaxAttempts: 5, Window: 10 * time.Millisecond, SweepInterval: 5 * time.Millisecond})
	defer l.Close()

	for i := 0; i < 20; i++ {
		l.Check(fmt.Sprintf("login:user%d@example.com:1.1.1.1", i))
	}
	if l.Len() == 0 {
		t.Fatal("expected tracked identifiers before sweep")
	}

	deadline := time.Now().Add(time.Second)
	for l.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := l.Len(); got != 0 {
		t.Errorf("Len after sweep = %d, want 0", got)
	}
}
