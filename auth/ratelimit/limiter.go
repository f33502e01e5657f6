// Package ratelimit counts credential attempts per caller-chosen identifier.
//
// Identifiers combine operation, account, and client network address
// ("login:<email>:<ip>"), so limits are scoped per operation and per actor
// pair rather than globally.
//
// The window re-arms: the reset time is computed from the MOST RECENT
// attempt, including denied ones, so hammering at the cap keeps pushing the
// reset deeper instead of draining a fixed window. This is an intentional
// lockout-extension policy.
package ratelimit

import (
	"sync"
	"time"
)

// Result is the outcome of a limit check.
type Result struct {
	// Allowed reports whether the attempt may proceed.
	Allowed bool
	// Remaining is the number of attempts left in the window.
	Remaining int
	// ResetAt is when the window re-opens. Set only on denial.
	ResetAt time.Time
}

type record struct {
	count int
	last  time.Time
}

// Limiter is a process-local attempt counter. All map access is serialized
// behind the mutex so concurrent checks on the same identifier cannot race
// past the cap.
type Limiter struct {
	mu      sync.Mutex
	cfg     Config
	records map[string]*record
	done    chan struct{}
	once    sync.Once
	now     func() time.Time
}

// New creates a Limiter and starts a background sweep evicting identifiers
// whose window has fully elapsed. Call Close to stop the sweep.
func New(cfg Config) *Limiter {
	cfg.ApplyDefaults()
	l := &Limiter{
		cfg:     cfg,
		records: make(map[string]*record),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	go l.sweep()
	return l
}

// Check records an attempt for the identifier and reports whether it is
// allowed. The first attempt for a fresh identifier always passes.
func (l *Limiter) Check(identifier string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok := l.records[identifier]
	if !ok || now.Sub(rec.last) >= l.cfg.Window {
		l.records[identifier] = &record{count: 1, last: now}
		return Result{Allowed: true, Remaining: l.cfg.MaxAttempts - 1}
	}

	if rec.count >= l.cfg.MaxAttempts {
		// Re-arm: a denied attempt also pushes the reset forward.
		rec.last = now
		return Result{Remaining: 0, ResetAt: now.Add(l.cfg.Window)}
	}

	rec.count++
	rec.last = now
	return Result{Allowed: true, Remaining: l.cfg.MaxAttempts - rec.count}
}

// Reset clears tracking for one identifier. Call it after a successful
// operation so future legitimate attempts start fresh.
func (l *Limiter) Reset(identifier string) {
	l.mu.Lock()
	delete(l.records, identifier)
	l.mu.Unlock()
}

// Len returns the number of tracked identifiers.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Close stops the sweep goroutine. Safe to call multiple times.
func (l *Limiter) Close() {
	l.once.Do(func() { close(l.done) })
}

func (l *Limiter) sweep() {
	ticker := time.NewTicker(l.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.mu.Lock()
			now := l.now()
			for id, rec := range l.records {
				if now.Sub(rec.last) >= l.cfg.Window {
					delete(l.records, id)
				}
			}
			l.mu.Unlock()
		}
	}
}
