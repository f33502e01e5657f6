package token

import (
	"context"
	"sync"
	"time"
)

// Blacklist tracks revoked token identifiers. Entries live for the remaining
// natural lifetime of the token they revoke; implementations must evict
// expired entries rather than grow without bound.
type Blacklist interface {
	// Revoke marks a jti as revoked for the given ttl.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether the jti is currently revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// MemoryBlacklist is a process-local Blacklist backed by a mutex-guarded map
// with TTL eviction. Suitable for a single-process deployment; use the Redis
// implementation when sessions must be revocable across instances.
type MemoryBlacklist struct {
	mu      sync.RWMutex
	entries map[string]time.Time // jti -> expiry
	done    chan struct{}
	once    sync.Once
}

// NewMemoryBlacklist creates the store and starts a background sweep that
// drops expired entries every sweepInterval. Call Close to stop the sweep.
func NewMemoryBlacklist(sweepInterval time.Duration) *MemoryBlacklist {
	if sweepInterval <= 0 {
		sweepInterval = 5 * time.Minute
	}
	b := &MemoryBlacklist{
		entries: make(map[string]time.Time),
		done:    make(chan struct{}),
	}
	go b.sweep(sweepInterval)
	return b
}

// Revoke records the jti until its expiry. A non-positive ttl is ignored:
// the token is already dead.
func (b *MemoryBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	b.entries[jti] = time.Now().Add(ttl)
	b.mu.Unlock()
	return nil
}

// IsRevoked reports whether the jti is revoked and not yet expired.
func (b *MemoryBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.RLock()
	expiry, ok := b.entries[jti]
	b.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		b.mu.Lock()
		delete(b.entries, jti)
		b.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// Len returns the number of live entries. Used by tests and health reporting.
func (b *MemoryBlacklist) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Close stops the sweep goroutine. Safe to call multiple times.
func (b *MemoryBlacklist) Close() {
	b.once.Do(func() { close(b.done) })
}

func (b *MemoryBlacklist) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			now := time.Now()
			b.mu.Lock()
			for jti, expiry := range b.entries {
				if now.After(expiry) {
					delete(b.entries, jti)
				}
			}
			b.mu.Unlock()
		}
	}
}
