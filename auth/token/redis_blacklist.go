package token

import (
	"context"
	"fmt"
	"time"

	"github.com/stackskills/platform/redis"
)

// RedisBlacklist is a Blacklist backed by Redis. Revoked jtis are stored as
// keys with native TTLs, so eviction is handled by the server and revocation
// is shared across platform instances.
type RedisBlacklist struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisBlacklist creates a Redis-backed blacklist. All keys are prefixed
// with "revoked:" under the given namespace.
func NewRedisBlacklist(client *redis.Client, namespace string) *RedisBlacklist {
	if namespace == "" {
		namespace = "stackskills"
	}
	return &RedisBlacklist{client: client, keyPrefix: namespace + ":revoked:"}
}

func (b *RedisBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, b.keyPrefix+jti, "1", ttl); err != nil {
		return fmt.Errorf("redis blacklist revoke: %w", err)
	}
	return nil
}

func (b *RedisBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, b.keyPrefix+jti)
	if err != nil {
		return false, fmt.Errorf("redis blacklist lookup: %w", err)
	}
	return n > 0, nil
}

var _ Blacklist = (*RedisBlacklist)(nil)
