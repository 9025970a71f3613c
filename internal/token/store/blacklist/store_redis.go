package blacklist

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	isRevokedDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "travelogy_blacklist_check_duration_ms",
		Help:    "Latency of refresh token blacklist checks in milliseconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
	})
)

const revokedTokenKeyPrefix = "blacklist:rt:"

// RedisBlacklist is the production implementation for distributed
// deployments where every instance must see a revocation immediately.
type RedisBlacklist struct {
	client *redis.Client
}

func NewRedisBlacklist(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{client: client}
}

// Revoke adds the token with TTL. SETNX keeps the first expiry when two
// logouts race; the value is a marker, key existence is what matters.
func (b *RedisBlacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if err := validateTTL(ttl); err != nil {
		return err
	}
	key := revokedTokenKeyPrefix + token
	return b.client.SetNX(ctx, key, "1", ttl).Err()
}

// IsRevoked checks the blacklist. Returns false when the key does not exist,
// which covers both never-revoked and expired entries.
func (b *RedisBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	start := time.Now()
	defer func() {
		isRevokedDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	key := revokedTokenKeyPrefix + token
	_, err := b.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Close is a no-op; the client lifecycle is managed externally.
func (b *RedisBlacklist) Close() {}
