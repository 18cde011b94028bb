package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisFixedWindowLimiter shares one window per key across every API
// replica. The counter and its TTL are read in one MULTI/EXEC so the
// reported reset matches the counted hit.
type RedisFixedWindowLimiter struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisFixedWindowLimiter(client redis.UniversalClient, prefix string) *RedisFixedWindowLimiter {
	if prefix == "" {
		prefix = "campus"
	}
	return &RedisFixedWindowLimiter{
		client: client,
		prefix: prefix + ":rl",
	}
}

func (l *RedisFixedWindowLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	if l.client == nil {
		return Decision{}, errors.New("redis client is nil")
	}
	if key == "" {
		key = "unknown"
	}
	if window < time.Millisecond {
		window = time.Second
	}
	storeKey := fmt.Sprintf("%s:%s", l.prefix, key)

	var (
		incr *redis.IntCmd
		pttl *redis.DurationCmd
	)
	if _, err := l.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, storeKey)
		pttl = p.PTTL(ctx, storeKey)
		return nil
	}); err != nil {
		return Decision{}, fmt.Errorf("rate limit hit: %w", err)
	}

	reset := pttl.Val()
	// A negative TTL means the window was just opened or lost its expiry.
	if reset <= 0 {
		if err := l.client.PExpire(ctx, storeKey, window).Err(); err != nil {
			return Decision{}, fmt.Errorf("rate limit expiry: %w", err)
		}
		reset = window
	}
	return decide(incr.Val(), limit, reset), nil
}
