package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// The bump runs server side so concurrent failures from several API
// instances count exactly once each.
var redisAuthAbuseBumpScript = redis.NewScript(`
local now_ms = tonumber(ARGV[1])
local base_ms = tonumber(ARGV[2])
local multiplier = tonumber(ARGV[3])
local max_ms = tonumber(ARGV[4])
local reset_ms = tonumber(ARGV[5])
local free_attempts = tonumber(ARGV[6])

local key = KEYS[1]
local fail_count = tonumber(redis.call("HGET", key, "fail_count") or "0")
local last_failure_ms = tonumber(redis.call("HGET", key, "last_failure_ms") or "0")

if last_failure_ms == 0 or (now_ms - last_failure_ms) > reset_ms then
  fail_count = 0
end

fail_count = fail_count + 1
local delay = 0
if fail_count > free_attempts then
  delay = math.floor(base_ms * (multiplier ^ (fail_count - free_attempts - 1)))
end
if delay > max_ms then
  delay = max_ms
end

redis.call("HSET", key, "fail_count", tostring(fail_count), "last_failure_ms", tostring(now_ms), "cooldown_until_ms", tostring(now_ms + delay))
redis.call("PEXPIRE", key, reset_ms + delay + 60000)
return delay
`)

// RedisAuthAbuseGuard shares failure counters between API instances. Keys
// carry a hash of the email or IP, never the raw value.
type RedisAuthAbuseGuard struct {
	client redis.UniversalClient
	prefix string
	policy AuthAbusePolicy
	now    func() time.Time
}

func NewRedisAuthAbuseGuard(client redis.UniversalClient, prefix string, policy AuthAbusePolicy) *RedisAuthAbuseGuard {
	if prefix == "" {
		prefix = "campus"
	}
	return &RedisAuthAbuseGuard{
		client: client,
		prefix: prefix + ":auth_abuse",
		policy: normalizeAuthAbusePolicy(policy),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (g *RedisAuthAbuseGuard) Check(ctx context.Context, scope AuthAbuseScope, identity, ip string) (time.Duration, error) {
	dims := abuseDimensions(identity, ip)
	cmds := make([]*redis.SliceCmd, 0, len(dims))
	_, err := g.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, dim := range dims {
			cmds = append(cmds, p.HMGet(ctx, g.stateKey(scope, dim), "last_failure_ms", "cooldown_until_ms"))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	nowMS := g.now().UnixMilli()
	var longest time.Duration
	for _, cmd := range cmds {
		remaining, err := g.remainingCooldown(cmd.Val(), nowMS)
		if err != nil {
			return 0, err
		}
		longest = max(longest, remaining)
	}
	return longest, nil
}

func (g *RedisAuthAbuseGuard) RegisterFailure(ctx context.Context, scope AuthAbuseScope, identity, ip string) (time.Duration, error) {
	nowMS := g.now().UnixMilli()
	var longest time.Duration
	for _, dim := range abuseDimensions(identity, ip) {
		delay, err := g.bump(ctx, scope, g.stateKey(scope, dim), nowMS)
		if err != nil {
			return 0, err
		}
		longest = max(longest, delay)
	}
	return longest, nil
}

func (g *RedisAuthAbuseGuard) Reset(ctx context.Context, scope AuthAbuseScope, identity, ip string) error {
	dims := abuseDimensions(identity, ip)
	keys := make([]string, 0, len(dims))
	for _, dim := range dims {
		keys = append(keys, g.stateKey(scope, dim))
	}
	return g.client.Del(ctx, keys...).Err()
}

func (g *RedisAuthAbuseGuard) bump(ctx context.Context, scope AuthAbuseScope, key string, nowMS int64) (time.Duration, error) {
	result, err := redisAuthAbuseBumpScript.Run(
		ctx,
		g.client,
		[]string{key},
		nowMS,
		g.policy.BaseDelay.Milliseconds(),
		g.policy.Multiplier,
		g.policy.MaxDelay.Milliseconds(),
		g.policy.ResetWindow.Milliseconds(),
		g.policy.freeAttempts(scope),
	).Result()
	if err != nil {
		return 0, fmt.Errorf("auth abuse bump: %w", err)
	}
	delayMS, err := redisInt64(result)
	if err != nil {
		return 0, err
	}
	return time.Duration(max(delayMS, 0)) * time.Millisecond, nil
}

// remainingCooldown reads an HMGET of last_failure_ms and cooldown_until_ms.
func (g *RedisAuthAbuseGuard) remainingCooldown(values []any, nowMS int64) (time.Duration, error) {
	if len(values) != 2 || values[0] == nil || values[1] == nil {
		return 0, nil
	}
	lastFailureMS, err := redisInt64(values[0])
	if err != nil {
		return 0, err
	}
	cooldownUntilMS, err := redisInt64(values[1])
	if err != nil {
		return 0, err
	}
	if nowMS-lastFailureMS > g.policy.ResetWindow.Milliseconds() || cooldownUntilMS <= nowMS {
		return 0, nil
	}
	return time.Duration(cooldownUntilMS-nowMS) * time.Millisecond, nil
}

func (g *RedisAuthAbuseGuard) stateKey(scope AuthAbuseScope, dim abuseDimension) string {
	sum := sha256.Sum256([]byte(dim.value))
	return fmt.Sprintf("%s:%s:%s:%s", g.prefix, scope, dim.name, hex.EncodeToString(sum[:16]))
}

// redisInt64 accepts script integers and the decimal strings HMGET returns.
func redisInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("redis response overflows int64")
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	case string:
		var out int64
		if _, err := fmt.Sscan(n, &out); err != nil {
			return 0, fmt.Errorf("parse redis integer %q: %w", n, err)
		}
		return out, nil
	default:
		return 0, fmt.Errorf("unexpected redis response type %T", v)
	}
}
