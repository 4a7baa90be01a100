/**
 * @description
 * Redis-backed fixed-window rate limiter used to throttle checkout-intent
 * creation per investor. A Lua script increments the counter and sets the
 * window expiry atomically so concurrent requests never race the expiry.
 *
 * @dependencies
 * - github.com/redis/go-redis/v9: Redis client.
 */

package app

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var rateLimitScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
return {current, ttl}
`)

// RedisInvestRateLimiter throttles investment-intent creation using a shared
// Redis counter, so the limit holds across service replicas.
type RedisInvestRateLimiter struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisInvestRateLimiter creates a limiter with the given key prefix.
func NewRedisInvestRateLimiter(client redis.UniversalClient, prefix string) *RedisInvestRateLimiter {
	cleaned := strings.TrimSpace(prefix)
	cleaned = strings.TrimSuffix(cleaned, ":")
	if cleaned == "" {
		cleaned = "startupconnect:rate_limit"
	}
	return &RedisInvestRateLimiter{client: client, prefix: cleaned}
}

// ConsumeRateLimit increments the counter for (scope, subject) and returns the
// count within the current window plus the seconds until the window resets.
// A nil limiter or nil client disables limiting and reports zero usage.
func (l *RedisInvestRateLimiter) ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (int, int, error) {
	if l == nil || l.client == nil || limit <= 0 || window <= 0 {
		return 0, 0, nil
	}

	key := fmt.Sprintf("%s:%s:%s", l.prefix, scope, subject)
	res, err := rateLimitScript.Run(ctx, l.client, []string{key}, window.Milliseconds()).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("rate limit script failed: %w", err)
	}

	values, ok := res.([]interface{})
	if !ok || len(values) != 2 {
		return 0, 0, fmt.Errorf("unexpected rate limit script result: %v", res)
	}
	count, ok := values[0].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected rate limit count type: %T", values[0])
	}
	ttlMs, ok := values[1].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected rate limit ttl type: %T", values[1])
	}

	retryAfter := 0
	if ttlMs > 0 {
		retryAfter = int(math.Ceil(float64(ttlMs) / 1000.0))
	}
	return int(count), retryAfter, nil
}
