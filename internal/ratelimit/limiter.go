// Package ratelimit implements a redis-backed token bucket used to
// shield the webhook endpoint from delivery storms.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Limiter interface {
	// Allow consumes one token for key. It reports false when the
	// bucket is empty.
	Allow(ctx context.Context, key string) (bool, error)
}

// tokenBucketScript refills lazily on each call and consumes one
// token atomically. KEYS[1] bucket key, ARGV: rate per second, burst,
// now (unix micros).
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local bucket = redis.call('HMGET', key, 'tokens', 'updated')
local tokens = tonumber(bucket[1])
local updated = tonumber(bucket[2])

if tokens == nil then
  tokens = burst
  updated = now
end

local elapsed = (now - updated) / 1000000
tokens = math.min(burst, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call('HSET', key, 'tokens', tokens, 'updated', now)
redis.call('PEXPIRE', key, math.ceil(burst / rate * 2000))
return allowed
`)

type redisLimiter struct {
	client *redis.Client
	rate   float64
	burst  int
}

func NewRedis(client *redis.Client, rate float64, burst int) Limiter {
	if rate <= 0 {
		rate = 50
	}
	if burst <= 0 {
		burst = int(rate) * 2
	}
	return &redisLimiter{client: client, rate: rate, burst: burst}
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now().UnixMicro()
	res, err := tokenBucketScript.Run(ctx, l.client,
		[]string{"ratelimit:" + key},
		l.rate, l.burst, now,
	).Int64()
	if err != nil {
		// Redis being down must not take the webhook endpoint with it.
		return true, err
	}
	return res == 1, nil
}

// NoOp admits everything. Used when rate limiting is disabled.
type NoOp struct{}

func (NoOp) Allow(ctx context.Context, key string) (bool, error) { return true, nil }
