package security

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// KEYS[1] attempts zset, KEYS[2] lock key. The lock key outlives the lock by
// one window so an expired lock is still seen and clears the attempts.
// ARGV: now ms, window ms, max attempts, lockout ms, member.
// Returns {allowed, remaining, reset ms, locked-until ms}.
const slidingWindowScript = `
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
local lockout = tonumber(ARGV[4])

local locked = tonumber(redis.call('GET', KEYS[2]) or '0')
if locked > now then
  return {0, 0, locked, locked}
end
if locked > 0 then
  redis.call('DEL', KEYS[1], KEYS[2])
end

redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', now - window)
local count = redis.call('ZCARD', KEYS[1])
if count >= max then
  local oldest = tonumber(redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')[2])
  if lockout <= 0 then
    return {0, 0, oldest + window, 0}
  end
  local untilMs = oldest + lockout
  if untilMs > now then
    redis.call('SET', KEYS[2], untilMs, 'PX', untilMs - now + window)
    return {0, 0, untilMs, untilMs}
  end
  redis.call('DEL', KEYS[1])
  count = 0
end

redis.call('ZADD', KEYS[1], now, ARGV[5])
redis.call('PEXPIRE', KEYS[1], window)
local first = tonumber(redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')[2])
return {1, max - count - 1, first + window, 0}
`

// RedisStore shares rate-limit state between processes. Each attempt runs as a
// single script so concurrent workers cannot lose updates.
type RedisStore struct {
	client *redis.Client
	prefix string
	script *redis.Script
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		script: redis.NewScript(slidingWindowScript),
	}
}

func (s *RedisStore) keys(key string) []string {
	return []string{s.prefix + key, s.prefix + key + ":lock"}
}

func (s *RedisStore) Hit(ctx context.Context, key string, now time.Time, p Policy) (Result, error) {
	nowMs := now.UnixMilli()
	member := fmt.Sprintf("%d-%s", nowMs, uuid.NewString())

	raw, err := s.script.Run(ctx, s.client, s.keys(key),
		nowMs, p.Window.Milliseconds(), p.MaxAttempts, p.Lockout.Milliseconds(), member).Result()
	if err != nil {
		return Result{}, err
	}

	vals, ok := raw.([]interface{})
	if !ok || len(vals) != 4 {
		return Result{}, fmt.Errorf("unexpected script reply %v", raw)
	}
	nums := make([]int64, len(vals))
	for i, v := range vals {
		n, ok := v.(int64)
		if !ok {
			return Result{}, fmt.Errorf("unexpected script reply element %v", v)
		}
		nums[i] = n
	}

	res := Result{
		Allowed:   nums[0] == 1,
		Remaining: int(nums[1]),
		ResetAt:   time.UnixMilli(nums[2]),
	}
	if nums[3] > 0 {
		res.LockedUntil = time.UnixMilli(nums[3])
	}
	return res, nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.keys(key)...).Err()
}
