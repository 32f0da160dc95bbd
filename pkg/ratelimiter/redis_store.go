package ratelimiter

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/billingkit/pkg/redis"
)

// consumeScript refills and takes tokens atomically.
// KEYS[1] bucket hash; ARGV[1] tokens, ARGV[2] capacity, ARGV[3] refill rate,
// ARGV[4] refill interval ms, ARGV[5] now ms, ARGV[6] ttl ms.
// Returns {remaining, last_refill_ms}.
var consumeScript = goredis.NewScript(`
local capacity = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])
local interval = tonumber(ARGV[4])
local now = tonumber(ARGV[5])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'last_refill')
local tokens = tonumber(state[1])
local last = tonumber(state[2])
if tokens == nil then
	tokens = capacity
	last = now
end

local intervals = math.floor((now - last) / interval)
if intervals > 0 then
	intervals = math.min(intervals, math.floor(capacity / rate) + 1)
	tokens = math.min(tokens + intervals * rate, capacity)
	last = now
end

local want = tonumber(ARGV[1])
local remaining = tokens - want
if remaining >= 0 then
	tokens = remaining
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'last_refill', last)
redis.call('PEXPIRE', KEYS[1], ARGV[6])
return {remaining, last}
`)

// RedisStore keeps buckets in Redis hashes so limits hold across replicas.
type RedisStore struct {
	client goredis.UniversalClient
	prefix string
}

// NewRedisStore returns a store writing keys under prefix.
func NewRedisStore(client goredis.UniversalClient, prefix string) *RedisStore {
	if client == nil {
		panic("ratelimiter: redis client cannot be nil")
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(key string) string {
	return redis.Key(s.prefix, "ratelimit", key)
}

func (s *RedisStore) ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config, now time.Time) (int, time.Time, error) {
	// Full refill time, so idle buckets expire once they would be full anyway.
	ttl := time.Duration(cfg.Capacity/cfg.RefillRate+1) * cfg.RefillInterval

	res, err := consumeScript.Run(ctx, s.client, []string{s.key(key)},
		tokens, cfg.Capacity, cfg.RefillRate,
		cfg.RefillInterval.Milliseconds(), now.UnixMilli(), ttl.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, errors.New("unexpected script reply"))
	}
	return int(res[0]), time.UnixMilli(res[1]).Add(cfg.RefillInterval), nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
