package ratelimiter

import (
	"context"
	"time"
)

// Store keeps bucket state.
type Store interface {
	// ConsumeTokens refills the bucket for the time elapsed since the last
	// refill, then takes tokens. A negative remaining count means denied.
	// Consuming 0 tokens only refills.
	ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config, now time.Time) (remaining int, resetAt time.Time, err error)

	// Reset forgets the bucket for key.
	Reset(ctx context.Context, key string) error
}

// refill returns the token count and refill time of a bucket after the
// intervals elapsed since last.
func refill(tokens int, last, now time.Time, cfg Config) (int, time.Time) {
	elapsed := now.Sub(last)
	if elapsed < cfg.RefillInterval {
		return tokens, last
	}
	// Cap to avoid overflow on long idle buckets.
	maxIntervals := int64(cfg.Capacity/cfg.RefillRate + 1)
	intervals := min(int64(elapsed/cfg.RefillInterval), maxIntervals)
	return min(tokens+int(intervals)*cfg.RefillRate, cfg.Capacity), now
}
