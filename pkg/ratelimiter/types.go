package ratelimiter

import "time"

// Result is the outcome of a rate limit check.
type Result struct {
	Limit     int       // bucket capacity
	Remaining int       // negative when the request was denied
	ResetAt   time.Time // next refill
	now       time.Time
}

// Allowed reports whether the request fits in the bucket.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long to wait before retrying, 0 when allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(r.ResetAt.Sub(r.now), 0)
}

// Config is a token bucket definition.
type Config struct {
	Capacity       int           `env:"REDEEM_RATE_CAPACITY" envDefault:"10"` // burst size
	RefillRate     int           `env:"REDEEM_RATE_REFILL" envDefault:"1"`    // tokens added per interval
	RefillInterval time.Duration `env:"REDEEM_RATE_INTERVAL" envDefault:"1m"` // refill period
}
