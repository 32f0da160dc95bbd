// Package ratelimiter implements token bucket rate limiting with in-memory
// and Redis stores plus an HTTP middleware.
//
// The billing API uses it to cap AppSumo redemption attempts per
// organization, which keeps code guessing slow:
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	bucket, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       10,
//		RefillRate:     1,
//		RefillInterval: time.Minute,
//	})
//
//	r.With(ratelimiter.Middleware(bucket, keyFunc)).Post("/redeem", redeem)
//
// Denied requests do not take tokens. The middleware sets X-RateLimit-Limit,
// X-RateLimit-Remaining and X-RateLimit-Reset on every limited route and
// Retry-After on denials.
package ratelimiter
