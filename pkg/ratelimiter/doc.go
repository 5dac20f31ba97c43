// Package ratelimiter throttles repeated attempts with a token bucket.
//
// Each key owns a bucket holding up to Capacity tokens. Every attempt takes
// one; RefillRate tokens come back every RefillInterval. An attempt that
// finds too few tokens is denied and consumes nothing.
//
// Buckets live in a Store: MemoryStore for a single process, RedisStore when
// several instances must share one budget.
//
//	limiter, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
//		Capacity:       5,
//		RefillRate:     1,
//		RefillInterval: time.Minute,
//	})
//	byRoute := ratelimiter.Composite(ratelimiter.Static("2fa-verify"), userKey)
//	r.With(ratelimiter.Middleware(limiter, byRoute)).Post("/2fa/verify", h)
package ratelimiter
