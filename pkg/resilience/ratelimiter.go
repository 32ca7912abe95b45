package resilience

import (
	"context"

	"golang.org/x/time/rate"
)

// LimiterOpts configures the token bucket.
type LimiterOpts struct {
	// Rate is the number of calls permitted per second.
	Rate float64
	// Burst is the bucket capacity.
	Burst int
}

// DefaultLimiterOpts matches typical embedding-provider rate limits.
var DefaultLimiterOpts = LimiterOpts{
	Rate:  10,
	Burst: 20,
}

// Limiter is a token bucket rate limiter.
type Limiter struct {
	rl *rate.Limiter
}

// NewLimiter builds a Limiter, falling back to defaults for zero options.
func NewLimiter(opts LimiterOpts) *Limiter {
	if opts.Rate <= 0 {
		opts.Rate = DefaultLimiterOpts.Rate
	}
	if opts.Burst <= 0 {
		opts.Burst = DefaultLimiterOpts.Burst
	}
	return &Limiter{rl: rate.NewLimiter(rate.Limit(opts.Rate), opts.Burst)}
}

// Wait blocks until a token is available or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.rl.Wait(ctx)
}

// Allow reports whether a call may proceed right now, consuming a token if so.
func (l *Limiter) Allow() bool {
	return l.rl.Allow()
}
