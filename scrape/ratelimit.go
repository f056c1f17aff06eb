package scrape

import (
	"context"

	"github.com/fwojciec/artdex"
	"golang.org/x/time/rate"
)

// DefaultCallsPerMinute is the admission rate for the remote extraction
// service. Matches the service's documented free-tier limit.
const DefaultCallsPerMinute = 10

var _ artdex.RateLimiter = (*Limiter)(nil)

// Limiter admits remote extraction calls at a fixed per-minute rate
// using a token bucket with a burst of 1 (no bursting allowed). Callers
// block until a slot frees; no call is ever dropped.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a Limiter admitting callsPerMinute calls.
// Non-positive rates fall back to DefaultCallsPerMinute.
func NewLimiter(callsPerMinute float64) *Limiter {
	if callsPerMinute <= 0 {
		callsPerMinute = DefaultCallsPerMinute
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(callsPerMinute/60.0), 1),
	}
}

// Wait blocks until the rate limit admits another call.
// Returns an error if the context is canceled before the wait completes.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
