package mock

import (
	"context"

	"github.com/fwojciec/artdex"
)

var _ artdex.RateLimiter = (*RateLimiter)(nil)

// RateLimiter is a mock implementation of artdex.RateLimiter.
type RateLimiter struct {
	WaitFn func(ctx context.Context) error
}

func (l *RateLimiter) Wait(ctx context.Context) error {
	return l.WaitFn(ctx)
}
