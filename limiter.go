package artdex

import "context"

// RateLimiter gates calls to a paid external service. Admission is
// blocking: callers suspend until a slot frees, and no call is dropped.
type RateLimiter interface {
	// Wait blocks until the limiter admits another call.
	// Returns an error only if the context is canceled first.
	Wait(ctx context.Context) error
}
