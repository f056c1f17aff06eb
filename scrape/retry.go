package scrape

import (
	"context"
	"time"

	"github.com/fwojciec/artdex"
)

// DefaultRetryDelays returns the backoff delays for retryable extraction
// failures: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// ExtractWithRetry issues a remote extraction through the rate limiter,
// retrying retryable failures with the given backoff delays. Every
// attempt passes admission separately so a retry cannot bypass the
// call-rate gate. Non-retryable failures (malformed responses, context
// errors) surface immediately; exhausting the delays surfaces the last
// failure.
func ExtractWithRetry(ctx context.Context, extractor artdex.Extractor, limiter artdex.RateLimiter, url string, delays []time.Duration) (*artdex.Extraction, error) {
	maxAttempts := len(delays) + 1 // 1 initial + N retries

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		ext, err := extractor.Extract(ctx, url)
		if err == nil {
			return ext, nil
		}
		lastErr = err

		if !artdex.IsRetryable(err) {
			break
		}

		// Don't retry after the last attempt
		if attempt >= maxAttempts-1 {
			break
		}

		// Check context before sleeping
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		// Wait before next attempt
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return nil, lastErr
}
