package scrape_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/artdex"
	"github.com/fwojciec/artdex/mock"
	"github.com/fwojciec/artdex/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractWithRetry(t *testing.T) {
	t.Parallel()

	t.Run("returns the extraction on first success", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		extractor := &mock.Extractor{
			ExtractFn: func(_ context.Context, _ string) (*artdex.Extraction, error) {
				attempts++
				return &artdex.Extraction{Title: "Guard I"}, nil
			},
		}

		ext, err := scrape.ExtractWithRetry(context.Background(), extractor, nil, "https://example.com/Guard-I", []time.Duration{0, 0, 0})

		require.NoError(t, err)
		assert.Equal(t, "Guard I", ext.Title)
		assert.Equal(t, 1, attempts)
	})

	t.Run("retries retryable failures up to the bound", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		extractor := &mock.Extractor{
			ExtractFn: func(_ context.Context, _ string) (*artdex.Extraction, error) {
				attempts++
				return nil, artdex.Errorf(artdex.ERATELIMIT, "rate limited")
			},
		}

		_, err := scrape.ExtractWithRetry(context.Background(), extractor, nil, "https://example.com/Guard-I", []time.Duration{0, 0, 0})

		require.Error(t, err)
		assert.Equal(t, artdex.ERATELIMIT, artdex.ErrorCode(err))
		assert.Equal(t, 4, attempts, "1 initial + 3 retries")
	})

	t.Run("recovers when a retry succeeds", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		extractor := &mock.Extractor{
			ExtractFn: func(_ context.Context, _ string) (*artdex.Extraction, error) {
				attempts++
				if attempts < 3 {
					return nil, artdex.Errorf(artdex.EUNAVAILABLE, "service hiccup")
				}
				return &artdex.Extraction{Title: "Guard I"}, nil
			},
		}

		ext, err := scrape.ExtractWithRetry(context.Background(), extractor, nil, "https://example.com/Guard-I", []time.Duration{0, 0, 0})

		require.NoError(t, err)
		assert.Equal(t, "Guard I", ext.Title)
		assert.Equal(t, 3, attempts)
	})

	t.Run("does not retry non-retryable failures", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		extractor := &mock.Extractor{
			ExtractFn: func(_ context.Context, _ string) (*artdex.Extraction, error) {
				attempts++
				return nil, artdex.Errorf(artdex.EINVALID, "malformed response")
			},
		}

		_, err := scrape.ExtractWithRetry(context.Background(), extractor, nil, "https://example.com/Guard-I", []time.Duration{0, 0, 0})

		require.Error(t, err)
		assert.Equal(t, artdex.EINVALID, artdex.ErrorCode(err))
		assert.Equal(t, 1, attempts)
	})

	t.Run("does not retry timeouts", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		extractor := &mock.Extractor{
			ExtractFn: func(_ context.Context, _ string) (*artdex.Extraction, error) {
				attempts++
				return nil, artdex.Errorf(artdex.ETIMEOUT, "wait budget exceeded")
			},
		}

		_, err := scrape.ExtractWithRetry(context.Background(), extractor, nil, "https://example.com/Guard-I", []time.Duration{0, 0, 0})

		require.Error(t, err)
		assert.Equal(t, artdex.ETIMEOUT, artdex.ErrorCode(err))
		assert.Equal(t, 1, attempts)
	})

	t.Run("waits for admission before every attempt", func(t *testing.T) {
		t.Parallel()

		waits := 0
		limiter := &mock.RateLimiter{
			WaitFn: func(_ context.Context) error {
				waits++
				return nil
			},
		}
		attempts := 0
		extractor := &mock.Extractor{
			ExtractFn: func(_ context.Context, _ string) (*artdex.Extraction, error) {
				attempts++
				if attempts == 1 {
					return nil, artdex.Errorf(artdex.ERATELIMIT, "rate limited")
				}
				return &artdex.Extraction{Title: "Guard I"}, nil
			},
		}

		_, err := scrape.ExtractWithRetry(context.Background(), extractor, limiter, "https://example.com/Guard-I", []time.Duration{0, 0})

		require.NoError(t, err)
		assert.Equal(t, 2, attempts)
		assert.Equal(t, 2, waits, "each attempt passes admission separately")
	})

	t.Run("surfaces limiter errors", func(t *testing.T) {
		t.Parallel()

		limiter := &mock.RateLimiter{
			WaitFn: func(ctx context.Context) error {
				return ctx.Err()
			},
		}
		extractor := &mock.Extractor{
			ExtractFn: func(_ context.Context, _ string) (*artdex.Extraction, error) {
				t.Fatal("extractor must not be called when admission fails")
				return nil, nil
			},
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := scrape.ExtractWithRetry(ctx, extractor, limiter, "https://example.com/Guard-I", []time.Duration{0})

		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("stops when the context is canceled during backoff", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		attempts := 0
		extractor := &mock.Extractor{
			ExtractFn: func(_ context.Context, _ string) (*artdex.Extraction, error) {
				attempts++
				cancel()
				return nil, artdex.Errorf(artdex.EUNAVAILABLE, "service hiccup")
			},
		}

		_, err := scrape.ExtractWithRetry(ctx, extractor, nil, "https://example.com/Guard-I", []time.Duration{time.Minute})

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, attempts)
	})
}
