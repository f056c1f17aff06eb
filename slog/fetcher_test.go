package slog_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/fwojciec/artdex/mock"
	artdexslog "github.com/fwojciec/artdex/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("logs url, size, and duration on success", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				return "<html>content</html>", nil
			},
		}

		fetcher := artdexslog.NewLoggingFetcher(inner, slog.New(slog.NewTextHandler(&buf, nil)))
		html, err := fetcher.Fetch(context.Background(), "https://eventstructure.com/Guard-I")

		require.NoError(t, err)
		assert.Equal(t, "<html>content</html>", html)

		output := buf.String()
		assert.Contains(t, output, "msg=fetch")
		assert.Contains(t, output, "url=https://eventstructure.com/Guard-I")
		assert.Contains(t, output, "bytes=20")
		assert.Contains(t, output, "duration=")
		assert.Contains(t, output, "err=<nil>")
	})

	t.Run("records the error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				return "", errors.New("network error")
			},
		}

		fetcher := artdexslog.NewLoggingFetcher(inner, slog.New(slog.NewTextHandler(&buf, nil)))
		_, err := fetcher.Fetch(context.Background(), "https://eventstructure.com/Broken")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"network error\"")
	})
}

func TestLoggingFetcher_Close(t *testing.T) {
	t.Parallel()

	closeCalled := false
	inner := &mock.Fetcher{
		CloseFn: func() error {
			closeCalled = true
			return nil
		},
	}

	fetcher := artdexslog.NewLoggingFetcher(inner, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, fetcher.Close())
	assert.True(t, closeCalled)
}
