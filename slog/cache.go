package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/artdex"
)

// Ensure LoggingCacheStore implements artdex.CacheStore.
var _ artdex.CacheStore = (*LoggingCacheStore)(nil)

// LoggingCacheStore wraps a CacheStore with debug logging. Lookups log
// a hit flag instead of the error, since a miss is the normal path.
type LoggingCacheStore struct {
	next   artdex.CacheStore
	logger *slog.Logger
}

// NewLoggingCacheStore creates a new LoggingCacheStore.
func NewLoggingCacheStore(next artdex.CacheStore, logger *slog.Logger) *LoggingCacheStore {
	return &LoggingCacheStore{next: next, logger: logger}
}

// FindWork delegates to the wrapped store and logs the hit or miss.
func (s *LoggingCacheStore) FindWork(ctx context.Context, url string) (work *artdex.Work, err error) {
	defer func(begin time.Time) {
		s.logger.Info("cache lookup",
			"url", url,
			"hit", err == nil,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return s.next.FindWork(ctx, url)
}

// SaveWork delegates to the wrapped store and logs the write.
func (s *LoggingCacheStore) SaveWork(ctx context.Context, work *artdex.Work) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("cache save",
			"url", work.URL,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SaveWork(ctx, work)
}

// ListWorks delegates to the wrapped store and logs the result size.
func (s *LoggingCacheStore) ListWorks(ctx context.Context, filter artdex.WorkFilter) (works []*artdex.Work, err error) {
	defer func(begin time.Time) {
		s.logger.Info("cache list",
			"count", len(works),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ListWorks(ctx, filter)
}

// DeleteWork delegates to the wrapped store and logs the removal.
func (s *LoggingCacheStore) DeleteWork(ctx context.Context, url string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("cache delete",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteWork(ctx, url)
}

// FindDiscovery delegates to the wrapped store and logs the hit or miss.
func (s *LoggingCacheStore) FindDiscovery(ctx context.Context, siteURL string) (disc *artdex.Discovery, err error) {
	defer func(begin time.Time) {
		s.logger.Info("discovery lookup",
			"site", siteURL,
			"hit", err == nil,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return s.next.FindDiscovery(ctx, siteURL)
}

// SaveDiscovery delegates to the wrapped store and logs the write.
func (s *LoggingCacheStore) SaveDiscovery(ctx context.Context, disc *artdex.Discovery) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("discovery save",
			"site", disc.SiteURL,
			"urls", len(disc.URLs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SaveDiscovery(ctx, disc)
}

// Close delegates to the wrapped store.
func (s *LoggingCacheStore) Close() error {
	return s.next.Close()
}
