package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/artdex"
)

// Ensure LoggingSiteIndex implements artdex.SiteIndex.
var _ artdex.SiteIndex = (*LoggingSiteIndex)(nil)

// LoggingSiteIndex wraps a SiteIndex with debug logging.
type LoggingSiteIndex struct {
	next   artdex.SiteIndex
	logger *slog.Logger
}

// NewLoggingSiteIndex creates a new LoggingSiteIndex.
func NewLoggingSiteIndex(next artdex.SiteIndex, logger *slog.Logger) *LoggingSiteIndex {
	return &LoggingSiteIndex{next: next, logger: logger}
}

// DiscoverURLs delegates to the wrapped index and logs the operation.
func (s *LoggingSiteIndex) DiscoverURLs(ctx context.Context, siteURL string, filter *artdex.URLFilter) (candidates []artdex.Candidate, err error) {
	defer func(begin time.Time) {
		s.logger.Info("url discovery",
			"site", siteURL,
			"count", len(candidates),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DiscoverURLs(ctx, siteURL, filter)
}
