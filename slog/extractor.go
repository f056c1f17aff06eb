package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/artdex"
)

// Ensure LoggingExtractor implements artdex.Extractor.
var _ artdex.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with logging. Every call here is a
// paid remote request, so each one is logged individually with its
// running call count.
type LoggingExtractor struct {
	next   artdex.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next artdex.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the call.
func (e *LoggingExtractor) Extract(ctx context.Context, url string) (ext *artdex.Extraction, err error) {
	defer func(begin time.Time) {
		title := ""
		if ext != nil {
			title = ext.Title
		}
		e.logger.Info("remote extraction",
			"url", url,
			"title", title,
			"calls", e.next.Stats().Calls,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(ctx, url)
}

// Stats delegates to the wrapped extractor.
func (e *LoggingExtractor) Stats() artdex.ExtractorStats {
	return e.next.Stats()
}
