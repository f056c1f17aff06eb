package mock

import (
	"context"

	"github.com/fwojciec/artdex"
)

var _ artdex.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of artdex.Extractor.
type Extractor struct {
	ExtractFn func(ctx context.Context, url string) (*artdex.Extraction, error)
	StatsFn   func() artdex.ExtractorStats
}

func (e *Extractor) Extract(ctx context.Context, url string) (*artdex.Extraction, error) {
	return e.ExtractFn(ctx, url)
}

func (e *Extractor) Stats() artdex.ExtractorStats {
	return e.StatsFn()
}
