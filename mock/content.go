package mock

import "github.com/fwojciec/artdex"

var _ artdex.ContentExtractor = (*ContentExtractor)(nil)

// ContentExtractor is a mock implementation of artdex.ContentExtractor.
type ContentExtractor struct {
	ExtractFn func(html string) (*artdex.PageContent, error)
}

func (e *ContentExtractor) Extract(html string) (*artdex.PageContent, error) {
	return e.ExtractFn(html)
}
