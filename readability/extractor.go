// Package readability is the alternative main-content extractor, useful
// when trafilatura's precision-first heuristics drop the short prose
// blocks portfolio pages tend to carry.
package readability

import (
	"strings"

	"github.com/fwojciec/artdex"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements artdex.ContentExtractor at compile time.
var _ artdex.ContentExtractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*artdex.PageContent, error) {
	if rawHTML == "" {
		return nil, artdex.Errorf(artdex.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, err
	}

	return &artdex.PageContent{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
