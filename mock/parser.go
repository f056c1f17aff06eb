package mock

import "github.com/fwojciec/artdex"

var _ artdex.PageParser = (*PageParser)(nil)

// PageParser is a mock implementation of artdex.PageParser.
type PageParser struct {
	ParsePageFn func(pageURL string, html string) (*artdex.ParseResult, error)
}

func (p *PageParser) ParsePage(pageURL string, html string) (*artdex.ParseResult, error) {
	return p.ParsePageFn(pageURL, html)
}
