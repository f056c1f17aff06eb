package mock

import (
	"context"

	"github.com/fwojciec/artdex"
)

// Compile-time interface verification.
var (
	_ artdex.SiteIndex   = (*SiteIndex)(nil)
	_ artdex.LinkScanner = (*LinkScanner)(nil)
)

// SiteIndex is a mock implementation of artdex.SiteIndex.
type SiteIndex struct {
	DiscoverURLsFn func(ctx context.Context, siteURL string, filter *artdex.URLFilter) ([]artdex.Candidate, error)
}

func (s *SiteIndex) DiscoverURLs(ctx context.Context, siteURL string, filter *artdex.URLFilter) ([]artdex.Candidate, error) {
	return s.DiscoverURLsFn(ctx, siteURL, filter)
}

// LinkScanner is a mock implementation of artdex.LinkScanner.
type LinkScanner struct {
	ScanLinksFn func(ctx context.Context, pageURL string, filter *artdex.URLFilter) ([]string, error)
}

func (s *LinkScanner) ScanLinks(ctx context.Context, pageURL string, filter *artdex.URLFilter) ([]string, error) {
	return s.ScanLinksFn(ctx, pageURL, filter)
}
