package artdex

import (
	"context"
	"net/url"
	"regexp"
)

// Candidate is a discovered work URL, optionally annotated with the
// sitemap's last-modified timestamp for staleness decisions.
type Candidate struct {
	URL     string `json:"url"`
	LastMod string `json:"lastMod,omitempty"`
}

// SiteIndex discovers candidate URLs from a site's sitemap.
type SiteIndex interface {
	// DiscoverURLs finds candidate URLs for a site. It first checks
	// robots.txt for sitemap directives, then falls back to
	// /sitemap.xml. Sitemap indexes are resolved recursively, and
	// lastmod values are carried through when present.
	//
	// The filter can be used to exclude non-work URLs by pattern.
	// If filter is nil, all URLs are returned.
	DiscoverURLs(ctx context.Context, siteURL string, filter *URLFilter) ([]Candidate, error)
}

// LinkScanner extracts candidate work links from a rendered page. Used as
// the discovery fallback when a site has no readable sitemap.
type LinkScanner interface {
	// ScanLinks fetches pageURL and returns the work links found on it,
	// resolved to absolute URLs, deduplicated, in document order.
	ScanLinks(ctx context.Context, pageURL string, filter *URLFilter) ([]string, error)
}

// URLFilter decides which discovered URLs are plausible work pages.
// The zero filter passes everything except the site root.
type URLFilter struct {
	// Host restricts matches to a single host when set.
	Host string

	// Include patterns - if set, only paths matching at least one
	// pattern are included.
	Include []*regexp.Regexp

	// Exclude patterns - paths matching any pattern are excluded.
	// Exclude is applied after Include.
	Exclude []*regexp.Regexp
}

// Match returns true if the URL passes the filter. The patterns run
// against the URL path, not the full URL. The site root never matches:
// it is an index, not a record.
func (f *URLFilter) Match(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := u.Path
	if path == "" || path == "/" {
		return false
	}

	if f == nil {
		return true
	}
	if f.Host != "" && u.Host != f.Host {
		return false
	}

	if len(f.Include) > 0 {
		matched := false
		for _, re := range f.Include {
			if re.MatchString(path) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, re := range f.Exclude {
		if re.MatchString(path) {
			return false
		}
	}

	return true
}

// defaultExcludes matches the non-work paths a portfolio SPA exposes:
// feeds, filter/tag listings, and biographical pages.
var defaultExcludes = []*regexp.Regexp{
	regexp.MustCompile(`^/(?:rss|feed|filter|contact|cv|about|index|sitemap)(?:/|$)`),
	regexp.MustCompile(`/tag/`),
	regexp.MustCompile(`(?i)\.(?:xml|txt|json|pdf|jpe?g|png|gif|webp)$`),
}

// NewWorkFilter returns the URL filter for a site: bound to the site's
// host, excluding the standard non-work paths plus any extra patterns.
func NewWorkFilter(siteURL string, extra ...*regexp.Regexp) (*URLFilter, error) {
	u, err := url.Parse(siteURL)
	if err != nil || u.Host == "" {
		return nil, Errorf(EINVALID, "invalid site URL %q", siteURL)
	}
	return &URLFilter{
		Host:    u.Host,
		Exclude: append(append([]*regexp.Regexp(nil), defaultExcludes...), extra...),
	}, nil
}
