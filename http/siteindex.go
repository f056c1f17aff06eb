package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/artdex"
)

// Ensure SiteIndex implements artdex.SiteIndex.
var _ artdex.SiteIndex = (*SiteIndex)(nil)

// SiteIndex discovers candidate work URLs from website sitemaps via HTTP.
type SiteIndex struct {
	client *http.Client
}

// NewSiteIndex creates a new SiteIndex with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSiteIndex(client *http.Client) *SiteIndex {
	if client == nil {
		client = http.DefaultClient
	}
	return &SiteIndex{client: client}
}

// DiscoverURLs finds candidate URLs from a site's sitemap, carrying the
// lastmod timestamp of each entry when the sitemap provides one.
// Returns an empty slice (not nil) if no sitemaps are found.
func (s *SiteIndex) DiscoverURLs(ctx context.Context, siteURL string, filter *artdex.URLFilter) ([]artdex.Candidate, error) {
	// Check for context cancellation early
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(siteURL)
	if err != nil || base.Host == "" {
		return nil, artdex.Errorf(artdex.EINVALID, "invalid site URL %q", siteURL)
	}

	// Sitemap discovery runs against the root of the domain.
	sitemapBase := *base
	sitemapBase.Path = ""

	sitemapURLs, err := s.findSitemapURLs(ctx, &sitemapBase)
	if err != nil {
		return nil, err
	}
	if len(sitemapURLs) == 0 {
		return []artdex.Candidate{}, nil
	}

	var all []artdex.Candidate
	seenSitemaps := make(map[string]bool)
	seenURLs := make(map[string]bool)

	for _, sitemapURL := range sitemapURLs {
		candidates, err := s.processSitemap(ctx, sitemapURL, seenSitemaps)
		if err != nil {
			return nil, err
		}
		// Deduplicate across sitemaps, first occurrence wins so an
		// earlier lastmod is not silently replaced.
		for _, c := range candidates {
			if seenURLs[c.URL] {
				continue
			}
			seenURLs[c.URL] = true
			all = append(all, c)
		}
	}

	if filter == nil {
		return all, nil
	}

	filtered := make([]artdex.Candidate, 0, len(all))
	for _, c := range all {
		if filter.Match(c.URL) {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// findSitemapURLs discovers sitemap URLs from robots.txt or falls back
// to /sitemap.xml.
func (s *SiteIndex) findSitemapURLs(ctx context.Context, base *url.URL) ([]string, error) {
	// Try robots.txt first
	robotsURL := base.ResolveReference(&url.URL{Path: "/robots.txt"})
	sitemaps, err := s.parseSitemapsFromRobots(ctx, robotsURL.String())
	if err == nil && len(sitemaps) > 0 {
		return sitemaps, nil
	}

	// Fall back to /sitemap.xml
	sitemapURL := base.ResolveReference(&url.URL{Path: "/sitemap.xml"})
	exists, err := s.urlExists(ctx, sitemapURL.String())
	if err != nil {
		// Propagate context errors, treat other errors as "not found"
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	if exists {
		return []string{sitemapURL.String()}, nil
	}

	return nil, nil
}

// parseSitemapsFromRobots extracts Sitemap: directives from robots.txt.
func (s *SiteIndex) parseSitemapsFromRobots(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := s.fetchURL(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Case-insensitive check for Sitemap: directive
		if strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			sitemapURL := strings.TrimSpace(line[8:]) // len("sitemap:") == 8
			if sitemapURL != "" {
				sitemaps = append(sitemaps, sitemapURL)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}

	return sitemaps, nil
}

// processSitemap fetches and parses a sitemap, handling both urlset and
// sitemapindex documents.
func (s *SiteIndex) processSitemap(ctx context.Context, sitemapURL string, seen map[string]bool) ([]artdex.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Avoid processing the same sitemap twice
	if seen[sitemapURL] {
		return nil, nil
	}
	seen[sitemapURL] = true

	body, err := s.fetchURL(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return nil, fmt.Errorf("parsing sitemap XML: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty sitemap XML")
	}

	// Check if this is a sitemap index
	if root.Tag == "sitemapindex" {
		return s.processSitemapIndex(ctx, root, seen)
	}

	// Otherwise treat as urlset
	return parseURLSet(root), nil
}

// processSitemapIndex processes a <sitemapindex> element recursively.
func (s *SiteIndex) processSitemapIndex(ctx context.Context, root *etree.Element, seen map[string]bool) ([]artdex.Candidate, error) {
	var all []artdex.Candidate

	for _, sitemap := range root.SelectElements("sitemap") {
		loc := sitemap.SelectElement("loc")
		if loc == nil {
			continue
		}
		sitemapURL := strings.TrimSpace(loc.Text())
		if sitemapURL == "" {
			continue
		}

		candidates, err := s.processSitemap(ctx, sitemapURL, seen)
		if err != nil {
			return nil, err
		}
		all = append(all, candidates...)
	}

	return all, nil
}

// parseURLSet extracts candidates from a <urlset> element.
func parseURLSet(root *etree.Element) []artdex.Candidate {
	var candidates []artdex.Candidate
	for _, urlEl := range root.SelectElements("url") {
		loc := urlEl.SelectElement("loc")
		if loc == nil {
			continue
		}
		u := strings.TrimSpace(loc.Text())
		if u == "" {
			continue
		}

		c := artdex.Candidate{URL: u}
		if lastmod := urlEl.SelectElement("lastmod"); lastmod != nil {
			c.LastMod = strings.TrimSpace(lastmod.Text())
		}
		candidates = append(candidates, c)
	}
	return candidates
}

// fetchURL fetches a URL and returns the response body.
func (s *SiteIndex) fetchURL(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, targetURL)
	}

	return resp.Body, nil
}

// urlExists checks if a URL returns 200 OK.
func (s *SiteIndex) urlExists(ctx context.Context, targetURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, targetURL, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}
