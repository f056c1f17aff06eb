package scrape

import (
	"context"
	"time"

	"github.com/fwojciec/artdex"
	"github.com/fwojciec/artdex/bloom"
)

// Bloom filter sizing for candidate deduplication. A portfolio site has
// hundreds of pages, not thousands, so this oversizes comfortably.
const (
	dedupeExpectedURLs      = 10000
	dedupeFalsePositiveRate = 0.01
)

// Discoverer finds candidate work URLs for a site. Results are cached
// with a TTL so repeated runs within a day skip the sitemap round trips.
// When the sitemap yields nothing, the site's homepage links are scanned
// as a fallback.
type Discoverer struct {
	Index   artdex.SiteIndex
	Scanner artdex.LinkScanner // optional fallback
	Cache   artdex.CacheStore  // optional

	// TTL bounds the cached discovery's lifetime.
	// Defaults to artdex.DefaultDiscoveryTTL.
	TTL time.Duration
}

// Discover returns the candidate URLs for siteURL in discovery order.
// A fresh cached discovery is reused without network calls.
func (d *Discoverer) Discover(ctx context.Context, siteURL string, filter *artdex.URLFilter) ([]artdex.Candidate, error) {
	if d.Cache != nil {
		disc, err := d.Cache.FindDiscovery(ctx, siteURL)
		switch {
		case err == nil:
			return disc.Candidates(), nil
		case artdex.ErrorCode(err) != artdex.ENOTFOUND:
			return nil, err
		}
	}

	candidates, err := d.discoverFresh(ctx, siteURL, filter)
	if err != nil {
		return nil, err
	}

	if err := d.saveDiscovery(ctx, siteURL, candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// DiscoverNew reads the sitemap fresh and returns only the candidates
// that are new or whose lastmod moved since the previous cached
// discovery. The cache entry is replaced with the full fresh set. With
// no previous entry every candidate is new.
func (d *Discoverer) DiscoverNew(ctx context.Context, siteURL string, filter *artdex.URLFilter) ([]artdex.Candidate, error) {
	var prev *artdex.Discovery
	if d.Cache != nil {
		disc, err := d.Cache.FindDiscovery(ctx, siteURL)
		switch {
		case err == nil:
			prev = disc
		case artdex.ErrorCode(err) != artdex.ENOTFOUND:
			return nil, err
		}
	}

	candidates, err := d.discoverFresh(ctx, siteURL, filter)
	if err != nil {
		return nil, err
	}

	if err := d.saveDiscovery(ctx, siteURL, candidates); err != nil {
		return nil, err
	}

	if prev == nil {
		return candidates, nil
	}

	known := make(map[string]bool, len(prev.URLs))
	for _, u := range prev.URLs {
		known[u] = true
	}

	fresh := make([]artdex.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !known[c.URL] {
			fresh = append(fresh, c)
			continue
		}
		if c.LastMod != "" && c.LastMod != prev.LastMods[c.URL] {
			fresh = append(fresh, c)
		}
	}
	return fresh, nil
}

// discoverFresh reads the sitemap and, when it yields nothing, scans the
// homepage links instead. Candidates are deduplicated preserving first
// occurrence.
func (d *Discoverer) discoverFresh(ctx context.Context, siteURL string, filter *artdex.URLFilter) ([]artdex.Candidate, error) {
	candidates, err := d.Index.DiscoverURLs(ctx, siteURL, filter)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 && d.Scanner != nil {
		urls, err := d.Scanner.ScanLinks(ctx, siteURL, filter)
		if err != nil {
			return nil, err
		}
		for _, u := range urls {
			candidates = append(candidates, artdex.Candidate{URL: u})
		}
	}

	seen := bloom.NewFilter(dedupeExpectedURLs, dedupeFalsePositiveRate)
	deduped := make([]artdex.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if seen.Test(c.URL) {
			continue
		}
		seen.Add(c.URL)
		deduped = append(deduped, c)
	}
	return deduped, nil
}

func (d *Discoverer) saveDiscovery(ctx context.Context, siteURL string, candidates []artdex.Candidate) error {
	if d.Cache == nil {
		return nil
	}

	disc := &artdex.Discovery{
		SiteURL:   siteURL,
		URLs:      make([]string, 0, len(candidates)),
		FetchedAt: time.Now().UTC(),
		TTL:       d.ttl(),
	}
	for _, c := range candidates {
		disc.URLs = append(disc.URLs, c.URL)
		if c.LastMod == "" {
			continue
		}
		if disc.LastMods == nil {
			disc.LastMods = make(map[string]string)
		}
		disc.LastMods[c.URL] = c.LastMod
	}
	return d.Cache.SaveDiscovery(ctx, disc)
}

func (d *Discoverer) ttl() time.Duration {
	if d.TTL > 0 {
		return d.TTL
	}
	return artdex.DefaultDiscoveryTTL
}
