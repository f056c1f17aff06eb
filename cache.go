package artdex

import (
	"context"
	"time"
)

// DefaultDiscoveryTTL bounds how long a cached discovery result stays
// valid before the sitemap is re-read.
const DefaultDiscoveryTTL = 24 * time.Hour

// Discovery is a cached URL discovery result for one site.
type Discovery struct {
	SiteURL   string            `json:"siteUrl"`
	URLs      []string          `json:"urls"`
	LastMods  map[string]string `json:"lastMods,omitempty"`
	FetchedAt time.Time         `json:"fetchedAt"`
	TTL       time.Duration     `json:"ttl"`
}

// Expired reports whether the entry's TTL has lapsed at the given time.
// Entries without a TTL never expire.
func (d *Discovery) Expired(now time.Time) bool {
	if d.TTL <= 0 {
		return false
	}
	return now.After(d.FetchedAt.Add(d.TTL))
}

// Candidates returns the discovery's URLs in order, each annotated with
// its last-modified timestamp when known.
func (d *Discovery) Candidates() []Candidate {
	out := make([]Candidate, 0, len(d.URLs))
	for _, u := range d.URLs {
		out = append(out, Candidate{URL: u, LastMod: d.LastMods[u]})
	}
	return out
}

// Clone returns a deep copy of the discovery entry.
func (d *Discovery) Clone() *Discovery {
	other := *d
	other.URLs = append([]string(nil), d.URLs...)
	if d.LastMods != nil {
		other.LastMods = make(map[string]string, len(d.LastMods))
		for k, v := range d.LastMods {
			other.LastMods[k] = v
		}
	}
	return &other
}

// SortOrder represents the sort order for work queries.
type SortOrder string

// SortOrder constants for WorkFilter.
const (
	SortByURL       SortOrder = "url"
	SortByYear      SortOrder = "year"
	SortByFetchedAt SortOrder = "fetched_at"
)

// WorkFilter represents a filter for ListWorks.
type WorkFilter struct {
	URL      *string `json:"url"`
	Host     *string `json:"host"`
	Category *string `json:"category"`
	Year     *string `json:"year"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`

	SortBy SortOrder `json:"sortBy"`
}

// CacheStore persists works and discovery results between runs, keyed by
// URL. Implementations must be safe for concurrent use; writes to the
// same key are last-writer-wins since records derive deterministically
// from the same inputs. All reads return copies: no caller ever holds a
// reference to stored state.
type CacheStore interface {
	// FindWork retrieves the cached work for a URL.
	// Returns ENOTFOUND if no record exists.
	FindWork(ctx context.Context, url string) (*Work, error)

	// SaveWork inserts or replaces the record for work.URL.
	SaveWork(ctx context.Context, work *Work) error

	// ListWorks retrieves cached works matching the filter.
	ListWorks(ctx context.Context, filter WorkFilter) ([]*Work, error)

	// DeleteWork permanently removes the record for a URL.
	// Returns ENOTFOUND if no record exists.
	DeleteWork(ctx context.Context, url string) error

	// FindDiscovery retrieves the cached discovery result for a site.
	// Returns ENOTFOUND if no entry exists or the entry has expired.
	FindDiscovery(ctx context.Context, siteURL string) (*Discovery, error)

	// SaveDiscovery inserts or replaces the discovery entry for its site.
	SaveDiscovery(ctx context.Context, disc *Discovery) error

	// Close flushes and releases the underlying storage.
	Close() error
}
