// Package bloom provides probabilistic URL deduplication for site
// discovery. Sitemap entries and homepage links for the same site
// overlap heavily, and a Bloom filter keeps the merge cheap without
// holding every seen URL in memory.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter records URLs that discovery has already accepted. Test may
// report a URL as seen when it was not (a false positive drops a
// candidate), but it never misses a URL that was added.
type Filter struct {
	seen *bloom.BloomFilter
}

// NewFilter sizes a filter for the expected number of candidate URLs.
// fpRate is the acceptable false positive probability at that size.
func NewFilter(expected uint, fpRate float64) *Filter {
	return &Filter{seen: bloom.NewWithEstimates(expected, fpRate)}
}

// Add marks a URL as seen.
func (f *Filter) Add(url string) {
	f.seen.AddString(url)
}

// Test reports whether a URL has probably been added before.
func (f *Filter) Test(url string) bool {
	return f.seen.TestString(url)
}

// EstimatedCount approximates how many distinct URLs were added.
func (f *Filter) EstimatedCount() uint {
	return uint(f.seen.ApproximatedSize())
}
