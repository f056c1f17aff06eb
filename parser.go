package artdex

// ParseResult holds the outcome of a local (layer 1) parse of a single
// page. Layer 1 fields are ground truth: the remote extraction never
// overrides them.
type ParseResult struct {
	// Filtered reports that the page is not an artwork record (index,
	// filter, or navigation page) and must not reach layer 2.
	Filtered bool

	// BaselineTitle is the title found in the canonical artwork
	// container. It is used to validate the remote candidate title,
	// and becomes the record title when the candidate is rejected.
	BaselineTitle string

	// BaselineTitleCN is the localized half of a bilingual baseline
	// ("English Title / 中文标题"). Empty when the title is monolingual.
	BaselineTitleCN string

	// Year is the creation year or year range found in the content
	// text, e.g. "2023" or "2018-2022". Empty when absent.
	Year string

	// Tags is the page's tag set in document order. A page with an
	// empty tag set is filtered.
	Tags []string

	// Category is the primary category tag (first tag by convention).
	Category string

	// Images is the ordered list of artwork image URLs, high-resolution
	// variants preferred, insertion order matching visual order.
	Images []string
}

// PageParser parses static page markup into layer 1 ground truth.
// Implementations must be deterministic and must not perform network
// calls; malformed markup yields empty fields, never an error.
type PageParser interface {
	// ParsePage parses the raw HTML of pageURL. The URL is needed to
	// resolve relative image references.
	ParsePage(pageURL string, html string) (*ParseResult, error)
}
