package artdex

// PageContent holds the main content isolated from an HTML page.
type PageContent struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (nav, footer, sidebar, ads) has been removed.
	ContentHTML string
}

// ContentExtractor isolates main content from HTML pages, removing
// boilerplate. Used to prepare page text for prompt-based extraction and
// as a title fallback when the canonical containers are missing.
type ContentExtractor interface {
	// Extract processes raw HTML and returns the main content.
	Extract(html string) (*PageContent, error)
}
