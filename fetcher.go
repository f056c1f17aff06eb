package artdex

import "context"

// Fetcher retrieves page HTML from URLs.
// Implementations may use browser automation to render JavaScript-driven
// pages before returning markup.
type Fetcher interface {
	// Fetch retrieves the page at url and returns its HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases any underlying resources (browsers, connections).
	// Must be called when the Fetcher is no longer needed.
	Close() error
}
