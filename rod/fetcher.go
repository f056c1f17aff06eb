// Package rod fetches rendered HTML from SPA pages using headless Chrome.
// Cargo-style portfolio sites build their galleries client side and
// lazy-load images on scroll, so a plain HTTP fetch misses most of the
// content a work page actually shows.
package rod

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fwojciec/artdex"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Fetch defaults. Three scroll passes are enough for a single work page;
// gallery index pages that page in content may need more.
const (
	DefaultFetchTimeout = 60 * time.Second
	DefaultScrollPasses = 3
	DefaultScrollWait   = 500 * time.Millisecond
)

// scrollScript scrolls to the page extents and fires a scroll event.
// Cargo galleries listen for the event to swap lazy placeholders for the
// real src_o image URLs, and horizontal galleries only load on x-scroll.
const scrollScript = `() => {
	window.scrollTo(document.documentElement.scrollWidth, document.body.scrollHeight);
	window.dispatchEvent(new Event("scroll"));
}`

// Ensure Fetcher implements artdex.Fetcher at compile time.
var _ artdex.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using a managed headless Chrome
// browser. After the page loads it runs a configurable number of scroll
// passes to trigger lazy loading before capturing the DOM. Safe for
// concurrent use.
type Fetcher struct {
	manager      *BrowserManager
	timeout      time.Duration
	scrollPasses int
	scrollWait   time.Duration
	maxPages     int64
	closed       atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the per-fetch deadline applied when the caller's
// context has none.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithScrollPasses sets how many scroll passes run after page load.
// Zero disables scrolling.
func WithScrollPasses(n int) Option {
	return func(f *Fetcher) {
		f.scrollPasses = n
	}
}

// WithScrollWait sets the pause between scroll passes, giving the page
// time to load what the pass revealed.
func WithScrollWait(d time.Duration) Option {
	return func(f *Fetcher) {
		f.scrollWait = d
	}
}

// WithBrowserMaxPages sets how many pages the underlying browser serves
// before it is recycled.
func WithBrowserMaxPages(n int64) Option {
	return func(f *Fetcher) {
		f.maxPages = n
	}
}

// NewFetcher launches a managed headless Chrome browser. Close must be
// called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		scrollPasses: DefaultScrollPasses,
		scrollWait:   DefaultScrollWait,
	}
	for _, opt := range opts {
		opt(f)
	}

	var managerOpts []ManagerOption
	if f.maxPages > 0 {
		managerOpts = append(managerOpts, WithMaxPages(f.maxPages))
	}
	manager, err := NewBrowserManager(managerOpts...)
	if err != nil {
		return nil, err
	}
	f.manager = manager
	return f, nil
}

// Fetch navigates to the URL, scrolls the page to trigger lazy loading,
// and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", artdex.Errorf(artdex.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, ok := ctx.Deadline(); !ok && f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	page, err := f.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}
	if err := f.scroll(ctx, page); err != nil {
		return "", err
	}

	html, err := page.HTML()
	if err != nil {
		return "", err
	}

	f.manager.CountPage()
	return html, nil
}

// scroll runs the configured scroll passes, waiting between each so the
// page can load the content a pass revealed.
func (f *Fetcher) scroll(ctx context.Context, page *rod.Page) error {
	for range f.scrollPasses {
		if _, err := page.Eval(scrollScript); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.scrollWait):
		}
	}
	return nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the underlying browser launcher.
// It exists so tests can verify process cleanup.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
