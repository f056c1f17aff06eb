package fs

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fwojciec/artdex"
	"golang.org/x/sync/errgroup"
)

// DefaultDownloadConcurrency bounds parallel image fetches.
const DefaultDownloadConcurrency = 4

// DownloadStats is a snapshot of a Downloader's counters.
type DownloadStats struct {
	Downloaded int64
	Skipped    int64
	Failed     int64
}

// Ensure Downloader implements artdex.ImageDownloader at compile time.
var _ artdex.ImageDownloader = (*Downloader)(nil)

// Downloader mirrors work image sets into a directory. Each work gets a
// subdirectory named after its URL slug; images are numbered in visual
// order with extensions derived from the response Content-Type. Files
// already present are never re-downloaded, so repeated runs only fetch
// what is missing.
type Downloader struct {
	dir         string
	client      *http.Client
	concurrency int

	downloaded atomic.Int64
	skipped    atomic.Int64
	failed     atomic.Int64
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithDownloadClient sets the HTTP client used for image fetches.
func WithDownloadClient(client *http.Client) DownloaderOption {
	return func(d *Downloader) {
		d.client = client
	}
}

// WithDownloadConcurrency sets the parallel fetch bound.
func WithDownloadConcurrency(n int) DownloaderOption {
	return func(d *Downloader) {
		d.concurrency = n
	}
}

// NewDownloader creates a Downloader writing into dir.
func NewDownloader(dir string, opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		dir:         dir,
		client:      &http.Client{Timeout: 30 * time.Second},
		concurrency: DefaultDownloadConcurrency,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Stats returns the current download counters.
func (d *Downloader) Stats() DownloadStats {
	return DownloadStats{
		Downloaded: d.downloaded.Load(),
		Skipped:    d.skipped.Load(),
		Failed:     d.failed.Load(),
	}
}

// DownloadImages fetches every image of every work. Failures are
// isolated per image: a broken URL marks the image failed and the rest
// of the batch proceeds. The returned error reports only batch-level
// problems (directory creation, context cancellation).
func (d *Downloader) DownloadImages(ctx context.Context, works []*artdex.Work) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for _, work := range works {
		slug := artdex.Slug(work.URL)
		if slug == "" || len(work.Images) == 0 {
			continue
		}

		workDir := filepath.Join(d.dir, slug)
		if err := os.MkdirAll(workDir, 0755); err != nil {
			return err
		}

		for i, img := range work.Images {
			i, img := i, img
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				d.downloadOne(gctx, workDir, i+1, img)
				return nil
			})
		}
	}

	return g.Wait()
}

// downloadOne fetches a single image into dir as NN.<ext>, skipping it
// when a file with that number already exists under any extension.
func (d *Downloader) downloadOne(ctx context.Context, dir string, n int, rawURL string) {
	matches, err := filepath.Glob(filepath.Join(dir, fmt.Sprintf("%02d.*", n)))
	if err == nil && len(matches) > 0 {
		d.skipped.Add(1)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		d.failed.Add(1)
		return
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.failed.Add(1)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		d.failed.Add(1)
		return
	}

	ext := extensionFor(resp.Header.Get("Content-Type"), rawURL)
	target := filepath.Join(dir, fmt.Sprintf("%02d%s", n, ext))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		d.failed.Add(1)
		return
	}
	if err := writeFileAtomic(target, data); err != nil {
		d.failed.Add(1)
		return
	}
	d.downloaded.Add(1)
}

// knownImageExtensions maps the content types portfolio CDNs actually
// serve. mime.ExtensionsByType is the fallback for anything else.
var knownImageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func extensionFor(contentType, rawURL string) string {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if ext, ok := knownImageExtensions[mediaType]; ok {
			return ext
		}
		if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
			return exts[0]
		}
	}
	if u, err := url.Parse(rawURL); err == nil {
		if ext := path.Ext(u.Path); ext != "" && len(ext) <= 5 {
			return strings.ToLower(ext)
		}
	}
	return ".img"
}
