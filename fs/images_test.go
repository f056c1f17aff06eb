package fs_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/artdex"
	"github.com/fwojciec/artdex/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

func TestDownloader_DownloadImages(t *testing.T) {
	t.Parallel()

	t.Run("downloads images into slug directories", func(t *testing.T) {
		t.Parallel()

		srv := newImageServer(t)
		dir := t.TempDir()
		d := fs.NewDownloader(dir)

		works := []*artdex.Work{
			{
				URL:    "https://example.com/Guard-I",
				Images: []string{srv.URL + "/a.jpg", srv.URL + "/b.jpg"},
			},
		}

		err := d.DownloadImages(context.Background(), works)
		require.NoError(t, err)

		assertFileExists(t, filepath.Join(dir, "Guard-I", "01.jpg"))
		assertFileExists(t, filepath.Join(dir, "Guard-I", "02.jpg"))
		assert.Equal(t, fs.DownloadStats{Downloaded: 2}, d.Stats())
	})

	t.Run("skips images that already exist", func(t *testing.T) {
		t.Parallel()

		srv := newImageServer(t)
		dir := t.TempDir()

		works := []*artdex.Work{
			{URL: "https://example.com/Guard-I", Images: []string{srv.URL + "/a.jpg"}},
		}

		first := fs.NewDownloader(dir)
		require.NoError(t, first.DownloadImages(context.Background(), works))
		requestsAfterFirst := srv.requests.Load()

		second := fs.NewDownloader(dir)
		require.NoError(t, second.DownloadImages(context.Background(), works))

		assert.Equal(t, requestsAfterFirst, srv.requests.Load(), "no new requests on rerun")
		assert.Equal(t, fs.DownloadStats{Skipped: 1}, second.Stats())
	})

	t.Run("isolates per-image failures", func(t *testing.T) {
		t.Parallel()

		srv := newImageServer(t)
		dir := t.TempDir()
		d := fs.NewDownloader(dir)

		works := []*artdex.Work{
			{
				URL:    "https://example.com/Guard-I",
				Images: []string{srv.URL + "/missing.jpg", srv.URL + "/a.jpg"},
			},
		}

		err := d.DownloadImages(context.Background(), works)
		require.NoError(t, err, "a broken image is not a batch failure")

		assertFileExists(t, filepath.Join(dir, "Guard-I", "02.jpg"))
		assert.Equal(t, fs.DownloadStats{Downloaded: 1, Failed: 1}, d.Stats())
	})

	t.Run("derives extension from content type", func(t *testing.T) {
		t.Parallel()

		srv := newImageServer(t)
		dir := t.TempDir()
		d := fs.NewDownloader(dir)

		works := []*artdex.Work{
			{URL: "https://example.com/Guard-I", Images: []string{srv.URL + "/p.png"}},
		}

		require.NoError(t, d.DownloadImages(context.Background(), works))
		assertFileExists(t, filepath.Join(dir, "Guard-I", "01.png"))
	})

	t.Run("falls back to the URL extension without content type", func(t *testing.T) {
		t.Parallel()

		srv := newImageServer(t)
		dir := t.TempDir()
		d := fs.NewDownloader(dir)

		works := []*artdex.Work{
			{URL: "https://example.com/Guard-I", Images: []string{srv.URL + "/bare.gif"}},
		}

		require.NoError(t, d.DownloadImages(context.Background(), works))
		assertFileExists(t, filepath.Join(dir, "Guard-I", "01.gif"))
	})

	t.Run("skips works without images or a usable slug", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		d := fs.NewDownloader(dir)

		works := []*artdex.Work{
			{URL: "https://example.com/No-Images"},
			{URL: "://bad", Images: []string{"https://example.com/x.jpg"}},
		}

		require.NoError(t, d.DownloadImages(context.Background(), works))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
		assert.Equal(t, fs.DownloadStats{}, d.Stats())
	})

	t.Run("handles multiple works concurrently", func(t *testing.T) {
		t.Parallel()

		srv := newImageServer(t)
		dir := t.TempDir()
		d := fs.NewDownloader(dir, fs.WithDownloadConcurrency(2))

		works := []*artdex.Work{
			{URL: "https://example.com/Guard-I", Images: []string{srv.URL + "/a.jpg"}},
			{URL: "https://example.com/Body-Scan", Images: []string{srv.URL + "/b.jpg"}},
			{URL: "https://example.com/Screen-Test", Images: []string{srv.URL + "/a.jpg"}},
		}

		require.NoError(t, d.DownloadImages(context.Background(), works))

		assertFileExists(t, filepath.Join(dir, "Guard-I", "01.jpg"))
		assertFileExists(t, filepath.Join(dir, "Body-Scan", "01.jpg"))
		assertFileExists(t, filepath.Join(dir, "Screen-Test", "01.jpg"))
		assert.Equal(t, fs.DownloadStats{Downloaded: 3}, d.Stats())
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		srv := newImageServer(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		d := fs.NewDownloader(t.TempDir())
		works := []*artdex.Work{
			{URL: "https://example.com/Guard-I", Images: []string{srv.URL + "/a.jpg"}},
		}

		err := d.DownloadImages(ctx, works)
		require.ErrorIs(t, err, context.Canceled)
	})
}

type imageServer struct {
	*httptest.Server
	requests atomic.Int64
}

// newImageServer serves fake image bytes: .jpg and .png paths get their
// matching content type, /bare.gif is served without one, and
// /missing.jpg returns 404.
func newImageServer(t *testing.T) *imageServer {
	t.Helper()

	srv := &imageServer{}
	srv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.requests.Add(1)
		switch {
		case r.URL.Path == "/missing.jpg":
			http.NotFound(w, r)
		case r.URL.Path == "/bare.gif":
			w.Header()["Content-Type"] = nil
			w.Write([]byte("GIF89a"))
		case filepath.Ext(r.URL.Path) == ".png":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("\x89PNG\r\n"))
		default:
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write(jpegBytes)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err, "expected file at %s", path)
	assert.Greater(t, info.Size(), int64(0))
}
