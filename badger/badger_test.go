package badger_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fwojciec/artdex"
	"github.com/fwojciec/artdex/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *badger.CacheService {
	t.Helper()
	store, err := badger.Open(badger.Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("persistent store requires a path", func(t *testing.T) {
		t.Parallel()
		_, err := badger.Open(badger.Config{})
		require.Error(t, err)
		assert.Equal(t, artdex.EINVALID, artdex.ErrorCode(err))
	})

	t.Run("opens on disk", func(t *testing.T) {
		t.Parallel()
		store, err := badger.Open(badger.Config{Path: t.TempDir()})
		require.NoError(t, err)
		require.NoError(t, store.Close())
	})
}

func TestCacheService_Works(t *testing.T) {
	t.Parallel()

	t.Run("round trips a record", func(t *testing.T) {
		t.Parallel()
		store := setupTestStore(t)
		ctx := context.Background()

		work := &artdex.Work{
			URL:    "https://example.com/Guard-I",
			Images: []string{"https://example.com/img/1_o.jpg"},
			Tags:   []string{"installation"},
		}
		work.SetField(artdex.FieldTitle, "Guard I", artdex.LayerLocal)
		work.SetField(artdex.FieldMaterials, "silicone, fiberglass", artdex.LayerRemote)
		require.NoError(t, store.SaveWork(ctx, work))
		assert.NotEmpty(t, work.Checksum)

		found, err := store.FindWork(ctx, work.URL)
		require.NoError(t, err)
		assert.Equal(t, work.Title, found.Title)
		assert.Equal(t, work.Materials, found.Materials)
		assert.Equal(t, work.Images, found.Images)
		assert.Equal(t, work.Sources, found.Sources)
		assert.Equal(t, work.Checksum, found.Checksum)
	})

	t.Run("missing work reports ENOTFOUND", func(t *testing.T) {
		t.Parallel()
		store := setupTestStore(t)

		_, err := store.FindWork(context.Background(), "https://example.com/nope")
		assert.Equal(t, artdex.ENOTFOUND, artdex.ErrorCode(err))
	})

	t.Run("save validates the work", func(t *testing.T) {
		t.Parallel()
		store := setupTestStore(t)

		err := store.SaveWork(context.Background(), &artdex.Work{})
		assert.Equal(t, artdex.EINVALID, artdex.ErrorCode(err))
	})

	t.Run("delete removes the record", func(t *testing.T) {
		t.Parallel()
		store := setupTestStore(t)
		ctx := context.Background()

		work := &artdex.Work{URL: "https://example.com/Guard-I"}
		require.NoError(t, store.SaveWork(ctx, work))
		require.NoError(t, store.DeleteWork(ctx, work.URL))

		_, err := store.FindWork(ctx, work.URL)
		assert.Equal(t, artdex.ENOTFOUND, artdex.ErrorCode(err))
	})

	t.Run("delete of a missing record reports ENOTFOUND", func(t *testing.T) {
		t.Parallel()
		store := setupTestStore(t)

		err := store.DeleteWork(context.Background(), "https://example.com/nope")
		assert.Equal(t, artdex.ENOTFOUND, artdex.ErrorCode(err))
	})
}

func TestCacheService_ListWorks(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T, store *badger.CacheService) {
		t.Helper()
		ctx := context.Background()
		base := time.Now()
		for i, spec := range []struct{ url, year, category string }{
			{"https://example.com/a", "2020", "installation"},
			{"https://example.com/b", "2023", "website"},
			{"https://other.com/c", "2021", "installation"},
		} {
			w := &artdex.Work{URL: spec.url, FetchedAt: base.Add(time.Duration(i) * time.Minute)}
			w.SetField(artdex.FieldYear, spec.year, artdex.LayerLocal)
			w.SetField(artdex.FieldCategory, spec.category, artdex.LayerLocal)
			require.NoError(t, store.SaveWork(ctx, w))
		}
	}

	t.Run("filters by host", func(t *testing.T) {
		t.Parallel()
		store := setupTestStore(t)
		seed(t, store)

		host := "example.com"
		works, err := store.ListWorks(context.Background(), artdex.WorkFilter{Host: &host})
		require.NoError(t, err)
		assert.Len(t, works, 2)
	})

	t.Run("filters by category", func(t *testing.T) {
		t.Parallel()
		store := setupTestStore(t)
		seed(t, store)

		category := "installation"
		works, err := store.ListWorks(context.Background(), artdex.WorkFilter{Category: &category})
		require.NoError(t, err)
		assert.Len(t, works, 2)
	})

	t.Run("sorts by year descending", func(t *testing.T) {
		t.Parallel()
		store := setupTestStore(t)
		seed(t, store)

		works, err := store.ListWorks(context.Background(), artdex.WorkFilter{SortBy: artdex.SortByYear})
		require.NoError(t, err)
		require.Len(t, works, 3)
		assert.Equal(t, "2023", works[0].Year)
		assert.Equal(t, "2021", works[1].Year)
		assert.Equal(t, "2020", works[2].Year)
	})

	t.Run("newest fetch first by default", func(t *testing.T) {
		t.Parallel()
		store := setupTestStore(t)
		seed(t, store)

		works, err := store.ListWorks(context.Background(), artdex.WorkFilter{})
		require.NoError(t, err)
		require.Len(t, works, 3)
		assert.Equal(t, "https://other.com/c", works[0].URL)
	})

	t.Run("paginates after sorting", func(t *testing.T) {
		t.Parallel()
		store := setupTestStore(t)
		seed(t, store)

		works, err := store.ListWorks(context.Background(), artdex.WorkFilter{
			SortBy: artdex.SortByURL, Offset: 1, Limit: 1,
		})
		require.NoError(t, err)
		require.Len(t, works, 1)
		assert.Equal(t, "https://example.com/b", works[0].URL)
	})

	t.Run("offset beyond the end is empty", func(t *testing.T) {
		t.Parallel()
		store := setupTestStore(t)
		seed(t, store)

		works, err := store.ListWorks(context.Background(), artdex.WorkFilter{Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, works)
	})
}

func TestCacheService_Discovery(t *testing.T) {
	t.Parallel()

	t.Run("round trips a discovery entry", func(t *testing.T) {
		t.Parallel()
		store := setupTestStore(t)
		ctx := context.Background()

		disc := &artdex.Discovery{
			SiteURL:  "https://example.com",
			URLs:     []string{"https://example.com/a"},
			LastMods: map[string]string{"https://example.com/a": "2026-01-02"},
			TTL:      artdex.DefaultDiscoveryTTL,
		}
		require.NoError(t, store.SaveDiscovery(ctx, disc))

		found, err := store.FindDiscovery(ctx, disc.SiteURL)
		require.NoError(t, err)
		assert.Equal(t, disc.URLs, found.URLs)
		assert.Equal(t, disc.LastMods, found.LastMods)
		assert.Equal(t, disc.TTL, found.TTL)
	})

	t.Run("stale entries report ENOTFOUND", func(t *testing.T) {
		t.Parallel()
		store := setupTestStore(t)
		ctx := context.Background()

		disc := &artdex.Discovery{
			SiteURL:   "https://example.com",
			URLs:      []string{"https://example.com/a"},
			FetchedAt: time.Now().Add(-25 * time.Hour),
			TTL:       artdex.DefaultDiscoveryTTL,
		}
		require.NoError(t, store.SaveDiscovery(ctx, disc))

		_, err := store.FindDiscovery(ctx, disc.SiteURL)
		assert.Equal(t, artdex.ENOTFOUND, artdex.ErrorCode(err))
	})

	t.Run("requires a site url", func(t *testing.T) {
		t.Parallel()
		store := setupTestStore(t)

		err := store.SaveDiscovery(context.Background(), &artdex.Discovery{})
		assert.Equal(t, artdex.EINVALID, artdex.ErrorCode(err))
	})
}

func TestCacheService_ConcurrentWrites(t *testing.T) {
	t.Parallel()

	store := setupTestStore(t)
	ctx := context.Background()

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func(i int) {
			w := &artdex.Work{URL: fmt.Sprintf("https://example.com/w%d", i)}
			done <- store.SaveWork(ctx, w)
		}(i)
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-done)
	}

	works, err := store.ListWorks(ctx, artdex.WorkFilter{})
	require.NoError(t, err)
	assert.Len(t, works, 8)
}
