// Package badger provides a BadgerDB-backed cache store for artdex.
// Unlike the sqlite store it needs no schema and gives discovery entries
// native TTL expiry, at the cost of in-memory filtering for list queries.
package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
	badger "github.com/dgraph-io/badger/v4"
	"github.com/fwojciec/artdex"
)

// Compile-time interface verification.
var _ artdex.CacheStore = (*CacheService)(nil)

// Config configures the store.
type Config struct {
	// Path is the database directory. Required unless InMemory is set.
	Path string

	// InMemory keeps all data in memory. For tests.
	InMemory bool

	// SyncWrites makes every write durable before returning.
	SyncWrites bool

	// Logger receives BadgerDB's internal logging. Nil silences it.
	Logger *slog.Logger
}

// CacheService implements artdex.CacheStore using BadgerDB.
type CacheService struct {
	db *badger.DB
}

// Open opens (creating if needed) the store described by cfg.
func Open(cfg Config) (*CacheService, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, artdex.Errorf(artdex.EINVALID, "cache path required for a persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return &CacheService{db: db}, nil
}

var workPrefix = []byte("work:")

func workKey(workURL string) []byte {
	return []byte(fmt.Sprintf("work:%016x", xxhash.Sum64String(workURL)))
}

func discoveryKey(siteURL string) []byte {
	return []byte(fmt.Sprintf("disc:%016x", xxhash.Sum64String(siteURL)))
}

// FindWork retrieves the cached work for a URL.
func (s *CacheService) FindWork(ctx context.Context, workURL string) (*artdex.Work, error) {
	var work artdex.Work
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(workKey(workURL))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &work)
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, artdex.Errorf(artdex.ENOTFOUND, "work not found")
	}
	if err != nil {
		return nil, err
	}
	return &work, nil
}

// SaveWork inserts or replaces the record for work.URL.
func (s *CacheService) SaveWork(ctx context.Context, work *artdex.Work) error {
	if err := work.Validate(); err != nil {
		return err
	}

	if work.FetchedAt.IsZero() {
		work.FetchedAt = time.Now()
	}
	work.FetchedAt = work.FetchedAt.UTC().Truncate(time.Second)
	work.Checksum = work.ComputeChecksum()

	val, err := json.Marshal(work)
	if err != nil {
		return fmt.Errorf("failed to encode work: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(workKey(work.URL), val)
	})
}

// ListWorks retrieves cached works matching the filter. Badger has no
// secondary indexes, so filtering and sorting happen in memory; a
// portfolio site's catalog is small enough for that.
func (s *CacheService) ListWorks(ctx context.Context, filter artdex.WorkFilter) ([]*artdex.Work, error) {
	var works []*artdex.Work
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = workPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var work artdex.Work
				if err := json.Unmarshal(val, &work); err != nil {
					return fmt.Errorf("failed to decode work: %w", err)
				}
				if matchWork(&work, filter) {
					works = append(works, &work)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch filter.SortBy {
	case artdex.SortByURL:
		sort.Slice(works, func(i, j int) bool { return works[i].URL < works[j].URL })
	case artdex.SortByYear:
		artdex.SortWorksByYear(works)
	default:
		sort.Slice(works, func(i, j int) bool {
			if !works[i].FetchedAt.Equal(works[j].FetchedAt) {
				return works[i].FetchedAt.After(works[j].FetchedAt)
			}
			return works[i].URL < works[j].URL
		})
	}

	return paginate(works, filter.Offset, filter.Limit), nil
}

// DeleteWork permanently removes the record for a URL.
func (s *CacheService) DeleteWork(ctx context.Context, workURL string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		key := workKey(workURL)
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err == badger.ErrKeyNotFound {
		return artdex.Errorf(artdex.ENOTFOUND, "work not found")
	}
	return err
}

// FindDiscovery retrieves the cached discovery result for a site. Badger
// expires the entry natively after its TTL; the manual staleness check
// covers entries whose FetchedAt predates the write.
func (s *CacheService) FindDiscovery(ctx context.Context, siteURL string) (*artdex.Discovery, error) {
	var disc artdex.Discovery
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(discoveryKey(siteURL))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &disc)
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, artdex.Errorf(artdex.ENOTFOUND, "discovery not found")
	}
	if err != nil {
		return nil, err
	}

	if disc.Expired(time.Now().UTC()) {
		return nil, artdex.Errorf(artdex.ENOTFOUND, "discovery expired")
	}

	return &disc, nil
}

// SaveDiscovery inserts or replaces the discovery entry for its site.
func (s *CacheService) SaveDiscovery(ctx context.Context, disc *artdex.Discovery) error {
	if disc.SiteURL == "" {
		return artdex.Errorf(artdex.EINVALID, "discovery site URL required")
	}

	if disc.FetchedAt.IsZero() {
		disc.FetchedAt = time.Now()
	}
	disc.FetchedAt = disc.FetchedAt.UTC().Truncate(time.Second)

	val, err := json.Marshal(disc)
	if err != nil {
		return fmt.Errorf("failed to encode discovery: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(discoveryKey(disc.SiteURL), val)
		if disc.TTL > 0 {
			entry = entry.WithTTL(disc.TTL)
		}
		return txn.SetEntry(entry)
	})
}

// Close flushes and releases the underlying database.
func (s *CacheService) Close() error {
	return s.db.Close()
}

func matchWork(work *artdex.Work, filter artdex.WorkFilter) bool {
	if filter.URL != nil && work.URL != *filter.URL {
		return false
	}
	if filter.Host != nil && hostOf(work.URL) != *filter.Host {
		return false
	}
	if filter.Category != nil && work.Category != *filter.Category {
		return false
	}
	if filter.Year != nil && work.Year != *filter.Year {
		return false
	}
	return true
}

func paginate(works []*artdex.Work, offset, limit int) []*artdex.Work {
	if offset > 0 {
		if offset >= len(works) {
			return nil
		}
		works = works[offset:]
	}
	if limit > 0 && limit < len(works) {
		works = works[:limit]
	}
	return works
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// badgerLogger adapts slog to BadgerDB's logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
