package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/artdex"
)

// Compile-time interface verification.
var _ artdex.CacheStore = (*CacheService)(nil)

// CacheService implements artdex.CacheStore using SQLite.
type CacheService struct {
	db *DB
}

// NewCacheService creates a new CacheService.
func NewCacheService(db *DB) *CacheService {
	return &CacheService{db: db}
}

// SaveWork inserts or replaces the record for work.URL. The checksum is
// recomputed on every save so cached records always hash their stored
// content.
func (s *CacheService) SaveWork(ctx context.Context, work *artdex.Work) error {
	if err := work.Validate(); err != nil {
		return err
	}

	if work.FetchedAt.IsZero() {
		work.FetchedAt = time.Now()
	}
	// RFC3339 storage keeps second precision.
	work.FetchedAt = work.FetchedAt.UTC().Truncate(time.Second)
	work.Checksum = work.ComputeChecksum()

	images, err := json.Marshal(work.Images)
	if err != nil {
		return fmt.Errorf("failed to encode images: %w", err)
	}
	tags, err := json.Marshal(work.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	sources, err := json.Marshal(work.Sources)
	if err != nil {
		return fmt.Errorf("failed to encode sources: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO works (url, host, title, title_cn, year, category, materials, size,
			duration, credits, description_en, description_cn, video_link, images, tags, sources,
			last_mod, fetched_at, checksum)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, work.URL, hostOf(work.URL), work.Title, work.TitleCN, work.Year, work.Category,
		work.Materials, work.Size, work.Duration, work.Credits, work.DescriptionEN,
		work.DescriptionCN, work.VideoLink, string(images), string(tags), string(sources),
		work.LastMod, work.FetchedAt.Format(time.RFC3339), work.Checksum)

	return err
}

const workColumns = `url, title, title_cn, year, category, materials, size, duration, credits,
	description_en, description_cn, video_link, images, tags, sources, last_mod, fetched_at, checksum`

// FindWork retrieves the cached work for a URL.
func (s *CacheService) FindWork(ctx context.Context, workURL string) (*artdex.Work, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+workColumns+` FROM works WHERE url = ?`, workURL)

	work, err := scanWork(row)
	if err == sql.ErrNoRows {
		return nil, artdex.Errorf(artdex.ENOTFOUND, "work not found")
	}
	if err != nil {
		return nil, err
	}
	return work, nil
}

// ListWorks retrieves cached works matching the filter.
func (s *CacheService) ListWorks(ctx context.Context, filter artdex.WorkFilter) ([]*artdex.Work, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT ` + workColumns + ` FROM works WHERE 1=1`)

	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	if filter.Host != nil {
		query.WriteString(" AND host = ?")
		args = append(args, *filter.Host)
	}
	if filter.Category != nil {
		query.WriteString(" AND category = ?")
		args = append(args, *filter.Category)
	}
	if filter.Year != nil {
		query.WriteString(" AND year = ?")
		args = append(args, *filter.Year)
	}

	switch filter.SortBy {
	case artdex.SortByURL:
		query.WriteString(" ORDER BY url ASC")
	case artdex.SortByYear:
		query.WriteString(" ORDER BY year DESC, url ASC")
	default:
		query.WriteString(" ORDER BY fetched_at DESC, url ASC")
	}

	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var works []*artdex.Work
	for rows.Next() {
		work, err := scanWork(rows)
		if err != nil {
			return nil, err
		}
		works = append(works, work)
	}

	return works, rows.Err()
}

// DeleteWork permanently removes the record for a URL.
func (s *CacheService) DeleteWork(ctx context.Context, workURL string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM works WHERE url = ?", workURL)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return artdex.Errorf(artdex.ENOTFOUND, "work not found")
	}

	return nil
}

// FindDiscovery retrieves the cached discovery result for a site.
// Expired entries report ENOTFOUND; the stale row stays until the next
// SaveDiscovery replaces it.
func (s *CacheService) FindDiscovery(ctx context.Context, siteURL string) (*artdex.Discovery, error) {
	var d artdex.Discovery
	var urls, lastMods, fetchedAt string
	var ttlSeconds int64

	err := s.db.QueryRowContext(ctx, `
		SELECT site_url, urls, last_mods, fetched_at, ttl_seconds
		FROM discoveries
		WHERE site_url = ?
	`, siteURL).Scan(&d.SiteURL, &urls, &lastMods, &fetchedAt, &ttlSeconds)

	if err == sql.ErrNoRows {
		return nil, artdex.Errorf(artdex.ENOTFOUND, "discovery not found")
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(urls), &d.URLs); err != nil {
		return nil, fmt.Errorf("failed to decode urls: %w", err)
	}
	if err := json.Unmarshal([]byte(lastMods), &d.LastMods); err != nil {
		return nil, fmt.Errorf("failed to decode last_mods: %w", err)
	}
	d.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at")
	if err != nil {
		return nil, err
	}
	d.TTL = time.Duration(ttlSeconds) * time.Second

	if d.Expired(time.Now().UTC()) {
		return nil, artdex.Errorf(artdex.ENOTFOUND, "discovery expired")
	}

	return &d, nil
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

	urls, err := json.Marshal(disc.URLs)
	if err != nil {
		return fmt.Errorf("failed to encode urls: %w", err)
	}
	lastMods, err := json.Marshal(disc.LastMods)
	if err != nil {
		return fmt.Errorf("failed to encode last_mods: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO discoveries (site_url, urls, last_mods, fetched_at, ttl_seconds)
		VALUES (?, ?, ?, ?, ?)
	`, disc.SiteURL, string(urls), string(lastMods),
		disc.FetchedAt.Format(time.RFC3339), int64(disc.TTL/time.Second))

	return err
}

// Close closes the underlying database.
func (s *CacheService) Close() error {
	return s.db.Close()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanWork(row rowScanner) (*artdex.Work, error) {
	var work artdex.Work
	var images, tags, sources, fetchedAt string

	err := row.Scan(&work.URL, &work.Title, &work.TitleCN, &work.Year, &work.Category,
		&work.Materials, &work.Size, &work.Duration, &work.Credits, &work.DescriptionEN,
		&work.DescriptionCN, &work.VideoLink, &images, &tags, &sources, &work.LastMod,
		&fetchedAt, &work.Checksum)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(images), &work.Images); err != nil {
		return nil, fmt.Errorf("failed to decode images: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &work.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if err := json.Unmarshal([]byte(sources), &work.Sources); err != nil {
		return nil, fmt.Errorf("failed to decode sources: %w", err)
	}
	work.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at")
	if err != nil {
		return nil, err
	}

	return &work, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// parseRFC3339 parses an RFC3339 formatted timestamp string.
// Returns an error if parsing fails with a descriptive message including the field name.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// appendPagination appends LIMIT and OFFSET clauses to a query builder if values are > 0.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}
