// Package fs renders finalized reports and mirrors work images to the
// local filesystem.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/artdex"
)

// Catalog artifact names inside the report directory.
const (
	CatalogJSON     = "catalog.json"
	CatalogMarkdown = "catalog.md"
)

// Ensure Writer implements artdex.ReportWriter at compile time.
var _ artdex.ReportWriter = (*Writer)(nil)

// Writer renders a report into a directory as a JSON catalog and a
// human-readable Markdown catalog. Both files are written atomically:
// a temporary file in the same directory is renamed over the target, so
// readers never observe a half-written catalog.
type Writer struct {
	dir string
}

// NewWriter creates a Writer rendering into dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// WriteReport writes the report's catalog artifacts.
func (w *Writer) WriteReport(ctx context.Context, report *artdex.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if err := writeFileAtomic(filepath.Join(w.dir, CatalogJSON), append(data, '\n')); err != nil {
		return err
	}

	md := FormatCatalog(report)
	return writeFileAtomic(filepath.Join(w.dir, CatalogMarkdown), []byte(md))
}

// FormatCatalog renders the report as a Markdown catalog, newest works
// first. The input is not mutated.
func FormatCatalog(report *artdex.Report) string {
	works := make([]*artdex.Work, len(report.Works))
	copy(works, report.Works)
	artdex.SortWorksByYear(works)

	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(report.SiteURL)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Generated %s · run %s · %d works\n",
		report.GeneratedAt.Format("2006-01-02"), report.RunID, len(works))

	for _, work := range works {
		b.WriteString("\n## ")
		b.WriteString(workHeading(work))
		b.WriteString("\n\n")

		writeField(&b, "URL", work.URL)
		writeField(&b, "Year", work.Year)
		writeField(&b, "Category", work.Category)
		writeField(&b, "Tags", strings.Join(work.Tags, ", "))
		writeField(&b, "Materials", work.Materials)
		writeField(&b, "Size", work.Size)
		writeField(&b, "Duration", work.Duration)
		writeField(&b, "Credits", work.Credits)
		writeField(&b, "Video", work.VideoLink)
		if len(work.Images) > 0 {
			fmt.Fprintf(&b, "- Images: %d\n", len(work.Images))
		}

		if work.DescriptionEN != "" {
			b.WriteString("\n")
			b.WriteString(work.DescriptionEN)
			b.WriteString("\n")
		}
		if work.DescriptionCN != "" {
			b.WriteString("\n")
			b.WriteString(work.DescriptionCN)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func workHeading(work *artdex.Work) string {
	title := work.Title
	if title == "" {
		title = artdex.Slug(work.URL)
	}
	if work.TitleCN != "" {
		return title + " / " + work.TitleCN
	}
	return title
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, value)
}

// writeFileAtomic writes data to a temporary file next to path and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
