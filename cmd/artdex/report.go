package main

import (
	"fmt"
	"net/url"

	"github.com/fwojciec/artdex"
	"github.com/fwojciec/artdex/fs"
	"github.com/fwojciec/artdex/scrape"
)

// Run executes the report command.
func (c *ReportCmd) Run(deps *Dependencies) error {
	host, err := siteHost(c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", artdex.ErrorMessage(err))
		return err
	}

	works, err := deps.Cache.ListWorks(deps.Ctx, artdex.WorkFilter{Host: &host, SortBy: artdex.SortByYear})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", artdex.ErrorMessage(err))
		return err
	}

	if len(works) == 0 {
		fmt.Fprintf(deps.Stderr, "error: no cached works for %q. Run 'artdex scrape %s' first.\n", c.URL, c.URL)
		return artdex.Errorf(artdex.ENOTFOUND, "no cached works for %q", c.URL)
	}

	report := artdex.NewReport(c.URL, artdex.RunStats{Works: int64(len(works))}, works)
	if err := deps.Reports.WriteReport(deps.Ctx, report); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", artdex.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Catalog written to %s (%s)\n", c.Dir, reportSummary(deps, report))

	return nil
}

// reportSummary sizes the catalog for the summary line. The token
// count covers the Markdown rendering and is skipped when no
// tokenizer is wired.
func reportSummary(deps *Dependencies, report *artdex.Report) string {
	summary := fmt.Sprintf("%d works", len(report.Works))
	if deps.Tokens == nil {
		return summary
	}
	tokens, err := deps.Tokens.CountTokens(deps.Ctx, fs.FormatCatalog(report))
	if err != nil {
		return summary
	}
	return summary + ", " + scrape.FormatTokens(tokens)
}

// siteHost validates a site URL and returns its host for cache filtering.
func siteHost(siteURL string) (string, error) {
	u, err := url.Parse(siteURL)
	if err != nil || u.Host == "" {
		return "", artdex.Errorf(artdex.EINVALID, "invalid site URL %q", siteURL)
	}
	return u.Host, nil
}
