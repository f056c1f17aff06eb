package main

import (
	"fmt"
	"io"
	"regexp"

	"github.com/fwojciec/artdex"
	"github.com/fwojciec/artdex/scrape"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	extra, err := compileFilters(c.Filter, deps.Stderr)
	if err != nil {
		return err
	}
	filter, err := artdex.NewWorkFilter(c.URL, extra...)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", artdex.ErrorMessage(err))
		return err
	}

	var candidates []artdex.Candidate
	if c.Incremental {
		candidates, err = deps.Discoverer.DiscoverNew(deps.Ctx, c.URL, filter)
	} else {
		candidates, err = deps.Discoverer.Discover(deps.Ctx, c.URL, filter)
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", artdex.ErrorMessage(err))
		return err
	}

	if c.Limit > 0 && len(candidates) > c.Limit {
		candidates = candidates[:c.Limit]
	}

	if len(candidates) == 0 {
		fmt.Fprintln(deps.Stdout, "No candidate URLs found.")
		return nil
	}

	progress := func(event scrape.ProgressEvent) {
		switch event.Type {
		case scrape.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Processing %d URLs\n", event.Total)
		case scrape.ProgressCompleted:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s\n",
				event.Completed, event.Total, scrape.TruncateURL(event.URL, 60))
		case scrape.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", event.URL, event.Error)
		case scrape.ProgressFinished:
			// Summary printed after the run completes
		}
	}

	report, err := deps.Pipeline.Run(deps.Ctx, c.URL, candidates, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", artdex.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Done: %s\n", scrape.FormatStats(report.Stats))

	if err := deps.Reports.WriteReport(deps.Ctx, report); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", artdex.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Catalog written to %s\n", c.ReportDir)

	return nil
}

// compileFilters compiles exclusion patterns, validating them early.
func compileFilters(patterns []string, stderr io.Writer) ([]*regexp.Regexp, error) {
	var out []*regexp.Regexp
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			fmt.Fprintf(stderr, "error: invalid filter pattern %q: %v\n", pattern, err)
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}
