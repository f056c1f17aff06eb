package main

import (
	"fmt"

	"github.com/fwojciec/artdex"
)

// Run executes the images command.
func (c *ImagesCmd) Run(deps *Dependencies) error {
	host, err := siteHost(c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", artdex.ErrorMessage(err))
		return err
	}

	works, err := deps.Cache.ListWorks(deps.Ctx, artdex.WorkFilter{Host: &host, SortBy: artdex.SortByURL})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", artdex.ErrorMessage(err))
		return err
	}

	if len(works) == 0 {
		fmt.Fprintf(deps.Stderr, "error: no cached works for %q. Run 'artdex scrape %s' first.\n", c.URL, c.URL)
		return artdex.Errorf(artdex.ENOTFOUND, "no cached works for %q", c.URL)
	}

	total := 0
	for _, w := range works {
		total += len(w.Images)
	}
	fmt.Fprintf(deps.Stdout, "Downloading %d images for %d works\n", total, len(works))

	if err := deps.Images.DownloadImages(deps.Ctx, works); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", artdex.ErrorMessage(err))
		return err
	}

	stats := deps.Images.Stats()
	fmt.Fprintf(deps.Stdout, "Done: %d downloaded, %d skipped, %d failed (%s)\n",
		stats.Downloaded, stats.Skipped, stats.Failed, c.Dir)

	return nil
}
