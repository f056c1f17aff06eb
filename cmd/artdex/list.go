package main

import (
	"fmt"

	"github.com/fwojciec/artdex"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	filter := artdex.WorkFilter{SortBy: artdex.SortByYear}
	if c.Host != "" {
		filter.Host = &c.Host
	}
	if c.Category != "" {
		filter.Category = &c.Category
	}
	if c.Year != "" {
		filter.Year = &c.Year
	}

	works, err := deps.Cache.ListWorks(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", artdex.ErrorMessage(err))
		return err
	}

	if len(works) == 0 {
		fmt.Fprintln(deps.Stdout, "No cached works found. Use 'artdex scrape' to populate the cache.")
		return nil
	}

	if c.Full {
		fmt.Fprintf(deps.Stdout, "Cached works (%d total):\n\n", len(works))
		for i, w := range works {
			fmt.Fprintf(deps.Stdout, "  %d. %s\n     %s\n", i+1, displayTitle(w), w.URL)
			for _, f := range []struct{ label, value string }{
				{"Year", w.Year},
				{"Category", w.Category},
				{"Materials", w.Materials},
				{"Size", w.Size},
				{"Duration", w.Duration},
				{"Credits", w.Credits},
				{"Video", w.VideoLink},
			} {
				if f.value == "" {
					continue
				}
				fmt.Fprintf(deps.Stdout, "     %s: %s\n", f.label, f.value)
			}
			if len(w.Images) > 0 {
				fmt.Fprintf(deps.Stdout, "     Images: %d\n", len(w.Images))
			}
			fmt.Fprintln(deps.Stdout)
		}
		return nil
	}

	for _, w := range works {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s\n", w.Year, displayTitle(w), w.URL)
	}

	return nil
}

// displayTitle renders a work's bilingual title for terminal output,
// falling back to the URL slug for untitled works.
func displayTitle(w *artdex.Work) string {
	switch {
	case w.Title != "" && w.TitleCN != "":
		return w.Title + " / " + w.TitleCN
	case w.Title != "":
		return w.Title
	case w.TitleCN != "":
		return w.TitleCN
	}
	if slug := artdex.Slug(w.URL); slug != "" {
		return slug
	}
	return w.URL
}
