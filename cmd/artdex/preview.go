package main

import (
	"fmt"

	"github.com/fwojciec/artdex"
)

// Run executes the preview command.
func (c *PreviewCmd) Run(deps *Dependencies) error {
	extra, err := compileFilters(c.Filter, deps.Stderr)
	if err != nil {
		return err
	}
	filter, err := artdex.NewWorkFilter(c.URL, extra...)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", artdex.ErrorMessage(err))
		return err
	}

	candidates, err := deps.Discoverer.Discover(deps.Ctx, c.URL, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", artdex.ErrorMessage(err))
		return err
	}

	if len(candidates) == 0 {
		fmt.Fprintln(deps.Stdout, "No candidate URLs found.")
		return nil
	}

	for _, cand := range candidates {
		if cand.LastMod != "" {
			fmt.Fprintf(deps.Stdout, "%s  (modified %s)\n", cand.URL, cand.LastMod)
			continue
		}
		fmt.Fprintln(deps.Stdout, cand.URL)
	}
	fmt.Fprintf(deps.Stdout, "\n%d candidate URLs\n", len(candidates))

	return nil
}
