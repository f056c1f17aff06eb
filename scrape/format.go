package scrape

import (
	"fmt"
	"strings"

	"github.com/fwojciec/artdex"
)

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		// Too short for "..." prefix, just return dots
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// FormatTokens formats a token count in human-readable form.
func FormatTokens(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("~%d tokens", tokens)
	}
	return fmt.Sprintf("~%dk tokens", (tokens+500)/1000)
}

// FormatStats renders the run counters as a one-line summary for the CLI.
// Zero-valued intervention counters (rejections, fixes, failures) are
// omitted so a clean run reads clean.
func FormatStats(stats artdex.RunStats) string {
	parts := []string{
		fmt.Sprintf("%d works", stats.Works),
		fmt.Sprintf("%d cached", stats.CacheHits),
		fmt.Sprintf("%d filtered", stats.Layer1Filtered),
	}
	if stats.Layer2FallbackCalls > 0 {
		parts = append(parts, fmt.Sprintf("%d remote calls (%d fallback)", stats.Layer2Calls, stats.Layer2FallbackCalls))
	} else {
		parts = append(parts, fmt.Sprintf("%d remote calls", stats.Layer2Calls))
	}
	if stats.ValidatorRejections > 0 {
		parts = append(parts, fmt.Sprintf("%d rejected", stats.ValidatorRejections))
	}
	if stats.ContaminationFixes > 0 {
		parts = append(parts, fmt.Sprintf("%d contamination fixes", stats.ContaminationFixes))
	}
	if stats.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", stats.Failed))
	}
	return strings.Join(parts, ", ")
}
