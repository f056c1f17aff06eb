package artdex

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RunStats aggregates one pipeline run's counters. The counts surface
// cost (remote calls, credits ride on ExtractorStats) and trust (how
// often validation and contamination cleanup had to intervene).
type RunStats struct {
	// CacheHits counts URLs served from the cache without any fetch.
	CacheHits int64 `json:"cache_hits"`

	// Layer1Filtered counts pages the local parse classified as
	// non-content. Filtered pages never reach the remote extractor.
	Layer1Filtered int64 `json:"layer1_filtered"`

	// Layer2Calls and Layer2FallbackCalls mirror the extractor's cost
	// accounting for the run.
	Layer2Calls         int64 `json:"layer2_calls"`
	Layer2FallbackCalls int64 `json:"layer2_fallback_calls"`

	// ValidatorRejections counts remote candidates the validation
	// chain refused.
	ValidatorRejections int64 `json:"validator_rejections"`

	// ContaminationFixes counts fields cleared by the contamination
	// pass.
	ContaminationFixes int64 `json:"contamination_fixes"`

	// Failed counts URLs whose pipeline ended in a terminal error. A
	// failed URL may still contribute a partial record.
	Failed int64 `json:"failed"`

	// Works counts the records in the final batch.
	Works int64 `json:"works"`
}

// Report is the finalized, contamination-cleaned batch of one run: the
// hand-off payload to report generation.
type Report struct {
	RunID       string    `json:"runId"`
	SiteURL     string    `json:"siteUrl"`
	GeneratedAt time.Time `json:"generatedAt"`
	Stats       RunStats  `json:"stats"`
	Works       []*Work   `json:"works"`
}

// NewReport assembles a report with a fresh run ID.
func NewReport(siteURL string, stats RunStats, works []*Work) *Report {
	return &Report{
		RunID:       uuid.New().String(),
		SiteURL:     siteURL,
		GeneratedAt: time.Now().UTC(),
		Stats:       stats,
		Works:       works,
	}
}

// ReportWriter renders a finalized report to durable storage.
type ReportWriter interface {
	// WriteReport writes the report's catalog artifacts.
	WriteReport(ctx context.Context, report *Report) error
}

// ImageDownloader mirrors the image sets of works to local storage.
type ImageDownloader interface {
	// DownloadImages fetches every image of every work, skipping files
	// already present. Failures are isolated per image.
	DownloadImages(ctx context.Context, works []*Work) error
}
