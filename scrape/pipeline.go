// Package scrape orchestrates the two-layer extraction pipeline.
// It coordinates URL discovery, the local structural parse, the paid
// remote extraction with validation, cache persistence, and the final
// cross-record contamination pass.
package scrape

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fwojciec/artdex"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the worker pool. Portfolio hosts throttle
// aggressively per IP, so the default stays low.
const DefaultConcurrency = 2

// Pipeline runs the per-URL extraction sequence over a candidate batch
// and finalizes the batch with the contamination pass.
type Pipeline struct {
	Cache     artdex.CacheStore
	Fetcher   artdex.Fetcher
	Parser    artdex.PageParser
	Extractor artdex.Extractor
	Validator *artdex.Validator
	Cleaner   *artdex.ContaminationCleaner
	Limiter   artdex.RateLimiter

	// Concurrency is the worker pool size. Defaults to DefaultConcurrency.
	Concurrency int

	// RetryDelays is the backoff schedule for retryable extraction
	// failures. Defaults to DefaultRetryDelays().
	RetryDelays []time.Duration

	// URLTimeout bounds one URL's pipeline, covering fetch, extraction
	// and all retry sleeps. Zero means no per-URL budget.
	URLTimeout time.Duration
}

// ProgressEvent reports progress during a pipeline run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting pipeline progress.
type ProgressFunc func(event ProgressEvent)

// urlResult holds the outcome of processing a single URL.
type urlResult struct {
	position int
	url      string
	work     *artdex.Work // nil when filtered or failed before a parse
	cached   bool
	filtered bool
	rejected bool
	saved    bool
	err      error
}

// Run processes the candidates through the per-URL pipeline, waits for
// every worker to finish, runs the contamination pass over the complete
// batch, and returns the finalized report. Per-URL failures are isolated:
// they are counted and reported, never fatal to the run. The final batch
// preserves candidate input order.
func (p *Pipeline) Run(ctx context.Context, siteURL string, candidates []artdex.Candidate, progress ProgressFunc) (*artdex.Report, error) {
	concurrency := p.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	// Extractor counters are cumulative per client; the run owns only
	// the delta.
	startStats := p.Extractor.Stats()

	resultCh := make(chan urlResult, len(candidates))

	var completed atomic.Int64
	total := len(candidates)

	if progress != nil {
		progress(ProgressEvent{
			Type:  ProgressStarted,
			Total: total,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, cand := range candidates {
			i, cand := i, cand
			g.Go(func() error {
				result := p.processURL(gctx, i, cand)
				resultCh <- result
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	// Collect results in candidate order. The channel close above is the
	// barrier: the contamination pass below never sees a partial batch.
	results := make([]urlResult, len(candidates))
	var stats artdex.RunStats
	for result := range resultCh {
		completed.Add(1)
		results[result.position] = result

		if result.err != nil {
			stats.Failed++
			if progress != nil {
				progress(ProgressEvent{
					Type:      ProgressFailed,
					Completed: int(completed.Load()),
					Total:     total,
					URL:       result.url,
					Error:     result.err,
				})
			}
			continue
		}
		if progress != nil {
			progress(ProgressEvent{
				Type:      ProgressCompleted,
				Completed: int(completed.Load()),
				Total:     total,
				URL:       result.url,
			})
		}
	}

	works := make([]*artdex.Work, 0, len(results))
	for _, result := range results {
		if result.cached {
			stats.CacheHits++
		}
		if result.filtered {
			stats.Layer1Filtered++
		}
		if result.rejected {
			stats.ValidatorRejections++
		}
		if result.work != nil {
			works = append(works, result.work)
		}
	}

	// Contamination pass over the complete batch. Changed works are
	// re-persisted with fresh checksums, but only those already finalized
	// to the cache: a failed URL's partial record stays out so a later
	// run can repair it.
	cleaner := p.Cleaner
	if cleaner == nil {
		cleaner = &artdex.ContaminationCleaner{}
	}
	fixes, changed := cleaner.Clean(works)
	stats.ContaminationFixes = int64(fixes)

	savedByURL := make(map[string]bool, len(results))
	for _, result := range results {
		if result.saved || result.cached {
			savedByURL[result.url] = true
		}
	}
	for _, w := range changed {
		w.Checksum = w.ComputeChecksum()
		if !savedByURL[w.URL] {
			continue
		}
		if err := p.Cache.SaveWork(ctx, w); err != nil {
			stats.Failed++
		}
	}

	endStats := p.Extractor.Stats()
	stats.Layer2Calls = endStats.Calls - startStats.Calls
	stats.Layer2FallbackCalls = endStats.FallbackCalls - startStats.FallbackCalls
	stats.Works = int64(len(works))

	if progress != nil {
		progress(ProgressEvent{
			Type:      ProgressFinished,
			Completed: total,
			Total:     total,
		})
	}

	return artdex.NewReport(siteURL, stats, works), nil
}

// processURL runs the full pipeline for a single candidate URL.
func (p *Pipeline) processURL(ctx context.Context, position int, cand artdex.Candidate) urlResult {
	result := urlResult{
		position: position,
		url:      cand.URL,
	}

	if p.URLTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.URLTimeout)
		defer cancel()
	}

	// Stage 0: cache check. A cached record is reused unconditionally
	// unless the sitemap's lastmod moved since it was written.
	cached, err := p.Cache.FindWork(ctx, cand.URL)
	switch {
	case err == nil:
		if cand.LastMod == "" || cached.LastMod == cand.LastMod {
			result.work = cached
			result.cached = true
			return result
		}
	case artdex.ErrorCode(err) != artdex.ENOTFOUND:
		result.err = err
		return result
	}

	// Layer 1: fetch and parse the static markup.
	html, err := p.Fetcher.Fetch(ctx, cand.URL)
	if err != nil {
		result.err = err
		return result
	}
	parsed, err := p.Parser.ParsePage(cand.URL, html)
	if err != nil {
		result.err = err
		return result
	}
	if parsed.Filtered {
		result.filtered = true
		return result
	}

	work := newWork(cand, parsed)

	// Layer 2: rate-limited, retried remote extraction. A terminal
	// failure keeps the layer 1 record in the batch with its title
	// marked unvalidated, and skips the cache write so the next run
	// retries the extraction.
	ext, err := ExtractWithRetry(ctx, p.Extractor, p.Limiter, cand.URL, p.retryDelays())
	if err != nil {
		if _, ok := work.Sources[artdex.FieldTitle]; ok {
			work.Sources[artdex.FieldTitle] = artdex.LayerUnvalidated
		}
		work.FetchedAt = time.Now().UTC()
		work.Checksum = work.ComputeChecksum()
		result.work = work
		result.err = err
		return result
	}

	candidateTitle, _ := artdex.SplitBilingualTitle(ext.Title)
	verdict := p.Validator.Validate(work.Title, candidateTitle, cand.URL)
	if !verdict.Accepted {
		result.rejected = true
	}
	artdex.ApplyExtraction(work, ext, verdict)

	work.FetchedAt = time.Now().UTC()
	work.Checksum = work.ComputeChecksum()

	if err := p.Cache.SaveWork(ctx, work); err != nil {
		result.work = work
		result.err = err
		return result
	}

	result.work = work
	result.saved = true
	return result
}

func (p *Pipeline) retryDelays() []time.Duration {
	if p.RetryDelays != nil {
		return p.RetryDelays
	}
	return DefaultRetryDelays()
}

// newWork builds the layer 1 record for a parsed page. Parsed fields are
// ground truth: the remote merge only ever fills what is still empty.
func newWork(cand artdex.Candidate, parsed *artdex.ParseResult) *artdex.Work {
	w := &artdex.Work{
		URL:     cand.URL,
		Tags:    append([]string(nil), parsed.Tags...),
		LastMod: cand.LastMod,
	}
	w.SetField(artdex.FieldTitle, parsed.BaselineTitle, artdex.LayerLocal)
	w.SetField(artdex.FieldTitleCN, parsed.BaselineTitleCN, artdex.LayerLocal)
	w.SetField(artdex.FieldYear, parsed.Year, artdex.LayerLocal)
	w.SetField(artdex.FieldCategory, parsed.Category, artdex.LayerLocal)
	if len(parsed.Images) > 0 {
		w.Images = append([]string(nil), parsed.Images...)
		if w.Sources == nil {
			w.Sources = artdex.Sources{}
		}
		w.Sources[artdex.FieldImages] = artdex.LayerLocal
	}
	return w
}
