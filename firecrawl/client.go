// Package firecrawl provides the Firecrawl-backed remote extractor for
// artdex. The primary transport is the asynchronous v2 extract API (job
// submission plus polling); when a job times out or the service fails,
// the synchronous v2 scrape API serves as a fallback, at most once per
// URL per client lifetime.
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/artdex"
)

// DefaultBaseURL is the Firecrawl v2 API root.
const DefaultBaseURL = "https://api.firecrawl.dev"

// DefaultMaxWait bounds how long an async extract job may stay in
// polling before the fallback transport takes over.
const DefaultMaxWait = 45 * time.Second

// Default polling backoff: starts at the base, doubles per poll, capped.
const (
	DefaultPollBase = 1 * time.Second
	DefaultPollCap  = 8 * time.Second
)

// Compile-time interface verification.
var _ artdex.Extractor = (*Client)(nil)

// Client issues schema-guided extractions against the Firecrawl v2 API.
type Client struct {
	apiKey   string
	baseURL  string
	maxWait  time.Duration
	pollBase time.Duration
	pollCap  time.Duration
	client   *http.Client

	calls         atomic.Int64
	fallbackCalls atomic.Int64
	credits       atomic.Int64

	mu        sync.Mutex
	fallbacks map[string]bool
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root. For tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithMaxWait overrides the async job wait budget.
func WithMaxWait(d time.Duration) Option {
	return func(c *Client) { c.maxWait = d }
}

// WithPollDelays overrides the polling backoff base and cap.
func WithPollDelays(base, cap time.Duration) Option {
	return func(c *Client) { c.pollBase, c.pollCap = base, cap }
}

// NewClient creates a Client authenticating with apiKey.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, artdex.Errorf(artdex.EINVALID, "firecrawl API key required")
	}

	c := &Client{
		apiKey:    apiKey,
		baseURL:   DefaultBaseURL,
		maxWait:   DefaultMaxWait,
		pollBase:  DefaultPollBase,
		pollCap:   DefaultPollCap,
		client:    &http.Client{},
		fallbacks: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Stats returns the current cost accounting snapshot.
func (c *Client) Stats() artdex.ExtractorStats {
	return artdex.ExtractorStats{
		Calls:         c.calls.Load(),
		FallbackCalls: c.fallbackCalls.Load(),
		Credits:       c.credits.Load(),
	}
}

// jobState names one URL's position in the async transport lifecycle.
type jobState int

const (
	statePending jobState = iota
	stateSubmitted
	statePolling
	stateSucceeded
	stateTimedOut
	stateFailed
	stateFallback
	stateDone
)

// extractJob carries one URL through the state machine.
type extractJob struct {
	url      string
	state    jobState
	id       string
	deadline time.Time
	delay    time.Duration
	result   *artdex.Extraction
	err      error
}

// Extract returns the candidate metadata for a URL. The job advances
// Pending -> Submitted -> Polling -> {Succeeded, TimedOut, Failed},
// optionally through the one-shot Fallback, and finishes at Done.
func (c *Client) Extract(ctx context.Context, pageURL string) (*artdex.Extraction, error) {
	c.calls.Add(1)

	job := &extractJob{url: pageURL, state: statePending, delay: c.pollBase}
	for job.state != stateDone {
		c.step(ctx, job)
	}
	return job.result, job.err
}

func (c *Client) step(ctx context.Context, job *extractJob) {
	switch job.state {
	case statePending:
		id, err := c.submit(ctx, job.url)
		if err != nil {
			job.err = err
			job.state = c.afterPrimaryFailure(job.url, err)
			return
		}
		job.id = id
		job.deadline = time.Now().Add(c.maxWait)
		job.state = stateSubmitted

	case stateSubmitted:
		job.state = statePolling

	case statePolling:
		c.poll(ctx, job)

	case stateSucceeded:
		job.err = nil
		job.state = stateDone

	case stateTimedOut:
		job.err = artdex.Errorf(artdex.ETIMEOUT, "extract job %s exceeded %s wait budget", job.id, c.maxWait)
		job.state = c.afterPrimaryFailure(job.url, job.err)

	case stateFailed:
		job.state = c.afterPrimaryFailure(job.url, job.err)

	case stateFallback:
		c.fallbackCalls.Add(1)
		job.result, job.err = c.scrape(ctx, job.url)
		job.state = stateDone
	}
}

// poll sleeps out the current backoff delay and reads the job status
// once. Transient poll failures keep the job in Polling until the wait
// budget runs out.
func (c *Client) poll(ctx context.Context, job *extractJob) {
	remaining := time.Until(job.deadline)
	if remaining <= 0 {
		job.state = stateTimedOut
		return
	}

	delay := job.delay
	if delay > remaining {
		delay = remaining
	}
	if err := sleepCtx(ctx, delay); err != nil {
		job.err = err
		job.state = stateDone
		return
	}
	job.delay *= 2
	if job.delay > c.pollCap {
		job.delay = c.pollCap
	}

	var status statusResponse
	if err := c.get(ctx, "/v2/extract/"+job.id, &status); err != nil {
		if ctx.Err() != nil {
			job.err = err
			job.state = stateDone
		}
		return
	}

	switch status.Status {
	case "completed":
		ext, err := decodeExtraction(status.Data)
		if err != nil {
			job.err = err
			job.state = stateDone
			return
		}
		c.credits.Add(status.CreditsUsed)
		job.result = ext
		job.state = stateSucceeded
	case "failed", "cancelled":
		job.err = artdex.Errorf(artdex.EUNAVAILABLE, "extract job %s reported %s", job.id, status.Status)
		job.state = stateFailed
	default:
		// still processing
	}
}

// afterPrimaryFailure decides whether the sync fallback may run. Only
// wait-budget and service failures qualify; rate limits belong to the
// retry controller and malformed responses are terminal.
func (c *Client) afterPrimaryFailure(pageURL string, err error) jobState {
	switch artdex.ErrorCode(err) {
	case artdex.ETIMEOUT, artdex.EUNAVAILABLE:
	default:
		return stateDone
	}
	if !c.claimFallback(pageURL) {
		return stateDone
	}
	return stateFallback
}

func (c *Client) claimFallback(pageURL string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fallbacks[pageURL] {
		return false
	}
	c.fallbacks[pageURL] = true
	return true
}

type extractRequest struct {
	URLs            []string       `json:"urls"`
	Prompt          string         `json:"prompt"`
	Schema          map[string]any `json:"schema,omitempty"`
	EnableWebSearch bool           `json:"enableWebSearch"`
}

type extractResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

type statusResponse struct {
	Status      string          `json:"status"`
	Data        json.RawMessage `json:"data"`
	CreditsUsed int64           `json:"creditsUsed"`
}

func (c *Client) submit(ctx context.Context, pageURL string) (string, error) {
	req := extractRequest{
		URLs:            []string{pageURL},
		Prompt:          artdex.ExtractionPrompt,
		Schema:          jsonSchema(),
		EnableWebSearch: false,
	}

	var resp extractResponse
	if err := c.post(ctx, "/v2/extract", req, &resp); err != nil {
		return "", err
	}
	if !resp.Success || resp.ID == "" {
		return "", artdex.Errorf(artdex.EUNAVAILABLE, "extract submission unsuccessful")
	}
	return resp.ID, nil
}

type scrapeRequest struct {
	URL     string        `json:"url"`
	Formats []string      `json:"formats"`
	Extract scrapeExtract `json:"extract"`
}

type scrapeExtract struct {
	Schema       map[string]any `json:"schema"`
	SystemPrompt string         `json:"systemPrompt"`
}

type scrapeResponse struct {
	Data struct {
		Extract json.RawMessage `json:"extract"`
	} `json:"data"`
}

func (c *Client) scrape(ctx context.Context, pageURL string) (*artdex.Extraction, error) {
	req := scrapeRequest{
		URL:     pageURL,
		Formats: []string{"extract"},
		Extract: scrapeExtract{
			Schema:       jsonSchema(),
			SystemPrompt: artdex.ExtractionPrompt,
		},
	}

	var resp scrapeResponse
	if err := c.post(ctx, "/v2/scrape", req, &resp); err != nil {
		return nil, err
	}
	return decodeExtraction(resp.Data.Extract)
}

// jsonSchema renders the canonical field schema as a JSON Schema object.
func jsonSchema() map[string]any {
	props := make(map[string]any)
	var required []string
	for _, f := range artdex.ExtractionSchema() {
		p := map[string]any{
			"type":        f.Type,
			"description": f.Description,
		}
		if f.Type == "array" {
			p["items"] = map[string]any{"type": "string"}
		}
		props[f.Name] = p
		if f.Required {
			required = append(required, f.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// decodeExtraction parses a completed payload. The extract API wraps
// results in a list, the scrape API returns a bare object; both shapes
// decode to the same closed struct.
func decodeExtraction(raw json.RawMessage) (*artdex.Extraction, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, artdex.Errorf(artdex.EINVALID, "completed job carried no data")
	}

	var ext artdex.Extraction
	if strings.HasPrefix(trimmed, "[") {
		var list []artdex.Extraction
		if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
			return nil, artdex.Errorf(artdex.EINVALID, "unexpected extract payload shape")
		}
		ext = list[0]
	} else if err := json.Unmarshal(raw, &ext); err != nil {
		return nil, artdex.Errorf(artdex.EINVALID, "unexpected extract payload shape")
	}

	if ext.Title == "" {
		return nil, artdex.Errorf(artdex.EINVALID, "extract payload missing required title")
	}
	return &ext, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(err)
	}
	if resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return artdex.Errorf(artdex.EINVALID, "decoding response: %v", err)
	}
	return nil
}

func transportError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return artdex.Errorf(artdex.ETIMEOUT, "request timed out: %v", err)
	default:
		return artdex.Errorf(artdex.EUNAVAILABLE, "request failed: %v", err)
	}
}

func statusError(status int, body []byte) error {
	msg := snippet(body)
	switch {
	case status == http.StatusTooManyRequests || status == http.StatusPaymentRequired:
		return artdex.Errorf(artdex.ERATELIMIT, "HTTP %d: %s", status, msg)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return artdex.Errorf(artdex.EUNAUTHORIZED, "HTTP %d: %s", status, msg)
	case status >= 500:
		return artdex.Errorf(artdex.EUNAVAILABLE, "HTTP %d: %s", status, msg)
	default:
		return artdex.Errorf(artdex.EINVALID, "HTTP %d: %s", status, msg)
	}
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
