// Package gemini provides a Gemini-backed extractor that works from
// locally fetched page content instead of a remote scraping service.
// The page is fetched and rendered locally, reduced to main content,
// converted to Markdown, and sent to Gemini with a structured output
// schema.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/fwojciec/artdex"
	"google.golang.org/genai"
)

const model = "gemini-2.5-flash"

// Ensure Extractor implements artdex.Extractor at compile time.
var _ artdex.Extractor = (*Extractor)(nil)

// Extractor implements artdex.Extractor using Google Gemini.
type Extractor struct {
	client    *genai.Client
	fetcher   artdex.Fetcher
	content   artdex.ContentExtractor
	converter artdex.Converter

	calls  atomic.Int64
	tokens atomic.Int64
}

// NewExtractor creates a new Extractor. The fetcher supplies rendered
// page HTML, the content extractor strips boilerplate, and the converter
// turns the remainder into Markdown for the prompt.
func NewExtractor(client *genai.Client, fetcher artdex.Fetcher, content artdex.ContentExtractor, converter artdex.Converter) *Extractor {
	return &Extractor{client: client, fetcher: fetcher, content: content, converter: converter}
}

// Extract returns the candidate metadata for a URL.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (*artdex.Extraction, error) {
	if pageURL == "" {
		return nil, artdex.Errorf(artdex.EINVALID, "url required")
	}

	html, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	page, err := e.content.Extract(html)
	if err != nil {
		return nil, err
	}
	markdown, err := e.converter.Convert(page.ContentHTML)
	if err != nil {
		return nil, err
	}

	prompt := BuildUserPrompt(pageURL, page.Title, markdown)
	config := BuildConfig()

	e.calls.Add(1)
	result, err := e.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		config,
	)
	if err != nil {
		return nil, mapAPIError(err)
	}
	if result == nil {
		return nil, artdex.Errorf(artdex.EINTERNAL, "gemini returned nil result")
	}
	if result.UsageMetadata != nil {
		e.tokens.Add(int64(result.UsageMetadata.TotalTokenCount))
	}

	return DecodeExtraction(result.Text())
}

// Stats returns the current cost accounting snapshot. Credits reports
// total tokens; there is no fallback transport.
func (e *Extractor) Stats() artdex.ExtractorStats {
	return artdex.ExtractorStats{
		Calls:   e.calls.Load(),
		Credits: e.tokens.Load(),
	}
}

// BuildConfig returns the GenerateContentConfig for extraction calls.
// Temperature zero and a response schema keep the output deterministic
// and machine-decodable.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: artdex.ExtractionPrompt}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema:   ResponseSchema(),
	}
}

// ResponseSchema renders the canonical field schema as a genai.Schema.
func ResponseSchema() *genai.Schema {
	props := make(map[string]*genai.Schema)
	var required []string
	for _, f := range artdex.ExtractionSchema() {
		s := &genai.Schema{Description: f.Description}
		switch f.Type {
		case "array":
			s.Type = genai.TypeArray
			s.Items = &genai.Schema{Type: genai.TypeString}
		default:
			s.Type = genai.TypeString
		}
		props[f.Name] = s
		if f.Required {
			required = append(required, f.Name)
		}
	}
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: props,
		Required:   required,
	}
}

// BuildUserPrompt builds the user prompt containing the page content.
func BuildUserPrompt(pageURL, title, markdown string) string {
	var sb strings.Builder
	sb.WriteString("<page>\n")
	fmt.Fprintf(&sb, "<url>%s</url>\n", pageURL)
	if title != "" {
		fmt.Fprintf(&sb, "<title>%s</title>\n", title)
	}
	fmt.Fprintf(&sb, "<content>\n%s\n</content>\n", markdown)
	sb.WriteString("</page>\n\n")
	sb.WriteString("Extract the artwork metadata from this page.")
	return sb.String()
}

// DecodeExtraction parses the model's JSON output.
func DecodeExtraction(text string) (*artdex.Extraction, error) {
	var ext artdex.Extraction
	if err := json.Unmarshal([]byte(text), &ext); err != nil {
		return nil, artdex.Errorf(artdex.EINVALID, "decoding model output: %v", err)
	}
	if ext.Title == "" {
		return nil, artdex.Errorf(artdex.EINVALID, "model output missing required title")
	}
	return &ext, nil
}

// mapAPIError translates Gemini API failures into the shared failure
// taxonomy so the retry controller can tell quota pressure from
// permanent errors.
func mapAPIError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return artdex.Errorf(artdex.ERATELIMIT, "gemini: %s", apiErr.Message)
	case apiErr.Code >= 500:
		return artdex.Errorf(artdex.EUNAVAILABLE, "gemini: %s", apiErr.Message)
	}
	return err
}
