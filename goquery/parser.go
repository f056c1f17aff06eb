// Package goquery provides the local (layer 1) page parsing for
// Cargo-style portfolio markup, and the link scanner used as the
// discovery fallback when a site has no readable sitemap.
package goquery

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/artdex"
)

var _ artdex.PageParser = (*Parser)(nil)

// Parser implements artdex.PageParser for the Cargo page anatomy:
// div.project_title carries the bilingual title, a[href*="/filter/"]
// anchors carry the tag set, div.project_content carries the prose
// (and the year), and img tags carry a high-resolution original in the
// src_o attribute.
type Parser struct {
	content artdex.ContentExtractor
}

// Option configures a Parser.
type Option func(*Parser)

// WithTitleFallback recovers a baseline title through a content
// extractor when the canonical title container is missing.
func WithTitleFallback(ce artdex.ContentExtractor) Option {
	return func(p *Parser) { p.content = ce }
}

// NewParser creates a new Parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// yearRE matches a creation year or year range, e.g. "2023" or
// "2018-2022" (hyphen or en dash).
var yearRE = regexp.MustCompile(`\b20\d{2}(?:[-–]20\d{2})?\b`)

// excludedImageAncestors matches page chrome that holds navigation
// thumbnails rather than artwork images.
const excludedImageAncestors = "nav, aside, .sidebar, .thumbnails"

// ParsePage parses the raw HTML of pageURL into layer 1 ground truth.
// Malformed markup yields empty fields, never an error; only an
// unparseable pageURL is rejected.
func (p *Parser) ParsePage(pageURL string, html string) (*artdex.ParseResult, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, artdex.Errorf(artdex.EINVALID, "invalid page URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, artdex.Errorf(artdex.EINVALID, "failed to parse HTML: %v", err)
	}

	tags := parseTags(doc)
	hasContainer := doc.Find("div.project_title, div.project_content").Length() > 0

	// A page is a work record iff it exposes the canonical artwork
	// container and a non-empty tag set. Everything else (index,
	// filter and navigation pages) never reaches layer 2.
	if !hasContainer || len(tags) == 0 {
		return &artdex.ParseResult{Filtered: true}, nil
	}

	result := &artdex.ParseResult{
		Tags:     tags,
		Category: tags[0],
		Year:     yearRE.FindString(doc.Find("div.project_content").Text()),
		Images:   parseImages(doc, base),
	}

	title := cleanText(doc.Find("div.project_title").First().Text())
	if title == "" && p.content != nil {
		if pc, err := p.content.Extract(html); err == nil {
			title = cleanText(pc.Title)
		}
	}
	result.BaselineTitle, result.BaselineTitleCN = artdex.SplitBilingualTitle(title)

	return result, nil
}

// parseTags collects the page's tag set from filter links, in document
// order, deduplicated.
func parseTags(doc *goquery.Document) []string {
	var tags []string
	seen := make(map[string]bool)
	doc.Find(`a[href*="/filter/"]`).Each(func(_ int, sel *goquery.Selection) {
		tag := cleanText(sel.Text())
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	})
	return tags
}

// parseImages collects artwork image URLs in document order, preferring
// the src_o high-resolution attribute, skipping sidebar and thumbnail
// chrome, resolved against the page URL.
func parseImages(doc *goquery.Document, base *url.URL) []string {
	var images []string
	seen := make(map[string]bool)
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		if sel.ParentsFiltered(excludedImageAncestors).Length() > 0 {
			return
		}

		src, ok := sel.Attr("src_o")
		if !ok || src == "" {
			src, ok = sel.Attr("src")
		}
		if !ok || src == "" || strings.HasPrefix(strings.ToLower(src), "data:") {
			return
		}

		ref, err := url.Parse(strings.TrimSpace(src))
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref).String()
		if seen[resolved] {
			return
		}
		seen[resolved] = true
		images = append(images, resolved)
	})
	return images
}

// whitespaceRE collapses runs of whitespace, including newlines that
// Cargo templates scatter through text nodes.
var whitespaceRE = regexp.MustCompile(`\s+`)

func cleanText(s string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}
