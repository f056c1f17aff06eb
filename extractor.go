package artdex

import "context"

// Extraction is the layer 2 candidate payload for one URL. The shape is
// closed: every field the remote service may return has an explicit slot,
// and absent values are empty strings rather than missing keys.
type Extraction struct {
	Title         string   `json:"title"`
	TitleCN       string   `json:"title_cn"`
	Year          string   `json:"year"`
	Category      string   `json:"category"`
	Materials     string   `json:"materials"`
	Size          string   `json:"size"`
	Duration      string   `json:"duration"`
	Credits       string   `json:"credits"`
	DescriptionEN string   `json:"description_en"`
	DescriptionCN string   `json:"description_cn"`
	VideoLink     string   `json:"video_link"`
	Images        []string `json:"images"`
}

// ExtractorStats is a snapshot of an extractor's cost accounting counters.
// Every successful remote call is billed externally; the caller decides
// what to do about spend, the extractor only counts.
type ExtractorStats struct {
	// Calls is the number of extraction attempts issued, by any transport.
	Calls int64 `json:"layer2_calls"`

	// FallbackCalls is the subset of Calls served by the synchronous
	// fallback transport.
	FallbackCalls int64 `json:"layer2_fallback_calls"`

	// Credits is the remote service's own usage metric, when reported.
	Credits int64 `json:"credits_used"`
}

// Extractor issues schema-guided remote extractions (layer 2).
type Extractor interface {
	// Extract returns the candidate metadata for a URL. Failures carry
	// one of the application error codes: ERATELIMIT (quota or rate
	// limit), ETIMEOUT (wait budget exceeded), EINVALID (malformed
	// response), EUNAVAILABLE (transient service failure).
	Extract(ctx context.Context, url string) (*Extraction, error)

	// Stats returns the current cost accounting snapshot.
	Stats() ExtractorStats
}

// SchemaField describes one field of the extraction schema sent to the
// remote service: a name, a JSON type, and a human-readable description
// that steers the extraction.
type SchemaField struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// ExtractionSchema returns the canonical field schema shared by every
// extractor backend.
func ExtractionSchema() []SchemaField {
	return []SchemaField{
		{Name: "title", Type: "string", Description: "The English title of the work", Required: true},
		{Name: "title_cn", Type: "string", Description: "The Chinese title of the work. If not explicitly found, leave empty."},
		{Name: "year", Type: "string", Description: "Creation year or year range (e.g. 2018-2022)"},
		{Name: "category", Type: "string", Description: "The art category (e.g. Video Installation, Software, Website)"},
		{Name: "materials", Type: "string", Description: "Materials list (e.g. LED screen, 3D printing)"},
		{Name: "size", Type: "string", Description: "Physical dimensions of the work, with units"},
		{Name: "duration", Type: "string", Description: "Running time for time-based work (e.g. 12'30'')"},
		{Name: "credits", Type: "string", Description: "Production credits and collaborators"},
		{Name: "description_en", Type: "string", Description: "Detailed work description in English. Exclude navigation text."},
		{Name: "description_cn", Type: "string", Description: "Detailed work description in Chinese. Exclude navigation text."},
		{Name: "video_link", Type: "string", Description: "Vimeo URL if present"},
		{Name: "images", Type: "array", Description: "High-res image URLs, prefer 'src_o' attribute"},
	}
}

// ExtractionPrompt is the instruction sent with every remote extraction.
// It tells the service to ignore SPA navigation leakage and to separate
// bilingual titles.
const ExtractionPrompt = "You are an art archivist. Extract the artwork metadata from the portfolio page. " +
	"Ignore navigation links like 'Previous/Next project'. " +
	"The title usually appears as 'English Title / Chinese Title'. Separate them."
