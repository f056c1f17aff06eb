package artdex

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Layer identifies which extraction layer produced a field value.
type Layer string

// Provenance layers. LayerLocal fields come from the free structural parse
// of the static markup and are treated as ground truth. LayerRemote fields
// come from the paid AI extraction and survive only when validated.
// LayerUnvalidated marks fields recorded without a validation verdict,
// e.g. after the remote extraction failed terminally.
const (
	LayerLocal       Layer = "layer1"
	LayerRemote      Layer = "layer2"
	LayerUnvalidated Layer = "unvalidated"
)

// Field names a Work field for provenance tracking.
type Field string

// Fields carrying per-field provenance.
const (
	FieldTitle         Field = "title"
	FieldTitleCN       Field = "title_cn"
	FieldYear          Field = "year"
	FieldCategory      Field = "category"
	FieldMaterials     Field = "materials"
	FieldSize          Field = "size"
	FieldDuration      Field = "duration"
	FieldCredits       Field = "credits"
	FieldDescriptionEN Field = "description_en"
	FieldDescriptionCN Field = "description_cn"
	FieldVideoLink     Field = "video_link"
	FieldImages        Field = "images"
)

// allFields is the canonical field order used for checksums.
var allFields = []Field{
	FieldTitle, FieldTitleCN, FieldYear, FieldCategory, FieldMaterials,
	FieldSize, FieldDuration, FieldCredits, FieldDescriptionEN,
	FieldDescriptionCN, FieldVideoLink, FieldImages,
}

// Sources records which layer produced each non-empty field.
// Fields without an entry were never populated.
type Sources map[Field]Layer

// Clone returns a copy of the source map.
func (s Sources) Clone() Sources {
	if s == nil {
		return nil
	}
	out := make(Sources, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Work represents one artwork's verified metadata record. The URL is the
// record identity and never changes after creation.
type Work struct {
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	TitleCN       string    `json:"titleCn"`
	Year          string    `json:"year"`
	Category      string    `json:"category"`
	Materials     string    `json:"materials"`
	Size          string    `json:"size"`
	Duration      string    `json:"duration"`
	Credits       string    `json:"credits"`
	DescriptionEN string    `json:"descriptionEn"`
	DescriptionCN string    `json:"descriptionCn"`
	VideoLink     string    `json:"videoLink"`
	Images        []string  `json:"images"`
	Tags          []string  `json:"tags"`
	Sources       Sources   `json:"sources"`
	LastMod       string    `json:"lastMod,omitempty"`
	FetchedAt     time.Time `json:"fetchedAt"`
	Checksum      string    `json:"checksum"`
}

// Validate returns an error if the work contains invalid fields.
func (w *Work) Validate() error {
	if w.URL == "" {
		return Errorf(EINVALID, "work URL required")
	}
	u, err := url.Parse(w.URL)
	if err != nil || !u.IsAbs() {
		return Errorf(EINVALID, "work URL must be absolute: %q", w.URL)
	}
	return nil
}

// Clone returns a deep copy of the work. Cache implementations return
// clones so no caller retains a reference to stored state.
func (w *Work) Clone() *Work {
	other := *w
	other.Images = append([]string(nil), w.Images...)
	other.Tags = append([]string(nil), w.Tags...)
	other.Sources = w.Sources.Clone()
	return &other
}

// Source returns the layer that produced the field, or the empty Layer
// when the field was never populated.
func (w *Work) Source(f Field) Layer {
	return w.Sources[f]
}

// SetField assigns a field value together with its provenance layer.
// Empty values are ignored: absence is recorded by absence.
func (w *Work) SetField(f Field, value string, layer Layer) {
	if value == "" {
		return
	}
	switch f {
	case FieldTitle:
		w.Title = value
	case FieldTitleCN:
		w.TitleCN = value
	case FieldYear:
		w.Year = value
	case FieldCategory:
		w.Category = value
	case FieldMaterials:
		w.Materials = value
	case FieldSize:
		w.Size = value
	case FieldDuration:
		w.Duration = value
	case FieldCredits:
		w.Credits = value
	case FieldDescriptionEN:
		w.DescriptionEN = value
	case FieldDescriptionCN:
		w.DescriptionCN = value
	case FieldVideoLink:
		w.VideoLink = value
	}
	if w.Sources == nil {
		w.Sources = Sources{}
	}
	w.Sources[f] = layer
}

// FieldValue returns the current value of a provenance-tracked string field.
func (w *Work) FieldValue(f Field) string {
	switch f {
	case FieldTitle:
		return w.Title
	case FieldTitleCN:
		return w.TitleCN
	case FieldYear:
		return w.Year
	case FieldCategory:
		return w.Category
	case FieldMaterials:
		return w.Materials
	case FieldSize:
		return w.Size
	case FieldDuration:
		return w.Duration
	case FieldCredits:
		return w.Credits
	case FieldDescriptionEN:
		return w.DescriptionEN
	case FieldDescriptionCN:
		return w.DescriptionCN
	case FieldVideoLink:
		return w.VideoLink
	}
	return ""
}

// ClearField empties a field and drops its provenance entry.
func (w *Work) ClearField(f Field) {
	switch f {
	case FieldTitle:
		w.Title = ""
	case FieldTitleCN:
		w.TitleCN = ""
	case FieldYear:
		w.Year = ""
	case FieldCategory:
		w.Category = ""
	case FieldMaterials:
		w.Materials = ""
	case FieldSize:
		w.Size = ""
	case FieldDuration:
		w.Duration = ""
	case FieldCredits:
		w.Credits = ""
	case FieldDescriptionEN:
		w.DescriptionEN = ""
	case FieldDescriptionCN:
		w.DescriptionCN = ""
	case FieldVideoLink:
		w.VideoLink = ""
	}
	delete(w.Sources, f)
}

// ComputeChecksum returns a stable xxhash digest over the work's content
// fields. Fetch bookkeeping (FetchedAt, LastMod) is excluded so an
// unchanged record hashes identically across runs.
func (w *Work) ComputeChecksum() string {
	h := xxhash.New()
	_, _ = h.WriteString(w.URL)
	for _, f := range allFields {
		_, _ = h.WriteString("\x1f")
		if f == FieldImages {
			_, _ = h.WriteString(strings.Join(w.Images, "\x1e"))
			continue
		}
		_, _ = h.WriteString(w.FieldValue(f))
		_, _ = h.WriteString(string(w.Sources[f]))
	}
	_, _ = h.WriteString("\x1f")
	_, _ = h.WriteString(strings.Join(w.Tags, "\x1e"))
	return fmt.Sprintf("%x", h.Sum64())
}

// SplitBilingualTitle splits a "English Title / 中文标题" pair into its
// parts. Titles without a separator return the trimmed input and an empty
// localized part.
func SplitBilingualTitle(title string) (primary, localized string) {
	parts := strings.SplitN(title, "/", 2)
	primary = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		localized = strings.TrimSpace(parts[1])
	}
	return primary, localized
}

// Slug returns the final path segment of a work URL, or the empty string
// when the URL has no path.
func Slug(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

// SortWorksByYear orders works newest first, breaking ties by URL. Works
// without a year sort last. Year ranges ("2018-2022") sort by their first
// year.
func SortWorksByYear(works []*Work) {
	sort.SliceStable(works, func(i, j int) bool {
		yi, yj := leadingYear(works[i].Year), leadingYear(works[j].Year)
		if yi != yj {
			return yi > yj
		}
		return works[i].URL < works[j].URL
	})
}

func leadingYear(year string) string {
	year = strings.TrimSpace(year)
	if len(year) >= 4 {
		return year[:4]
	}
	return ""
}
