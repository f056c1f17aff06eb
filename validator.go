package artdex

import (
	"regexp"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// DefaultSimilarityThreshold is the minimum token-overlap ratio between
// the candidate and baseline titles for the final acceptance check.
// Empirically chosen; tune per site.
const DefaultSimilarityThreshold = 0.5

// DefaultTypeWords is the category vocabulary for type-string rejection.
// A candidate title matching one of these is a classification tag the
// remote extractor echoed instead of a title.
var DefaultTypeWords = []string{
	"video installation",
	"installation",
	"video",
	"website",
	"software",
	"performance",
	"exhibition",
	"single channel video",
}

// ValidationReason explains a validation verdict. Reasons are enumerated
// strings rather than booleans so the policy can be audited and tuned
// without touching call sites.
type ValidationReason string

// Validation reasons. The first two accept, the rest reject.
const (
	ReasonSlugMatch     ValidationReason = "slug_match"
	ReasonBaselineMatch ValidationReason = "baseline_match"
	ReasonTypeString    ValidationReason = "type_string"
	ReasonForeignTitle  ValidationReason = "foreign_title"
	ReasonSlugMismatch  ValidationReason = "slug_mismatch"
)

// ValidationResult is the verdict for one candidate title. Ephemeral,
// never persisted.
type ValidationResult struct {
	Accepted bool
	Reason   ValidationReason
}

// KnownTitles maps a title to the canonical URL (or slug) of the work it
// belongs to. A candidate title found here but attributed to a different
// URL is sidebar leakage from an adjacent page. Titles match
// case-insensitively.
type KnownTitles map[string]string

// OwnerOf returns the canonical URL registered for a title.
func (t KnownTitles) OwnerOf(title string) (string, bool) {
	norm := normTitle(title)
	if norm == "" {
		return "", false
	}
	for k, v := range t {
		if normTitle(k) == norm {
			return v, true
		}
	}
	return "", false
}

// ParseKnownTitles decodes a YAML table of title to canonical URL.
func ParseKnownTitles(data []byte) (KnownTitles, error) {
	var out KnownTitles
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, Errorf(EINVALID, "parse known titles: %v", err)
	}
	return out, nil
}

// Validator decides whether a remote candidate title, and by extension
// the prose fields from the same response, may be trusted for a URL.
// The zero value uses the default vocabulary and threshold and knows no
// foreign titles.
type Validator struct {
	// TypeWords overrides DefaultTypeWords when non-empty.
	TypeWords []string

	// KnownTitles is the maintained title ownership table.
	KnownTitles KnownTitles

	// SimilarityThreshold overrides DefaultSimilarityThreshold when
	// positive.
	SimilarityThreshold float64
}

// Validate runs the four checks in order, short-circuiting on the first
// verdict: type-string rejection, known-foreign-title rejection, URL-slug
// consistency (accepts), baseline similarity (accepts). A candidate that
// neither matches its own slug nor resembles the baseline is rejected.
func (v *Validator) Validate(baseline, candidate, rawURL string) ValidationResult {
	if v.isTypeString(candidate) {
		return ValidationResult{Reason: ReasonTypeString}
	}

	if canon, ok := v.KnownTitles.OwnerOf(candidate); ok && !sameWorkSlug(canon, rawURL) {
		return ValidationResult{Reason: ReasonForeignTitle}
	}

	slugTokens := titleTokens(Slug(rawURL))
	for token := range titleTokens(candidate) {
		if _, ok := slugTokens[token]; ok {
			return ValidationResult{Accepted: true, Reason: ReasonSlugMatch}
		}
	}

	if v.baselineMatch(baseline, candidate) {
		return ValidationResult{Accepted: true, Reason: ReasonBaselineMatch}
	}

	return ValidationResult{Reason: ReasonSlugMismatch}
}

func (v *Validator) isTypeString(candidate string) bool {
	norm := normTitle(candidate)
	if norm == "" {
		return false
	}

	words := v.TypeWords
	if len(words) == 0 {
		words = DefaultTypeWords
	}
	for _, w := range words {
		if normTitle(w) == norm {
			return true
		}
	}

	// A lowercase comma list of short terms is a materials/medium tag,
	// not a name. Proper names keep their capitals.
	if strings.ToLower(candidate) != candidate {
		return false
	}
	parts := strings.Split(norm, ",")
	if len(parts) < 3 {
		return false
	}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || len(strings.Fields(p)) > 3 {
			return false
		}
	}
	return true
}

func (v *Validator) baselineMatch(baseline, candidate string) bool {
	nb, nc := normTitle(baseline), normTitle(candidate)
	if nb == "" || nc == "" {
		return false
	}
	if nb == nc {
		return true
	}

	threshold := v.SimilarityThreshold
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return jaccard(titleTokens(baseline), titleTokens(candidate)) >= threshold
}

// noiseWords never count as evidence of a title match.
var noiseWords = map[string]bool{
	"the": true, "a": true, "an": true,
	"in": true, "on": true, "at": true,
	"to": true, "for": true, "of": true,
	"is": true, "are": true, "was": true,
	"it": true, "be": true,
}

func titleTokens(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if noiseWords[f] {
			continue
		}
		out[f] = struct{}{}
	}
	return out
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

func normTitle(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func sameWorkSlug(canon, rawURL string) bool {
	cs, us := Slug(canon), Slug(rawURL)
	return cs != "" && strings.EqualFold(cs, us)
}

var (
	sizeUnitRE = regexp.MustCompile(`(?i)\d+(?:[.,]\d+)?\s*(?:mm|cm|m(?:eters?)?|in(?:ch(?:es)?)?|ft|feet|px|pixels?)\b`)
	sizeDimsRE = regexp.MustCompile(`\d+\s*[x×]\s*\d+`)
	durationRE = regexp.MustCompile(`(?i)\d+\s*(?:min(?:ute)?s?|sec(?:ond)?s?|h(?:ou)?rs?)\b|\d+'(?:\d+''?)?|\d{1,2}:\d{2}`)
)

// PlausibleSize reports whether a size string looks like physical
// dimensions: a number with a length unit, a NxM dimension pair, or the
// catalog idiom "dimensions variable".
func PlausibleSize(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return sizeUnitRE.MatchString(s) || sizeDimsRE.MatchString(s) ||
		strings.Contains(strings.ToLower(s), "variable")
}

// PlausibleDuration reports whether a duration string looks like a
// running time: a number with a time unit, minute-prime notation
// (12'30''), a timestamp, or "loop".
func PlausibleDuration(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return durationRE.MatchString(s) || strings.Contains(strings.ToLower(s), "loop")
}

// ApplyExtraction merges a remote extraction into a work under the
// content gating rule. Layer 1 ground truth (year, category, images) is
// never overwritten, only filled when the local parse left it empty.
// When the verdict is a rejection the candidate title and all prose from
// the same response are discarded; size and duration may still survive
// their own plausibility checks.
func ApplyExtraction(w *Work, ext *Extraction, res ValidationResult) {
	if ext == nil {
		return
	}

	if w.Year == "" {
		w.SetField(FieldYear, ext.Year, LayerRemote)
	}
	if w.Category == "" {
		w.SetField(FieldCategory, ext.Category, LayerRemote)
	}
	if len(w.Images) == 0 && len(ext.Images) > 0 {
		w.Images = append([]string(nil), ext.Images...)
		if w.Sources == nil {
			w.Sources = Sources{}
		}
		w.Sources[FieldImages] = LayerRemote
	}

	if !res.Accepted {
		if PlausibleSize(ext.Size) {
			w.SetField(FieldSize, ext.Size, LayerRemote)
		}
		if PlausibleDuration(ext.Duration) {
			w.SetField(FieldDuration, ext.Duration, LayerRemote)
		}
		return
	}

	primary, localized := SplitBilingualTitle(ext.Title)
	w.SetField(FieldTitle, primary, LayerRemote)
	if ext.TitleCN != "" {
		w.SetField(FieldTitleCN, ext.TitleCN, LayerRemote)
	} else {
		w.SetField(FieldTitleCN, localized, LayerRemote)
	}
	w.SetField(FieldMaterials, ext.Materials, LayerRemote)
	w.SetField(FieldSize, ext.Size, LayerRemote)
	w.SetField(FieldDuration, ext.Duration, LayerRemote)
	w.SetField(FieldCredits, ext.Credits, LayerRemote)
	w.SetField(FieldDescriptionEN, ext.DescriptionEN, LayerRemote)
	w.SetField(FieldDescriptionCN, ext.DescriptionCN, LayerRemote)
	w.SetField(FieldVideoLink, ext.VideoLink, LayerRemote)
}
