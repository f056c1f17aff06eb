package artdex

// Converter turns page HTML into Markdown for the extraction prompt.
// Markdown strips markup noise while keeping the labels and line
// structure the model reads fields from.
type Converter interface {
	// Convert transforms HTML into Markdown. The input should be the
	// readable region of a page (e.g. from a ContentExtractor), not
	// the raw document.
	Convert(html string) (string, error)
}
