package mock

import "github.com/fwojciec/artdex"

var _ artdex.Converter = (*Converter)(nil)

// Converter is a mock implementation of artdex.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
