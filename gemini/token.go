package gemini

import (
	"context"

	"github.com/fwojciec/artdex"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ artdex.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts Gemini tokens locally, without an API call or
// key. The report command uses it to size the exported catalog for a
// model context window.
type TokenCounter struct {
	local *tokenizer.LocalTokenizer
}

// NewTokenCounter loads the local tokenizer vocabulary for model.
func NewTokenCounter(model string) (*TokenCounter, error) {
	local, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, err
	}
	return &TokenCounter{local: local}, nil
}

// CountTokens returns the number of tokens the model would see in
// text. Empty text counts as zero without touching the tokenizer.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	res, err := tc.local.CountTokens([]*genai.Content{{
		Parts: []*genai.Part{{Text: text}},
		Role:  "user",
	}}, nil)
	if err != nil {
		return 0, err
	}

	return int(res.TotalTokens), nil
}
