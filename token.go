package artdex

import "context"

// TokenCounter counts tokens in text as a specific model would.
// The report command uses it to size catalog output for a model
// context window without a paid API call.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
