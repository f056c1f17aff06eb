package gemini_test

import (
	"context"
	"testing"

	"github.com/fwojciec/artdex"
	"github.com/fwojciec/artdex/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catalogExcerpt is the kind of Markdown the report command sizes.
const catalogExcerpt = `## Guard I / 守卫 I

- Year: 2018
- Category: installation
- Materials: fiberglass sculpture, automotive paint
- Size: 180 x 80 x 75 cm
`

func TestTokenCounter_CountTokens(t *testing.T) {
	t.Parallel()

	// The model must have a published local tokenizer vocabulary.
	tc, err := gemini.NewTokenCounter("gemini-2.5-flash")
	require.NoError(t, err)

	var _ artdex.TokenCounter = tc

	t.Run("counts catalog markdown", func(t *testing.T) {
		t.Parallel()

		count, err := tc.CountTokens(context.Background(), catalogExcerpt)

		require.NoError(t, err)
		assert.Positive(t, count)
	})

	t.Run("empty text counts as zero", func(t *testing.T) {
		t.Parallel()

		count, err := tc.CountTokens(context.Background(), "")

		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("a full entry outweighs its title line", func(t *testing.T) {
		t.Parallel()

		title, err := tc.CountTokens(context.Background(), "## Guard I / 守卫 I")
		require.NoError(t, err)

		entry, err := tc.CountTokens(context.Background(), catalogExcerpt)
		require.NoError(t, err)

		assert.Greater(t, entry, title)
	})
}
