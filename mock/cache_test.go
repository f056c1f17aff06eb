package mock_test

import (
	"context"
	"testing"

	"github.com/fwojciec/artdex"
	"github.com/fwojciec/artdex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStore_ImplementsInterface(t *testing.T) {
	t.Parallel()

	// Verify mock can be used where CacheStore is expected
	var _ artdex.CacheStore = &mock.CacheStore{}
}

func TestCacheStore_SaveWork(t *testing.T) {
	t.Parallel()

	t.Run("delegates to SaveWorkFn", func(t *testing.T) {
		t.Parallel()

		var calledWith *artdex.Work
		s := &mock.CacheStore{
			SaveWorkFn: func(_ context.Context, work *artdex.Work) error {
				calledWith = work
				return nil
			},
		}

		work := &artdex.Work{
			URL:   "https://example.com/Guard-I",
			Title: "Guard I",
			Year:  "2018",
		}

		err := s.SaveWork(context.Background(), work)

		require.NoError(t, err)
		assert.Equal(t, work, calledWith)
	})
}
