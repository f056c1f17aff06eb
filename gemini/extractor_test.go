package gemini_test

import (
	"context"
	"testing"

	"github.com/fwojciec/artdex"
	"github.com/fwojciec/artdex/gemini"
	"github.com/fwojciec/artdex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestExtractor_Extract_ReturnsErrorWhenURLEmpty(t *testing.T) {
	t.Parallel()

	ext := gemini.NewExtractor(nil, nil, nil, nil)

	_, err := ext.Extract(context.Background(), "")

	require.Error(t, err)
	assert.Equal(t, artdex.EINVALID, artdex.ErrorCode(err))
	assert.Contains(t, artdex.ErrorMessage(err), "url required")
}

func TestExtractor_Extract_PropagatesFetchError(t *testing.T) {
	t.Parallel()

	expectedErr := artdex.Errorf(artdex.EUNAVAILABLE, "browser crashed")
	fetcher := &mock.Fetcher{
		FetchFn: func(context.Context, string) (string, error) {
			return "", expectedErr
		},
	}

	ext := gemini.NewExtractor(nil, fetcher, nil, nil) // nil client ok for this test

	_, err := ext.Extract(context.Background(), "https://example.com/Guard-I")

	require.Error(t, err)
	assert.Equal(t, artdex.EUNAVAILABLE, artdex.ErrorCode(err))
	assert.Equal(t, int64(0), ext.Stats().Calls, "no paid call before the page is ready")
}

func TestExtractor_Extract_PropagatesContentError(t *testing.T) {
	t.Parallel()

	fetcher := &mock.Fetcher{
		FetchFn: func(context.Context, string) (string, error) {
			return "<html></html>", nil
		},
	}
	content := &mock.ContentExtractor{
		ExtractFn: func(string) (*artdex.PageContent, error) {
			return nil, artdex.Errorf(artdex.EINVALID, "no content found")
		},
	}

	ext := gemini.NewExtractor(nil, fetcher, content, nil)

	_, err := ext.Extract(context.Background(), "https://example.com/Guard-I")

	require.Error(t, err)
	assert.Equal(t, artdex.EINVALID, artdex.ErrorCode(err))
}

func TestExtractor_Extract_PropagatesConvertError(t *testing.T) {
	t.Parallel()

	fetcher := &mock.Fetcher{
		FetchFn: func(context.Context, string) (string, error) {
			return "<html></html>", nil
		},
	}
	content := &mock.ContentExtractor{
		ExtractFn: func(string) (*artdex.PageContent, error) {
			return &artdex.PageContent{Title: "Guard I", ContentHTML: "<p>silicone</p>"}, nil
		},
	}
	converter := &mock.Converter{
		ConvertFn: func(string) (string, error) {
			return "", artdex.Errorf(artdex.EINTERNAL, "conversion failed")
		},
	}

	ext := gemini.NewExtractor(nil, fetcher, content, converter)

	_, err := ext.Extract(context.Background(), "https://example.com/Guard-I")

	require.Error(t, err)
	assert.Equal(t, artdex.EINTERNAL, artdex.ErrorCode(err))
}

func TestBuildConfig_SetsSystemInstruction(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig()

	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, "art archivist")
}

func TestBuildConfig_SetsTemperatureZero(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig()

	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.0, *config.Temperature, 0.001)
}

func TestBuildConfig_RequestsStructuredJSON(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig()

	assert.Equal(t, "application/json", config.ResponseMIMEType)
	require.NotNil(t, config.ResponseSchema)
	assert.Equal(t, genai.TypeObject, config.ResponseSchema.Type)
}

func TestResponseSchema_CoversCanonicalFields(t *testing.T) {
	t.Parallel()

	schema := gemini.ResponseSchema()

	require.NotNil(t, schema)
	assert.Contains(t, schema.Required, "title")

	title, ok := schema.Properties["title"]
	require.True(t, ok)
	assert.Equal(t, genai.TypeString, title.Type)

	images, ok := schema.Properties["images"]
	require.True(t, ok)
	assert.Equal(t, genai.TypeArray, images.Type)
	require.NotNil(t, images.Items)
	assert.Equal(t, genai.TypeString, images.Items.Type)

	assert.Contains(t, schema.Properties, "title_cn")
	assert.Contains(t, schema.Properties, "description_en")
}

func TestBuildUserPrompt_ContainsPageContent(t *testing.T) {
	t.Parallel()

	prompt := gemini.BuildUserPrompt("https://example.com/Guard-I", "Guard I / 守卫 I", "# Guard I\n\nsilicone, fiberglass")

	assert.Contains(t, prompt, "<page>")
	assert.Contains(t, prompt, "https://example.com/Guard-I")
	assert.Contains(t, prompt, "Guard I / 守卫 I")
	assert.Contains(t, prompt, "silicone, fiberglass")
	assert.Contains(t, prompt, "</page>")
}

func TestBuildUserPrompt_OmitsEmptyTitle(t *testing.T) {
	t.Parallel()

	prompt := gemini.BuildUserPrompt("https://example.com/Guard-I", "", "content")

	assert.NotContains(t, prompt, "<title>")
}

func TestBuildUserPrompt_DoesNotContainSystemInstruction(t *testing.T) {
	t.Parallel()

	prompt := gemini.BuildUserPrompt("https://example.com/Guard-I", "Guard I", "content")

	assert.NotContains(t, prompt, "art archivist")
}

func TestDecodeExtraction(t *testing.T) {
	t.Parallel()

	t.Run("decodes a complete payload", func(t *testing.T) {
		t.Parallel()

		ext, err := gemini.DecodeExtraction(`{"title": "Guard I", "title_cn": "守卫 I", "year": "2018", "images": ["https://example.com/a.jpg"]}`)

		require.NoError(t, err)
		assert.Equal(t, "Guard I", ext.Title)
		assert.Equal(t, "守卫 I", ext.TitleCN)
		assert.Equal(t, "2018", ext.Year)
		assert.Equal(t, []string{"https://example.com/a.jpg"}, ext.Images)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		t.Parallel()

		_, err := gemini.DecodeExtraction("not json")

		require.Error(t, err)
		assert.Equal(t, artdex.EINVALID, artdex.ErrorCode(err))
	})

	t.Run("rejects output without a title", func(t *testing.T) {
		t.Parallel()

		_, err := gemini.DecodeExtraction(`{"year": "2018"}`)

		require.Error(t, err)
		assert.Equal(t, artdex.EINVALID, artdex.ErrorCode(err))
	})
}
