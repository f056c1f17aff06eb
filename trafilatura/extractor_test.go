package trafilatura_test

import (
	"testing"

	"github.com/fwojciec/artdex"
	"github.com/fwojciec/artdex/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Extractor implements artdex.ContentExtractor at compile time.
var _ artdex.ContentExtractor = (*trafilatura.Extractor)(nil)

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts title from meta tags", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head>
<title>Guard I - aaajiao</title>
<meta property="og:title" content="Guard I">
</head>
<body>
<nav>Navigation here</nav>
<main>
<h1>Guard I</h1>
<p>A hyperrealistic silicone sculpture of a sleeping security guard, part of an ongoing series about invisible labor.</p>
</main>
<footer>Footer content</footer>
</body>
</html>`

		ext := trafilatura.NewExtractor()
		result, err := ext.Extract(html)

		require.NoError(t, err)
		assert.NotEmpty(t, result.Title)
	})

	t.Run("extracts main content", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head><title>Body Scan</title></head>
<body>
<nav><a href="/">相关作品</a><a href="/filter/Video">Video</a></nav>
<article>
<h1>Body Scan</h1>
<p>Single-channel video installation exploring the aesthetics of airport security imaging.</p>
<p>Duration 12 minutes, looped. Commissioned for the 12th Shanghai Biennale.</p>
</article>
<aside>Sidebar content</aside>
<footer>Copyright 2024</footer>
</body>
</html>`

		ext := trafilatura.NewExtractor()
		result, err := ext.Extract(html)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "airport security imaging")
		assert.Contains(t, result.ContentHTML, "Shanghai Biennale")
	})

	t.Run("removes navigation boilerplate", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head><title>Test</title></head>
<body>
<nav class="main-nav">
<ul>
<li><a href="/">Home</a></li>
<li><a href="/filter/Sculpture">Sculpture</a></li>
<li><a href="/filter/Video">Video</a></li>
</ul>
</nav>
<main>
<h1>Main Content</h1>
<p>This paragraph contains the actual description we want to keep.</p>
</main>
</body>
</html>`

		ext := trafilatura.NewExtractor()
		result, err := ext.Extract(html)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "actual description we want")
		assert.NotContains(t, result.ContentHTML, "main-nav")
	})

	t.Run("removes footer boilerplate", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head><title>Test</title></head>
<body>
<article>
<h1>GFWlist</h1>
<p>An installation rendering the blocklist of the Great Firewall as a continuous paper printout.</p>
</article>
<footer>
<p>Copyright 2024 Example Studio</p>
<nav>Privacy | Terms | Contact</nav>
</footer>
</body>
</html>`

		ext := trafilatura.NewExtractor()
		result, err := ext.Extract(html)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "continuous paper printout")
		assert.NotContains(t, result.ContentHTML, "Copyright 2024 Example Studio")
	})

	t.Run("handles a Cargo-style work page", func(t *testing.T) {
		t.Parallel()

		// Cargo renders the whole site nav next to the work content, which
		// is exactly the boilerplate the pipeline needs stripped.
		html := `<!DOCTYPE html>
<html>
<head>
<title>Guard I — aaajiao</title>
<meta property="og:title" content="Guard I">
</head>
<body>
<div id="header"><a href="/">aaajiao</a></div>
<div class="sidebar">
<ul>
<li><a href="/Guard-I">Guard I</a></li>
<li><a href="/Body-Scan">Body Scan</a></li>
<li><a href="/GFWlist">GFWlist</a></li>
</ul>
</div>
<main>
<article>
<div class="project_title"><h1>Guard I / 守卫 I</h1></div>
<p>Silicone, fiberglass, clothing. 180 x 60 x 60 cm.</p>
<p>A sleeping guard cast from life questions the theatre of security. The figure breathes almost imperceptibly.</p>
</article>
</main>
<footer class="footer"><p>Built with Cargo</p></footer>
</body>
</html>`

		ext := trafilatura.NewExtractor()
		result, err := ext.Extract(html)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "theatre of security")
		assert.Contains(t, result.ContentHTML, "Silicone, fiberglass")
	})

	t.Run("preserves bilingual text", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head><title>Bilingual</title></head>
<body>
<article>
<h1>Typeface / 字体</h1>
<p>The work examines how vernacular typography survives digital reproduction.</p>
<p>这件作品考察民间字体如何在数字复制中存续。展览现场包括打印样本与屏幕投影。</p>
</article>
</body>
</html>`

		ext := trafilatura.NewExtractor()
		result, err := ext.Extract(html)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "vernacular typography")
		assert.Contains(t, result.ContentHTML, "数字复制")
	})

	t.Run("returns EINVALID for empty input", func(t *testing.T) {
		t.Parallel()

		ext := trafilatura.NewExtractor()
		_, err := ext.Extract("")

		require.Error(t, err)
		assert.Equal(t, artdex.EINVALID, artdex.ErrorCode(err))
	})

	t.Run("handles minimal valid HTML", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><p>Simple content</p></body></html>`

		ext := trafilatura.NewExtractor()
		result, err := ext.Extract(html)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "Simple content")
	})
}
