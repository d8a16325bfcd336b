package fetch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html><head><title>Mutual Aid Hub</title><script>evil()</script></head>
<body>
<nav><a href="/about">About</a></nav>
<article>
<h1>Free Fridge Opens Saturday</h1>
<p>Volunteers will stock a community fridge. See <a href="/details">details</a>
and the <a href="https://other.example.com/partner">partner org</a>.</p>
</article>
<footer>© 2026</footer>
</body></html>`

func TestParseHTMLStripsBoilerplateAndExtractsLinks(t *testing.T) {
	markdown, links, err := parseHTML(samplePage, "https://example.com/hub")
	require.NoError(t, err)

	assert.Contains(t, markdown, "Free Fridge Opens Saturday")
	assert.NotContains(t, markdown, "evil()")
	assert.NotContains(t, markdown, "© 2026")
	assert.Contains(t, markdown, "[details](https://example.com/details)")

	assert.Contains(t, links, "https://example.com/details")
	assert.Contains(t, links, "https://other.example.com/partner")
	assert.NotContains(t, links, "https://example.com/about", "nav links are stripped before link collection")
}

func TestParseHTMLDropsFragmentAndJavascriptLinks(t *testing.T) {
	page := `<html><body><article>
<a href="#top">top</a>
<a href="javascript:void(0)">noop</a>
<a href="/real">real</a>
</article></body></html>`

	_, links, err := parseHTML(page, "https://example.com/")
	require.NoError(t, err)

	assert.Len(t, links, 1)
	assert.Equal(t, "https://example.com/real", links[0])
}

func TestParseHTMLFallsBackToBodyWhenNoMainContainer(t *testing.T) {
	page := `<html><body><p>Just some text without a semantic container.</p></body></html>`
	markdown, _, err := parseHTML(page, "https://example.com/")
	require.NoError(t, err)
	assert.True(t, strings.Contains(markdown, "Just some text"))
}
