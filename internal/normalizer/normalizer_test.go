package normalizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "https://example.com"

func TestNormalize_MergesAdjacentFormatting(t *testing.T) {
	out, err := Normalize("<div><b>Hello</b><b> World</b></div>", base)

	require.NoError(t, err)
	assert.Contains(t, out, "<b>Hello World</b>")
	assert.NotContains(t, out, "<div>")
	assert.True(t, strings.HasPrefix(out, `<html><head><meta charset="UTF-8"/></head><body>`))
}

func TestNormalize_MergesThreeSiblingsSeparatedByWhitespace(t *testing.T) {
	out, err := Normalize("<b>a</b> <b>b</b>\n<b>c</b>", base)

	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "<b>"))
	assert.Contains(t, out, "<b>a b c</b>")
}

func TestNormalize_LiftsSingleImageTable(t *testing.T) {
	out, err := Normalize(`<table><tbody><tr><td><img src="a.png"></td></tr></tbody></table>`, base)

	require.NoError(t, err)
	assert.NotContains(t, out, "<table")
	assert.Contains(t, out, `<img src="https://example.coma.png"/>`)
}

func TestNormalize_KeepsRealTables(t *testing.T) {
	out, err := Normalize(`<table><tr><td>Opening hours</td><td><img src="/a.png"></td></tr></table>`, base)

	require.NoError(t, err)
	assert.Contains(t, out, "<table")
	assert.Contains(t, out, "Opening hours")
}

func TestNormalize_RewritesLinksAndImages(t *testing.T) {
	in := `<p><a href="/notice/3" class="lnk" onclick="x()">read</a>` +
		`<a href="https://other.org/y">ext</a>` +
		`<img src="/img/a.png" alt="map" width="40"></p>`

	out, err := Normalize(in, base)

	require.NoError(t, err)
	assert.Contains(t, out, `<a href="https://example.com/notice/3" target="_blank">read</a>`)
	assert.Contains(t, out, `<a href="https://other.org/y" target="_blank">ext</a>`)
	assert.Contains(t, out, `<img src="https://example.com/img/a.png" alt="map"/>`)
	assert.NotContains(t, out, "class=")
	assert.NotContains(t, out, "width=")
	assert.NotContains(t, out, "onclick=")
}

func TestNormalize_DropsLinkWithoutTargetAndImageWithoutSource(t *testing.T) {
	out, err := Normalize(`<p><a name="anchor">gone</a>stays<img alt="no source"></p>`, base)

	require.NoError(t, err)
	assert.NotContains(t, out, "<a")
	assert.NotContains(t, out, "<img")
	assert.Contains(t, out, "stays")
}

func TestNormalize_RemovesScriptsStylesAndComments(t *testing.T) {
	in := `<p>keep</p><script>alert(1)</script><style>p{}</style><!-- note -->`

	out, err := Normalize(in, base)

	require.NoError(t, err)
	assert.Contains(t, out, "keep")
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "style")
	assert.NotContains(t, out, "note")
}

func TestNormalize_RemovesEmptyElements(t *testing.T) {
	in := "<p></p><p>​</p><p><br></p><p><img src=\"/a.png\"></p><p>text</p>"

	out, err := Normalize(in, base)

	require.NoError(t, err)
	// zero-width-space-only paragraphs go, media-bearing ones stay
	assert.Equal(t, 3, strings.Count(out, "<p>"))
	assert.Contains(t, out, "<br/>")
	assert.Contains(t, out, "<img")
	assert.Contains(t, out, "text")
	assert.NotContains(t, out, "​")
}

func TestNormalize_CollapsesSelfNesting(t *testing.T) {
	out, err := Normalize("<b><b>deep</b></b>", base)

	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "<b>"))
	assert.Contains(t, out, "<b>deep</b>")
}

func TestNormalize_CollapsesWhitespaceRuns(t *testing.T) {
	out, err := Normalize("<p>a\n\n   b\t\tc</p>", base)

	require.NoError(t, err)
	assert.Contains(t, out, "a b c")
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"<div><b>Hello</b><b> World</b></div>",
		`<p><a href="/x">read</a></p><table><tr><td><img src="a.png"></td></tr></table>`,
		`<ul><li>one</li><li><span>two</span></li></ul>`,
		`<p>plain   text with <em>feeling</em></p>`,
	}

	for _, in := range inputs {
		once, err := Normalize(in, base)
		require.NoError(t, err)

		twice, err := Normalize(once, base)
		require.NoError(t, err)

		assert.Equal(t, once, twice, "input: %s", in)
	}
}
