package normalizer

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMarkdown_Basic(t *testing.T) {
	md, err := ToMarkdown("<h1>Closure notice</h1><p>The east gate is <b>closed</b>.</p>")

	require.NoError(t, err)
	assert.Contains(t, md, "# Closure notice")
	assert.Contains(t, md, "**closed**")
	assert.True(t, strings.HasSuffix(md, "\n"))
}

func TestToMarkdown_HeaderlessTableGetsSeparator(t *testing.T) {
	md, err := ToMarkdown("<table><tr><td>Gate</td><td>Hours</td></tr><tr><td>East</td><td>09-18</td></tr></table>")

	require.NoError(t, err)
	assert.Contains(t, md, "Gate")
	assert.Contains(t, md, "East")
	assert.Contains(t, md, "---")
}

func TestPromoteTableHeaders(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		"<table><tr><td>a</td><td>b</td></tr><tr><td>c</td><td>d</td></tr></table>" +
			"<table><tr><th>x</th></tr><tr><td>y</td></tr></table>"))
	require.NoError(t, err)

	promoteTableHeaders(doc.Selection)

	// first table: first row promoted, second row untouched
	assert.Equal(t, 3, doc.Find("th").Length())
	assert.Equal(t, 3, doc.Find("td").Length())
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"image", `before ![map](https://x/a.png) after`, "before  after"},
		{"link keeps text", `see [the notice](https://x/n/1) here`, "see the notice here"},
		{"emphasis", `a **bold** and *soft* word`, "a bold and soft word"},
		{"code span", "run `go build` now", "run go build now"},
		{"strikethrough", "old ~~price~~ gone", "old price gone"},
		{"heading", "# Title\nbody", "Title\nbody"},
		{"list markers", "- one\n- two\n1. three", "one\ntwo\nthree"},
		{"table", "| a | b |\n| --- | --- |\n| c | d |", "  a   b  \n\n  c   d  "},
		{"plain text untouched", "nothing fancy here.", "nothing fancy here."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMarkdown(tt.in))
		})
	}
}

func TestStripMarkdown_Idempotent(t *testing.T) {
	inputs := []string{
		"# Head\n\n**bold** [link](u) ![img](u)\n\n| a | b |\n| - | - |\n| c | d |",
		"plain sentence with nothing to strip",
		"- item *one*\n- item `two`",
	}

	for _, in := range inputs {
		once := StripMarkdown(in)
		assert.Equal(t, once, StripMarkdown(once), "input: %s", in)
	}
}
