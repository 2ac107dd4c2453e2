package normalizer

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	baseplugin "github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/heritage-kr/noticehub/internal/apperr"
	"golang.org/x/net/html/atom"
)

// ToMarkdown converts a canonical HTML fragment to Markdown. Tables without
// header cells get their first row promoted to headers first, so the
// renderer always emits a well-formed separator line.
func ToMarkdown(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", apperr.NewParseWrap("failed to parse HTML fragment", err)
	}
	promoteTableHeaders(doc.Selection)

	inner, err := doc.Find("body").Html()
	if err != nil {
		return "", apperr.NewParseWrap("failed to serialize fragment", err)
	}

	conv := converter.NewConverter(
		converter.WithPlugins(
			baseplugin.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	md, err := conv.ConvertString(inner)
	if err != nil {
		return "", apperr.NewParseWrap("failed to render Markdown", err)
	}
	return strings.TrimSpace(md) + "\n", nil
}

// promoteTableHeaders rewrites the first row's cells to th for tables that
// have no header cells at all.
func promoteTableHeaders(sel *goquery.Selection) {
	sel.Find("table").Each(func(_ int, t *goquery.Selection) {
		if t.Find("th").Length() > 0 {
			return
		}
		t.Find("tr").First().Children().Each(func(_ int, cell *goquery.Selection) {
			n := cell.Nodes[0]
			if n.Data == "td" {
				n.Data = "th"
				n.DataAtom = atom.Th
			}
		})
	})
}

// stripPasses remove Markdown syntax in a fixed order: media and links
// first (their payload contains bracket characters the later passes would
// mangle), then span-level emphasis, then line-level markers.
var stripPasses = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`), ""},          // images
	{regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`), "$1"},       // links, keep text
	{regexp.MustCompile("`([^`]*)`"), "$1"},                   // code spans
	{regexp.MustCompile(`(\*\*|__)([^*_]+)(\*\*|__)`), "$2"},  // bold
	{regexp.MustCompile(`(\*|_)([^*_]+)(\*|_)`), "$2"},        // emphasis
	{regexp.MustCompile(`~~([^~]+)~~`), "$1"},                 // strikethrough
	{regexp.MustCompile(`(?m)^#{1,6}\s+`), ""},                // headings
	{regexp.MustCompile(`(?m)^\s*[-*+]\s+`), ""},              // unordered list markers
	{regexp.MustCompile(`(?m)^\s*\d+\.\s+`), ""},              // ordered list markers
	{regexp.MustCompile(`(?m)^\s*\|?[\s:|-]*-[\s:|-]*\|?\s*$`), ""}, // table separator rows
	{regexp.MustCompile(`\|`), " "},                           // table pipes
}

// StripMarkdown reduces Markdown to plain text for the search index's
// full-text field. Idempotent: running it on already-plain text changes
// nothing.
func StripMarkdown(s string) string {
	for _, p := range stripPasses {
		s = p.re.ReplaceAllString(s, p.repl)
	}
	return s
}
