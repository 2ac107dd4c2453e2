// Package normalizer rebuilds arbitrary notice-board HTML into a minimal
// canonical fragment and renders it to Markdown. The passes run in a fixed
// order; later passes assume the earlier ones already ran (attribute
// stripping before container unwrapping, merging before empty-element
// removal). Everything here is a pure function of the input fragment and a
// base URL.
package normalizer

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/heritage-kr/noticehub/internal/apperr"
	"golang.org/x/net/html"
)

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	htmlComments   = regexp.MustCompile(`(?s)<!--.*?-->`)
)

// formattingTags are the inline elements eligible for adjacent-sibling
// merging. Legacy board markup splits a single bold run across many of
// these.
var formattingTags = map[string]bool{
	"b":      true,
	"i":      true,
	"strong": true,
	"em":     true,
}

// tableStructureTags are the only tags allowed to remain in a table that is
// considered a bare image wrapper.
var tableStructureTags = map[string]bool{
	"img":   true,
	"tbody": true,
	"thead": true,
	"tr":    true,
	"td":    true,
	"th":    true,
}

// Normalize strips, rewrites and rebuilds an HTML fragment into the minimal
// canonical form: no scripts or styles, attribute-free markup except link
// targets and image sources (resolved against baseURL), no generic
// containers, merged formatting runs, no empty elements, wrapped in a
// minimal document shell with collapsed whitespace.
func Normalize(fragment, baseURL string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", apperr.NewParseWrap("failed to parse HTML fragment", err)
	}
	body := doc.Find("body")

	body.Find("script, style").Remove()
	rewriteAttributes(body, baseURL)
	unwrapContainers(body)
	mergeAdjacentFormatting(body)
	liftSingleImageTables(body)
	removeEmptyElements(body)
	collapseSelfNesting(body)

	inner, err := body.Html()
	if err != nil {
		return "", apperr.NewParseWrap("failed to serialize fragment", err)
	}

	out := `<html><head><meta charset="UTF-8"/></head><body>` + inner + `</body></html>`
	out = whitespaceRuns.ReplaceAllString(out, " ")
	out = htmlComments.ReplaceAllString(out, "")
	return out, nil
}

// resolveURL makes a relative reference absolute by prefixing the base URL.
// Already-absolute references pass through unchanged.
func resolveURL(baseURL, ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return baseURL + ref
}

// rewriteAttributes keeps only href on links and src/alt on images,
// resolving both against the base URL, and drops every other attribute.
// Links without a target and images without a source are removed outright.
func rewriteAttributes(body *goquery.Selection, baseURL string) {
	body.Find("*").Each(func(_ int, s *goquery.Selection) {
		n := s.Nodes[0]
		switch n.Data {
		case "a":
			href, ok := s.Attr("href")
			if !ok || href == "" {
				s.Remove()
				return
			}
			n.Attr = []html.Attribute{
				{Key: "href", Val: resolveURL(baseURL, href)},
				{Key: "target", Val: "_blank"},
			}
		case "img":
			src, ok := s.Attr("src")
			if !ok || src == "" {
				s.Remove()
				return
			}
			attrs := []html.Attribute{{Key: "src", Val: resolveURL(baseURL, src)}}
			if alt, ok := s.Attr("alt"); ok && alt != "" {
				attrs = append(attrs, html.Attribute{Key: "alt", Val: alt})
			}
			n.Attr = attrs
		default:
			n.Attr = nil
		}
	})
}

// unwrapContainers removes div and span tags while keeping their children.
// Once attributes are gone these carry no meaning.
func unwrapContainers(body *goquery.Selection) {
	for {
		sel := body.Find("div, span")
		if sel.Length() == 0 {
			return
		}
		sel.Each(func(_ int, s *goquery.Selection) {
			unwrapNode(s.Nodes[0])
		})
	}
}

// unwrapNode replaces n with its children.
func unwrapNode(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
		c = next
	}
	parent.RemoveChild(n)
}

// mergeAdjacentFormatting folds sibling formatting elements of the same tag
// and attribute set into one when separated only by whitespace. Runs to a
// fixed point so chains of three or more collapse fully.
func mergeAdjacentFormatting(body *goquery.Selection) {
	for _, root := range body.Nodes {
		for mergePass(root) {
		}
	}
}

func mergePass(n *html.Node) bool {
	changed := false
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if mergePass(c) {
			changed = true
		}
		if !formattingTags[c.Data] {
			continue
		}

		var gap []*html.Node
		next := c.NextSibling
		for next != nil && next.Type == html.TextNode && strings.TrimSpace(next.Data) == "" {
			gap = append(gap, next)
			next = next.NextSibling
		}
		if next == nil || next.Type != html.ElementNode || next.Data != c.Data || !sameAttrs(c, next) {
			continue
		}

		for _, w := range gap {
			n.RemoveChild(w)
			c.AppendChild(w)
		}
		for gc := next.FirstChild; gc != nil; {
			after := gc.NextSibling
			next.RemoveChild(gc)
			c.AppendChild(gc)
			gc = after
		}
		n.RemoveChild(next)
		changed = true
	}
	return changed
}

func sameAttrs(a, b *html.Node) bool {
	if len(a.Attr) != len(b.Attr) {
		return false
	}
	attrs := make(map[string]string, len(a.Attr))
	for _, at := range a.Attr {
		attrs[at.Key] = at.Val
	}
	for _, bt := range b.Attr {
		if v, ok := attrs[bt.Key]; !ok || v != bt.Val {
			return false
		}
	}
	return true
}

// liftSingleImageTables replaces a table whose only meaningful content is
// exactly one image with that bare image. Such tables are layout artifacts
// of legacy markup, not tabular data.
func liftSingleImageTables(body *goquery.Selection) {
	body.Find("table").Each(func(_ int, t *goquery.Selection) {
		imgs := t.Find("img")
		if imgs.Length() != 1 {
			return
		}
		if strings.TrimSpace(t.Text()) != "" {
			return
		}
		structural := true
		t.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if !tableStructureTags[s.Nodes[0].Data] {
				structural = false
				return false
			}
			return true
		})
		if !structural {
			return
		}

		img := imgs.Nodes[0]
		table := t.Nodes[0]
		img.Parent.RemoveChild(img)
		table.Parent.InsertBefore(img, table)
		table.Parent.RemoveChild(table)
	})
}

// removeEmptyElements drops, bottom-up, every element with no text content
// (zero-width spaces count as nothing) and no image or line-break
// descendant.
func removeEmptyElements(body *goquery.Selection) {
	for _, root := range body.Nodes {
		for c := root.FirstChild; c != nil; {
			next := c.NextSibling
			pruneEmpty(c)
			c = next
		}
	}
}

func pruneEmpty(n *html.Node) {
	if n.Type != html.ElementNode {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		pruneEmpty(c)
		c = next
	}
	if n.Data == "img" || n.Data == "br" {
		return
	}
	if hasMediaDescendant(n) {
		return
	}
	text := strings.ReplaceAll(textContent(n), "​", "")
	if strings.TrimSpace(text) == "" {
		n.Parent.RemoveChild(n)
	}
}

func hasMediaDescendant(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "img" || c.Data == "br") {
			return true
		}
		if hasMediaDescendant(c) {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(m *html.Node) {
		if m.Type == html.TextNode {
			b.WriteString(m.Data)
		}
		for c := m.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// collapseSelfNesting unwraps elements nested directly inside an element of
// the identical tag, bottom-up, so <b><b>x</b></b> becomes <b>x</b>.
func collapseSelfNesting(body *goquery.Selection) {
	for _, root := range body.Nodes {
		collapseNested(root)
	}
}

func collapseNested(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode {
			collapseNested(c)
			if n.Type == html.ElementNode && c.Data == n.Data {
				unwrapNode(c)
				next = n.FirstChild
			}
		}
		c = next
	}
}
