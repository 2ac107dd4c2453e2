// Package listing turns a notice board's table markup into preview items.
package listing

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/heritage-kr/noticehub/internal/apperr"
	"github.com/heritage-kr/noticehub/internal/domain"
	"github.com/heritage-kr/noticehub/internal/sites"
)

const dateLayout = "2006-01-02"

// jsCallRe extracts the article id from the eGov notice onclick handler
// used by boards that link articles through a script call instead of a href.
var jsCallRe = regexp.MustCompile(`fn_egov_inqire_notice\('(\d+)'\)`)

// Parse reads every row of the board table and returns the items that
// carry a complete, valid preview. Rows that fail to parse are logged and
// dropped so one malformed notice cannot sink a whole page.
func Parse(tableHTML string, cfg *sites.Config) ([]domain.PreviewItem, error) {
	if len(cfg.Columns) == 0 {
		return nil, apperr.NewValidation("site config has no columns")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tableHTML))
	if err != nil {
		return nil, apperr.NewParseWrap("parse board table", err)
	}

	var items []domain.PreviewItem
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		item, ok := parseRow(row, cfg)
		if !ok {
			return
		}
		if !item.Valid() {
			slog.Warn("dropping incomplete listing row",
				"source", cfg.Source,
				"article_id", item.ArticleID)
			return
		}
		items = append(items, item)
	})
	return items, nil
}

// parseRow walks the row's cells in lockstep with the configured column
// schema. Header rows and rows with too few cells yield no item.
func parseRow(row *goquery.Selection, cfg *sites.Config) (domain.PreviewItem, bool) {
	cells := row.Children().FilterFunction(func(_ int, s *goquery.Selection) bool {
		return goquery.NodeName(s) == "td"
	})
	if cells.Length() < len(cfg.Columns) {
		return domain.PreviewItem{}, false
	}

	var item domain.PreviewItem
	for i, col := range cfg.Columns {
		cell := cells.Eq(i)
		switch col {
		case sites.ColumnSkip:
			// padding column, nothing to read
		case sites.ColumnArticleID:
			id, err := strconv.Atoi(strings.TrimSpace(cell.Text()))
			if err != nil {
				return domain.PreviewItem{}, false
			}
			item.ArticleID = id
		case sites.ColumnTitleURL:
			title, url, ok := parseTitleURL(cell, cfg)
			if !ok {
				return domain.PreviewItem{}, false
			}
			item.Title, item.URL = title, url
		case sites.ColumnTitleJSURL:
			title, url, ok := parseTitleJSURL(cell, cfg)
			if !ok {
				return domain.PreviewItem{}, false
			}
			item.Title, item.URL = title, url
		case sites.ColumnDate:
			day, err := dateparse.ParseAny(strings.TrimSpace(cell.Text()))
			if err != nil {
				return domain.PreviewItem{}, false
			}
			item.PublishedOn = day.Format(dateLayout)
		}
	}
	return item, true
}

func parseTitleURL(cell *goquery.Selection, cfg *sites.Config) (title, url string, ok bool) {
	anchor := cell.Find("a").First()
	href, exists := anchor.Attr("href")
	if !exists {
		return "", "", false
	}
	return strings.TrimSpace(anchor.Text()), cfg.ResolveURL(href), true
}

func parseTitleJSURL(cell *goquery.Selection, cfg *sites.Config) (title, url string, ok bool) {
	anchor := cell.Find("a").First()
	// The script call lives in href on some boards and in onclick on others.
	for _, attr := range []string{"href", "onclick"} {
		val, exists := anchor.Attr(attr)
		if !exists {
			continue
		}
		if m := jsCallRe.FindStringSubmatch(val); m != nil {
			return strings.TrimSpace(anchor.Text()), cfg.ScriptCallURL(m[1]), true
		}
	}
	return "", "", false
}
