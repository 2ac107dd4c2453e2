// Package crawler walks one notice board's pagination, discovers articles by
// id and retrieves normalized bodies. It is parametrized entirely by the site
// configuration; every monitored board uses the same crawler type.
package crawler

import (
	"context"
	"log/slog"
	"time"

	"github.com/heritage-kr/noticehub/internal/apperr"
	"github.com/heritage-kr/noticehub/internal/browser"
	"github.com/heritage-kr/noticehub/internal/domain"
	"github.com/heritage-kr/noticehub/internal/listing"
	"github.com/heritage-kr/noticehub/internal/normalizer"
	"github.com/heritage-kr/noticehub/internal/sites"
	"github.com/heritage-kr/noticehub/pkg/utils"
)

// maxTabPolls bounds how many times one background tab is inspected before
// its item is given up on during a batch fetch.
const maxTabPolls = 200

// pollPause is slept after a full rotation of the working set found no tab
// ready, so the poll loop does not spin the CPU flat out.
const pollPause = 50 * time.Millisecond

// Crawler binds a page session to one site configuration.
//
// Listing ids are assigned by the site and strictly decrease down the page
// and across increasing page numbers; the pagination arithmetic below
// depends on that.
type Crawler struct {
	session browser.Session
	cfg     *sites.Config

	lastID int // cached top id of page 1, 0 until first fetch
}

func New(session browser.Session, cfg *sites.Config) *Crawler {
	return &Crawler{session: session, cfg: cfg}
}

// LastArticleID returns the newest article id on the board. The first call
// fetches page 1; the result is cached for the rest of the crawl run.
func (c *Crawler) LastArticleID(ctx context.Context) (int, error) {
	if c.lastID > 0 {
		return c.lastID, nil
	}
	items, err := c.fetchPage(ctx, 1)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, apperr.NewParse("first listing page has no valid rows")
	}
	c.lastID = items[0].ArticleID
	return c.lastID, nil
}

// LastPageNumber derives the page count from the newest id and the
// configured page size.
func (c *Crawler) LastPageNumber(ctx context.Context) (int, error) {
	lastID, err := c.LastArticleID(ctx)
	if err != nil {
		return 0, err
	}
	return utils.CeilDiv(lastID, c.cfg.ArticlesPerPage), nil
}

// FetchArticleList returns the preview items of one listing page. Page
// numbers outside [1, LastPageNumber] are rejected before any navigation.
func (c *Crawler) FetchArticleList(ctx context.Context, page int) ([]domain.PreviewItem, error) {
	if page < 1 {
		return nil, apperr.NewValidationf("page number %d is out of range", page)
	}
	lastPage, err := c.LastPageNumber(ctx)
	if err != nil {
		return nil, err
	}
	if page > lastPage {
		return nil, apperr.NewValidationf("page number %d exceeds last page %d", page, lastPage)
	}
	return c.fetchPage(ctx, page)
}

// FetchArticleListRange concatenates pages start..end in page order.
// An end of 0 means the last page.
func (c *Crawler) FetchArticleListRange(ctx context.Context, start, end int) ([]domain.PreviewItem, error) {
	if start < 1 {
		return nil, apperr.NewValidationf("start page %d is out of range", start)
	}
	if end != 0 && (end < 1 || start > end) {
		return nil, apperr.NewValidationf("page range %d..%d is invalid", start, end)
	}
	lastPage, err := c.LastPageNumber(ctx)
	if err != nil {
		return nil, err
	}
	if end == 0 {
		end = lastPage
	}
	if end > lastPage {
		return nil, apperr.NewValidationf("end page %d exceeds last page %d", end, lastPage)
	}

	var items []domain.PreviewItem
	for page := start; page <= end; page++ {
		pageItems, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		items = append(items, pageItems...)
	}
	return items, nil
}

// FetchArticleUntil walks pages from 1 upward until it has seen an id at or
// below articleID, then trims so no item older than articleID remains. The
// ceiling bounds how many pages the walk may touch.
func (c *Crawler) FetchArticleUntil(ctx context.Context, articleID, ceiling int) ([]domain.PreviewItem, error) {
	if articleID < 1 {
		return nil, apperr.NewValidationf("article id %d is out of range", articleID)
	}
	if ceiling < 1 {
		return nil, apperr.NewValidationf("page ceiling %d must be positive", ceiling)
	}
	lastID, err := c.LastArticleID(ctx)
	if err != nil {
		return nil, err
	}
	if articleID > lastID {
		return nil, apperr.NewValidationf("article id %d exceeds newest id %d", articleID, lastID)
	}

	var acc []domain.PreviewItem
	for page := 1; page <= ceiling; page++ {
		pageItems, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		acc = append(acc, pageItems...)
		if reachedTarget(pageItems, articleID) {
			break
		}
	}

	kept := acc[:0]
	for _, item := range acc {
		if item.ArticleID >= articleID {
			kept = append(kept, item)
		}
	}
	return kept, nil
}

func reachedTarget(items []domain.PreviewItem, articleID int) bool {
	for _, item := range items {
		if item.ArticleID <= articleID {
			return true
		}
	}
	return false
}

// FetchArticleInRange returns exactly the items with idStart <= id <= idEnd.
// The page window is computed from id arithmetic instead of scanning, then
// the fetched superset is filtered to the exact bounds.
func (c *Crawler) FetchArticleInRange(ctx context.Context, idStart, idEnd int) ([]domain.PreviewItem, error) {
	if idStart < 1 || idEnd < 1 {
		return nil, apperr.NewValidationf("article id range %d..%d is out of range", idStart, idEnd)
	}
	if idStart > idEnd {
		return nil, apperr.NewValidationf("article id range %d..%d is inverted", idStart, idEnd)
	}
	lastID, err := c.LastArticleID(ctx)
	if err != nil {
		return nil, err
	}
	if idEnd > lastID {
		return nil, apperr.NewValidationf("article id %d exceeds newest id %d", idEnd, lastID)
	}

	per := c.cfg.ArticlesPerPage
	pageStart := (lastID-idEnd)/per + 1
	pageEnd := (lastID-idStart)/per + 1

	var items []domain.PreviewItem
	for page := pageStart; page <= pageEnd; page++ {
		pageItems, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		for _, item := range pageItems {
			if item.ArticleID >= idStart && item.ArticleID <= idEnd {
				items = append(items, item)
			}
		}
	}
	return items, nil
}

// FetchArticleBody retrieves the article container from url and returns its
// content as normalized Markdown. When loadPage is false the current tab is
// assumed to already show the article.
func (c *Crawler) FetchArticleBody(ctx context.Context, url string, loadPage bool) (string, error) {
	if loadPage {
		if err := c.session.Navigate(ctx, url); err != nil {
			return "", err
		}
	}
	if err := c.session.WaitElement(ctx, c.cfg.ArticleContainer, 0); err != nil {
		return "", err
	}
	raw, err := c.session.InnerHTML(ctx, c.cfg.ArticleContainer)
	if err != nil {
		return "", err
	}
	clean, err := normalizer.Normalize(raw, c.cfg.Domain)
	if err != nil {
		return "", err
	}
	return normalizer.ToMarkdown(clean)
}

// FetchArticle retrieves and normalizes one preview item's body and builds
// the full article under this site's source tag.
func (c *Crawler) FetchArticle(ctx context.Context, item domain.PreviewItem) (domain.Article, error) {
	body, err := c.FetchArticleBody(ctx, item.URL, true)
	if err != nil {
		return domain.Article{}, err
	}
	return domain.NewArticle(c.cfg.Source, item, body)
}

type openTab struct {
	id    browser.TabID
	item  domain.PreviewItem
	polls int
}

// FetchArticles retrieves a batch of articles through a bounded working set
// of background tabs. Tabs are busy-polled in rotation: the oldest tab whose
// article container has rendered is harvested and replaced by the next
// pending item. Per-item failures are logged and dropped; output order is
// not guaranteed to match input order.
func (c *Crawler) FetchArticles(ctx context.Context, items []domain.PreviewItem, concurrency int) ([]domain.Article, error) {
	if concurrency < 1 {
		return nil, apperr.NewValidationf("concurrency %d is out of range", concurrency)
	}
	if len(items) == 0 {
		return nil, nil
	}

	var (
		working []openTab
		next    int
	)
	openNext := func() {
		for next < len(items) {
			item := items[next]
			next++
			id, err := c.session.OpenBackgroundTab(ctx, item.URL)
			if err != nil {
				c.dropItem(item, "open tab", err)
				continue
			}
			working = append(working, openTab{id: id, item: item})
			return
		}
	}
	for range min(concurrency, len(items)) {
		openNext()
	}

	var (
		articles []domain.Article
		idle     int
	)
	for len(working) > 0 {
		if err := ctx.Err(); err != nil {
			c.closeAll(working)
			return articles, err
		}

		head := working[0]
		working = working[1:]

		if err := c.session.SwitchTab(ctx, head.id); err != nil {
			c.dropItem(head.item, "switch tab", err)
			c.closeTab(head)
			openNext()
			continue
		}
		ready, err := c.session.ElementExists(ctx, c.cfg.ArticleContainer)
		if err != nil {
			c.dropItem(head.item, "probe container", err)
			c.closeTab(head)
			openNext()
			continue
		}
		if !ready {
			head.polls++
			if head.polls >= maxTabPolls {
				c.dropItem(head.item, "wait for container", apperr.NewInteraction(c.cfg.ArticleContainer, head.polls, nil))
				c.closeTab(head)
				openNext()
				continue
			}
			working = append(working, head)
			idle++
			if idle >= len(working) {
				time.Sleep(pollPause)
				idle = 0
			}
			continue
		}
		idle = 0

		article, err := c.harvestCurrentTab(ctx, head.item)
		c.closeTab(head)
		if err != nil {
			c.dropItem(head.item, "extract article", err)
		} else {
			articles = append(articles, article)
		}
		openNext()
	}
	return articles, nil
}

// harvestCurrentTab extracts and normalizes the article already rendered in
// the current tab.
func (c *Crawler) harvestCurrentTab(ctx context.Context, item domain.PreviewItem) (domain.Article, error) {
	body, err := c.FetchArticleBody(ctx, item.URL, false)
	if err != nil {
		return domain.Article{}, err
	}
	return domain.NewArticle(c.cfg.Source, item, body)
}

func (c *Crawler) fetchPage(ctx context.Context, page int) ([]domain.PreviewItem, error) {
	url := c.cfg.PageURL(page)
	if err := c.session.Navigate(ctx, url); err != nil {
		return nil, err
	}
	if err := c.session.WaitElement(ctx, c.cfg.TableSelector, 0); err != nil {
		return nil, err
	}
	tableHTML, err := c.session.InnerHTML(ctx, c.cfg.TableSelector)
	if err != nil {
		return nil, err
	}
	return listing.Parse(tableHTML, c.cfg)
}

func (c *Crawler) dropItem(item domain.PreviewItem, stage string, err error) {
	slog.Warn("dropping article from batch",
		"source", c.cfg.Source,
		"article_id", item.ArticleID,
		"stage", stage,
		"error", err)
}

func (c *Crawler) closeTab(t openTab) {
	if err := c.session.CloseTab(context.Background(), t.id); err != nil {
		slog.Warn("closing tab failed", "source", c.cfg.Source, "article_id", t.item.ArticleID, "error", err)
	}
}

func (c *Crawler) closeAll(tabs []openTab) {
	for _, t := range tabs {
		c.closeTab(t)
	}
}
