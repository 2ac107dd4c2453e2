// Package domain holds the data model shared by the crawler, the cache and
// the storage collaborators: listing preview rows and fully normalized
// articles keyed by (source tag, article id).
package domain

import (
	"regexp"
	"time"

	"github.com/heritage-kr/noticehub/internal/apperr"
)

// DefaultLanguage is the language the source boards publish in.
const DefaultLanguage = "ko"

var dateFormat = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// PreviewItem is one row of a listing page: the article summary known
// before the full body is fetched.
type PreviewItem struct {
	ArticleID   int    `json:"article_id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedOn string `json:"published_on"` // YYYY-MM-DD
}

// Valid reports whether every field is present and well formed. Listing
// rows that fail this check are dropped, never stored.
func (p PreviewItem) Valid() bool {
	if p.Title == "" || p.URL == "" {
		return false
	}
	if p.ArticleID < 1 {
		return false
	}
	return dateFormat.MatchString(p.PublishedOn)
}

// LocalizedContent is one language variant of an article.
type LocalizedContent struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Article is a fully fetched, normalized notice. Content is Markdown.
// Localized carries optional language variants added by the translation
// collaborator; the natural key is (Source, ArticleID).
type Article struct {
	Source      SourceTag                   `json:"source"`
	ArticleID   int                         `json:"article_id"`
	SourceURL   string                      `json:"source_url"`
	Title       string                      `json:"title"`
	PublishedOn string                      `json:"published_on"`
	Content     string                      `json:"content"`
	Localized   map[string]LocalizedContent `json:"localized,omitempty"`
}

// NewArticle builds an Article from a preview row and its normalized body,
// enforcing the same field rules as PreviewItem plus source tag membership.
func NewArticle(source SourceTag, item PreviewItem, content string) (Article, error) {
	if !source.Valid() {
		return Article{}, apperr.NewValidationf("invalid source tag %q", source)
	}
	if item.ArticleID < 1 {
		return Article{}, apperr.NewValidationf("invalid article ID, must be a positive integer: %d", item.ArticleID)
	}
	if item.Title == "" {
		return Article{}, apperr.NewValidation("article title must not be empty")
	}
	if item.URL == "" {
		return Article{}, apperr.NewValidation("article source URL must not be empty")
	}
	if !dateFormat.MatchString(item.PublishedOn) {
		return Article{}, apperr.NewValidationf("invalid publish date, must be YYYY-MM-DD: %q", item.PublishedOn)
	}

	return Article{
		Source:      source,
		ArticleID:   item.ArticleID,
		SourceURL:   item.URL,
		Title:       item.Title,
		PublishedOn: item.PublishedOn,
		Content:     content,
	}, nil
}

// PublishedAt parses the publish date. Articles only ever carry dates that
// passed construction-time validation, so failure here means corruption.
func (a Article) PublishedAt() (time.Time, error) {
	return time.Parse("2006-01-02", a.PublishedOn)
}

// Preview projects the article back to its listing shape.
func (a Article) Preview() PreviewItem {
	return PreviewItem{
		ArticleID:   a.ArticleID,
		Title:       a.Title,
		URL:         a.SourceURL,
		PublishedOn: a.PublishedOn,
	}
}
