package es

import (
	"fmt"
	"strings"
	"time"

	"github.com/heritage-kr/noticehub/internal/apperr"
	"github.com/heritage-kr/noticehub/internal/domain"
	"github.com/heritage-kr/noticehub/internal/normalizer"
)

// Document is the indexed shape of one article in one language. The content
// field carries stripped plain text, not Markdown, so the analyzer never
// sees syntax characters.
type Document struct {
	Source      string    `json:"source"`
	ArticleID   int       `json:"article_id"`
	SourceURL   string    `json:"source_url"`
	Title       string    `json:"title"`
	PublishedOn string    `json:"published_on"`
	Content     string    `json:"content"`
	Suggest     []string  `json:"suggest"`
	IndexedAt   time.Time `json:"indexed_at"`
}

func documentID(source domain.SourceTag, articleID int) string {
	return fmt.Sprintf("%s-%d", source, articleID)
}

// mapToDocument projects the article's variant for one language. Indexing a
// language the article does not carry is a caller mistake.
func mapToDocument(article domain.Article, language string) (Document, error) {
	title, content := article.Title, article.Content
	if language != domain.DefaultLanguage {
		loc, ok := article.Localized[language]
		if !ok {
			return Document{}, apperr.NewValidationf("article %s/%d has no %s variant", article.Source, article.ArticleID, language)
		}
		title, content = loc.Title, loc.Content
	}

	return Document{
		Source:      string(article.Source),
		ArticleID:   article.ArticleID,
		SourceURL:   article.SourceURL,
		Title:       title,
		PublishedOn: article.PublishedOn,
		Content:     strings.TrimSpace(normalizer.StripMarkdown(content)),
		Suggest:     []string{title},
		IndexedAt:   time.Now(),
	}, nil
}
