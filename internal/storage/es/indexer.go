package es

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heritage-kr/noticehub/internal/domain"
)

// Index writes one article's language variant into that language's index.
// The document id is the article's natural key, so re-indexing overwrites.
func (c *Client) Index(ctx context.Context, article domain.Article, language string) error {
	doc, err := mapToDocument(article, language)
	if err != nil {
		return err
	}

	name := c.indexName(language)
	res, err := c.es.Index(name, encodeBody(doc),
		c.es.Index.WithContext(ctx),
		c.es.Index.WithDocumentID(documentID(article.Source, article.ArticleID)),
	)
	if err != nil {
		return fmt.Errorf("failed to index article %s/%d: %w", article.Source, article.ArticleID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("indexing article %s/%d failed: %s", article.Source, article.ArticleID, res.String())
	}

	slog.Info("document indexed", "index", name, "source", article.Source, "article_id", article.ArticleID)
	return nil
}
