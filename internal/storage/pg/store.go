package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/heritage-kr/noticehub/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dateLayout = "2006-01-02"

type Store struct {
	db *pgxpool.Pool
}

func NewStore(pool *ConnectionPool) *Store {
	return &Store{db: pool.conn}
}

// Upsert writes an article under its natural key. Re-harvesting the same
// notice overwrites the previous row, last write wins.
func (s *Store) Upsert(ctx context.Context, article domain.Article) error {
	localizedJSON, err := json.Marshal(article.Localized)
	if err != nil {
		return fmt.Errorf("failed to marshal localized content: %w", err)
	}

	cmd := `
        INSERT INTO articles (source, article_id, source_url, title, published_on, content, localized, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, now())
        ON CONFLICT (source, article_id) DO UPDATE SET
            source_url   = EXCLUDED.source_url,
            title        = EXCLUDED.title,
            published_on = EXCLUDED.published_on,
            content      = EXCLUDED.content,
            localized    = EXCLUDED.localized,
            updated_at   = now();
    `
	_, err = s.db.Exec(ctx, cmd,
		string(article.Source),
		article.ArticleID,
		article.SourceURL,
		article.Title,
		article.PublishedOn,
		article.Content,
		localizedJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert article %s/%d: %w", article.Source, article.ArticleID, err)
	}
	return nil
}

// FindByKey looks an article up by its natural key. The second return
// reports presence; a missing row is not an error.
func (s *Store) FindByKey(ctx context.Context, source domain.SourceTag, articleID int) (domain.Article, bool, error) {
	query := `
        SELECT source, article_id, source_url, title, published_on, content, localized
        FROM articles
        WHERE source = $1 AND article_id = $2;
    `
	article, err := s.scanArticle(s.db.QueryRow(ctx, query, string(source), articleID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Article{}, false, nil
	}
	if err != nil {
		return domain.Article{}, false, fmt.Errorf("failed to find article %s/%d: %w", source, articleID, err)
	}
	return article, true, nil
}

// FindLatest pages through articles newest first. For languages other than
// the source language only articles carrying that variant are returned.
func (s *Store) FindLatest(ctx context.Context, language string, offset, limit int) ([]domain.Article, error) {
	var (
		query string
		args  []interface{}
	)
	if language == "" || language == domain.DefaultLanguage {
		query = `
            SELECT source, article_id, source_url, title, published_on, content, localized
            FROM articles
            ORDER BY published_on DESC, article_id DESC
            OFFSET $1 LIMIT $2;
        `
		args = []interface{}{offset, limit}
	} else {
		query = `
            SELECT source, article_id, source_url, title, published_on, content, localized
            FROM articles
            WHERE localized ? $1
            ORDER BY published_on DESC, article_id DESC
            OFFSET $2 LIMIT $3;
        `
		args = []interface{}{language, offset, limit}
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		article, err := s.scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}
	return articles, nil
}

// AddLanguage attaches one language variant to an existing article, merging
// into the localized jsonb map.
func (s *Store) AddLanguage(ctx context.Context, source domain.SourceTag, articleID int, language string, content domain.LocalizedContent) error {
	variantJSON, err := json.Marshal(map[string]domain.LocalizedContent{language: content})
	if err != nil {
		return fmt.Errorf("failed to marshal language variant: %w", err)
	}

	cmd := `
        UPDATE articles
        SET localized  = coalesce(localized, '{}'::jsonb) || $3::jsonb,
            updated_at = now()
        WHERE source = $1 AND article_id = $2;
    `
	tag, err := s.db.Exec(ctx, cmd, string(source), articleID, variantJSON)
	if err != nil {
		return fmt.Errorf("failed to add %s variant to article %s/%d: %w", language, source, articleID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("article %s/%d does not exist", source, articleID)
	}
	return nil
}

func (s *Store) scanArticle(row pgx.Row) (domain.Article, error) {
	var (
		article       domain.Article
		source        string
		publishedOn   time.Time
		localizedJSON []byte
	)
	err := row.Scan(
		&source,
		&article.ArticleID,
		&article.SourceURL,
		&article.Title,
		&publishedOn,
		&article.Content,
		&localizedJSON,
	)
	if err != nil {
		return domain.Article{}, err
	}
	article.Source = domain.SourceTag(source)
	article.PublishedOn = publishedOn.Format(dateLayout)
	if len(localizedJSON) > 0 && string(localizedJSON) != "null" {
		if err := json.Unmarshal(localizedJSON, &article.Localized); err != nil {
			return domain.Article{}, fmt.Errorf("failed to unmarshal localized content: %w", err)
		}
	}
	return article, nil
}
