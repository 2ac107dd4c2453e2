// Package harvest orchestrates one crawl run: discover preview items,
// consult the cache, batch-fetch the misses, polish, then hand the articles
// to the store and the search index.
package harvest

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/heritage-kr/noticehub/internal/domain"
)

// maxContentRunes caps how large a harvested body may be before the article
// is skipped entirely. Oversized notices are almost always scanned image
// dumps or pasted spreadsheets with no search value.
const maxContentRunes = 16000

// Discoverer is the crawler surface the pipeline drives.
type Discoverer interface {
	FetchArticleUntil(ctx context.Context, articleID, ceiling int) ([]domain.PreviewItem, error)
	FetchArticleInRange(ctx context.Context, idStart, idEnd int) ([]domain.PreviewItem, error)
	FetchArticles(ctx context.Context, items []domain.PreviewItem, concurrency int) ([]domain.Article, error)
}

// Cache memoizes normalized bodies between runs.
type Cache interface {
	Get(source domain.SourceTag, item domain.PreviewItem) (domain.Article, bool, error)
	Put(article domain.Article) error
}

// Storer is the document store write surface.
type Storer interface {
	Upsert(ctx context.Context, article domain.Article) error
}

// Indexer is the search index write surface.
type Indexer interface {
	Index(ctx context.Context, article domain.Article, language string) error
}

// Polisher rewrites Markdown, best effort.
type Polisher interface {
	Polish(ctx context.Context, markdown string) (string, error)
}

// Stats summarizes one pipeline run.
type Stats struct {
	Discovered int
	FromCache  int
	Fetched    int
	Skipped    int
	Stored     int
	Errors     int
}

type PipelineConfig struct {
	Source      domain.SourceTag
	Concurrency int
	Ceiling     int            // page walk bound for until-style runs
	Filter      *ContentFilter // nil means nothing is filtered
}

// Pipeline wires the crawler, the cache, the polisher and both storage
// collaborators for one source.
type Pipeline struct {
	crawler  Discoverer
	cache    Cache
	polisher Polisher
	storer   Storer
	indexer  Indexer
	config   PipelineConfig
}

func NewPipeline(crawler Discoverer, cache Cache, polisher Polisher, storer Storer, indexer Indexer, config PipelineConfig) *Pipeline {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	if config.Ceiling < 1 {
		config.Ceiling = 50
	}
	if config.Filter == nil {
		config.Filter = NewContentFilter(nil)
	}
	return &Pipeline{
		crawler:  crawler,
		cache:    cache,
		polisher: polisher,
		storer:   storer,
		indexer:  indexer,
		config:   config,
	}
}

// RunUntil harvests every article newer than or equal to articleID.
func (p *Pipeline) RunUntil(ctx context.Context, articleID int) (Stats, error) {
	items, err := p.crawler.FetchArticleUntil(ctx, articleID, p.config.Ceiling)
	if err != nil {
		return Stats{}, err
	}
	return p.run(ctx, items), nil
}

// RunRange harvests the articles with idStart <= id <= idEnd.
func (p *Pipeline) RunRange(ctx context.Context, idStart, idEnd int) (Stats, error) {
	items, err := p.crawler.FetchArticleInRange(ctx, idStart, idEnd)
	if err != nil {
		return Stats{}, err
	}
	return p.run(ctx, items), nil
}

func (p *Pipeline) run(ctx context.Context, items []domain.PreviewItem) Stats {
	runID := uuid.NewString()
	start := time.Now()
	stats := Stats{Discovered: len(items)}

	slog.Info("starting harvest run",
		"run_id", runID,
		"source", p.config.Source,
		"discovered", len(items),
		"concurrency", p.config.Concurrency)

	var (
		articles []domain.Article
		misses   []domain.PreviewItem
	)
	for _, item := range items {
		article, found, err := p.cache.Get(p.config.Source, item)
		if err != nil {
			slog.Warn("cache read failed, refetching",
				"run_id", runID, "article_id", item.ArticleID, "error", err)
		}
		if found {
			stats.FromCache++
			articles = append(articles, article)
			continue
		}
		misses = append(misses, item)
	}

	fetched, err := p.crawler.FetchArticles(ctx, misses, p.config.Concurrency)
	if err != nil {
		slog.Error("batch fetch aborted", "run_id", runID, "error", err)
		stats.Errors++
	}
	for _, article := range fetched {
		if utf8.RuneCountInString(article.Content) > maxContentRunes {
			slog.Warn("skipping oversized article",
				"run_id", runID,
				"article_id", article.ArticleID,
				"runes", utf8.RuneCountInString(article.Content))
			stats.Skipped++
			continue
		}
		if word, hit := p.config.Filter.Match(article.Content); hit {
			slog.Warn("skipping filtered article",
				"run_id", runID,
				"article_id", article.ArticleID,
				"word", word)
			stats.Skipped++
			continue
		}
		article.Content = p.polish(ctx, runID, article)
		if err := p.cache.Put(article); err != nil {
			slog.Warn("cache write failed",
				"run_id", runID, "article_id", article.ArticleID, "error", err)
		}
		stats.Fetched++
		articles = append(articles, article)
	}

	for _, article := range articles {
		if err := p.storer.Upsert(ctx, article); err != nil {
			slog.Error("store upsert failed",
				"run_id", runID, "article_id", article.ArticleID, "error", err)
			stats.Errors++
			continue
		}
		stats.Stored++
		if err := p.indexer.Index(ctx, article, domain.DefaultLanguage); err != nil {
			slog.Error("indexing failed",
				"run_id", runID, "article_id", article.ArticleID, "error", err)
			stats.Errors++
		}
	}

	slog.Info("harvest run completed",
		"run_id", runID,
		"source", p.config.Source,
		"duration", time.Since(start),
		"from_cache", stats.FromCache,
		"fetched", stats.Fetched,
		"skipped", stats.Skipped,
		"stored", stats.Stored,
		"errors", stats.Errors)
	return stats
}

// polish is best effort: on failure the unpolished body is kept.
func (p *Pipeline) polish(ctx context.Context, runID string, article domain.Article) string {
	polished, err := p.polisher.Polish(ctx, article.Content)
	if err != nil {
		slog.Warn("polishing failed, keeping raw content",
			"run_id", runID, "article_id", article.ArticleID, "error", err)
		return article.Content
	}
	return polished
}
