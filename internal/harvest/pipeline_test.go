package harvest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/heritage-kr/noticehub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCrawler struct {
	items    []domain.PreviewItem
	articles map[int]domain.Article
	fetched  []int
}

func (f *fakeCrawler) FetchArticleUntil(_ context.Context, articleID, _ int) ([]domain.PreviewItem, error) {
	var out []domain.PreviewItem
	for _, item := range f.items {
		if item.ArticleID >= articleID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeCrawler) FetchArticleInRange(_ context.Context, idStart, idEnd int) ([]domain.PreviewItem, error) {
	var out []domain.PreviewItem
	for _, item := range f.items {
		if item.ArticleID >= idStart && item.ArticleID <= idEnd {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeCrawler) FetchArticles(_ context.Context, items []domain.PreviewItem, _ int) ([]domain.Article, error) {
	var out []domain.Article
	for _, item := range items {
		f.fetched = append(f.fetched, item.ArticleID)
		if a, ok := f.articles[item.ArticleID]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeCache struct {
	entries map[int]domain.Article
	puts    []int
}

func (f *fakeCache) Get(_ domain.SourceTag, item domain.PreviewItem) (domain.Article, bool, error) {
	a, ok := f.entries[item.ArticleID]
	return a, ok, nil
}

func (f *fakeCache) Put(article domain.Article) error {
	f.puts = append(f.puts, article.ArticleID)
	f.entries[article.ArticleID] = article
	return nil
}

type fakeStorer struct {
	upserts []int
	failID  int
}

func (f *fakeStorer) Upsert(_ context.Context, article domain.Article) error {
	if f.failID != 0 && article.ArticleID == f.failID {
		return errors.New("store unavailable")
	}
	f.upserts = append(f.upserts, article.ArticleID)
	return nil
}

type fakeIndexer struct {
	indexed []int
}

func (f *fakeIndexer) Index(_ context.Context, article domain.Article, _ string) error {
	f.indexed = append(f.indexed, article.ArticleID)
	return nil
}

type failingPolisher struct{}

func (failingPolisher) Polish(_ context.Context, _ string) (string, error) {
	return "", errors.New("polisher down")
}

type upperPolisher struct{}

func (upperPolisher) Polish(_ context.Context, markdown string) (string, error) {
	return strings.ToUpper(markdown), nil
}

func item(id int) domain.PreviewItem {
	return domain.PreviewItem{
		ArticleID:   id,
		Title:       fmt.Sprintf("Notice %d", id),
		URL:         fmt.Sprintf("https://jm.example/view?seq=%d", id),
		PublishedOn: "2024-01-05",
	}
}

func article(id int, content string) domain.Article {
	a, err := domain.NewArticle(domain.SourceJongmyo, item(id), content)
	if err != nil {
		panic(err)
	}
	return a
}

func newTestPipeline(crawler *fakeCrawler, cache *fakeCache, polisher Polisher, storer *fakeStorer, indexer *fakeIndexer) *Pipeline {
	return NewPipeline(crawler, cache, polisher, storer, indexer, PipelineConfig{
		Source:      domain.SourceJongmyo,
		Concurrency: 2,
	})
}

func TestRunUntil_CacheHitsAreNotRefetched(t *testing.T) {
	// Arrange: 3 discovered items, one already cached.
	crawler := &fakeCrawler{
		items: []domain.PreviewItem{item(3), item(2), item(1)},
		articles: map[int]domain.Article{
			3: article(3, "three\n"),
			2: article(2, "two\n"),
		},
	}
	cache := &fakeCache{entries: map[int]domain.Article{2: article(2, "cached two\n")}}
	storer := &fakeStorer{}
	indexer := &fakeIndexer{}
	p := newTestPipeline(crawler, cache, upperPolisher{}, storer, indexer)

	// Act
	stats, err := p.RunUntil(context.Background(), 1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Discovered)
	assert.Equal(t, 1, stats.FromCache)
	assert.Equal(t, 1, stats.Fetched, "item 1 yielded no article")
	assert.ElementsMatch(t, []int{3, 1}, crawler.fetched, "cached item must not be fetched")
	assert.ElementsMatch(t, []int{3, 2}, storer.upserts, "item 1 had no body and is dropped")
	assert.Equal(t, storer.upserts, indexer.indexed)
}

func TestRun_PolishedContentIsCachedAndStored(t *testing.T) {
	// Arrange
	crawler := &fakeCrawler{
		items:    []domain.PreviewItem{item(5)},
		articles: map[int]domain.Article{5: article(5, "hello\n")},
	}
	cache := &fakeCache{entries: map[int]domain.Article{}}
	storer := &fakeStorer{}
	p := newTestPipeline(crawler, cache, upperPolisher{}, storer, &fakeIndexer{})

	// Act
	_, err := p.RunUntil(context.Background(), 1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "HELLO\n", cache.entries[5].Content)
}

func TestRun_PolishFailureKeepsRawContent(t *testing.T) {
	// Arrange
	crawler := &fakeCrawler{
		items:    []domain.PreviewItem{item(5)},
		articles: map[int]domain.Article{5: article(5, "hello\n")},
	}
	cache := &fakeCache{entries: map[int]domain.Article{}}
	storer := &fakeStorer{}
	p := newTestPipeline(crawler, cache, failingPolisher{}, storer, &fakeIndexer{})

	// Act
	stats, err := p.RunUntil(context.Background(), 1)

	// Assert: the unpolished body still flows through cache and store.
	require.NoError(t, err)
	assert.Equal(t, "hello\n", cache.entries[5].Content)
	assert.Equal(t, []int{5}, storer.upserts)
	assert.Zero(t, stats.Errors)
}

func TestRun_OversizedArticleIsSkipped(t *testing.T) {
	// Arrange: one body over the rune cap, one under.
	crawler := &fakeCrawler{
		items: []domain.PreviewItem{item(2), item(1)},
		articles: map[int]domain.Article{
			2: article(2, strings.Repeat("가", maxContentRunes+1)),
			1: article(1, "small\n"),
		},
	}
	cache := &fakeCache{entries: map[int]domain.Article{}}
	storer := &fakeStorer{}
	p := newTestPipeline(crawler, cache, upperPolisher{}, storer, &fakeIndexer{})

	// Act
	stats, err := p.RunUntil(context.Background(), 1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, []int{1}, storer.upserts)
	assert.Equal(t, []int{1}, cache.puts, "only the small article is cached")
}

func TestRun_StoreFailureDoesNotIndex(t *testing.T) {
	// Arrange
	crawler := &fakeCrawler{
		items: []domain.PreviewItem{item(2), item(1)},
		articles: map[int]domain.Article{
			2: article(2, "two\n"),
			1: article(1, "one\n"),
		},
	}
	cache := &fakeCache{entries: map[int]domain.Article{}}
	storer := &fakeStorer{failID: 2}
	indexer := &fakeIndexer{}
	p := newTestPipeline(crawler, cache, upperPolisher{}, storer, indexer)

	// Act
	stats, err := p.RunUntil(context.Background(), 1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, []int{1}, storer.upserts)
	assert.Equal(t, []int{1}, indexer.indexed)
}

func TestRunRange_DelegatesToRangeDiscovery(t *testing.T) {
	// Arrange
	crawler := &fakeCrawler{
		items: []domain.PreviewItem{item(4), item(3), item(2), item(1)},
		articles: map[int]domain.Article{
			3: article(3, "three\n"),
			2: article(2, "two\n"),
		},
	}
	cache := &fakeCache{entries: map[int]domain.Article{}}
	storer := &fakeStorer{}
	p := newTestPipeline(crawler, cache, upperPolisher{}, storer, &fakeIndexer{})

	// Act
	stats, err := p.RunRange(context.Background(), 2, 3)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Discovered)
	assert.ElementsMatch(t, []int{3, 2}, crawler.fetched)
}
