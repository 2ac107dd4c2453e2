package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/heritage-kr/noticehub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItem() domain.PreviewItem {
	return domain.PreviewItem{
		ArticleID:   42,
		Title:       "Closure notice",
		URL:         "https://jm.example/view?seq=42",
		PublishedOn: "2024-01-05",
	}
}

func TestStore_RoundTrip(t *testing.T) {
	// Arrange
	store := NewStore(t.TempDir())
	item := sampleItem()
	article, err := domain.NewArticle(domain.SourceJongmyo, item, "The palace is **closed** today.\n")
	require.NoError(t, err)

	// Act
	require.NoError(t, store.Put(article))
	got, found, err := store.Get(domain.SourceJongmyo, item)

	// Assert
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, article, got)
}

func TestStore_MissIsNotAnError(t *testing.T) {
	// Arrange
	store := NewStore(t.TempDir())

	// Act
	_, found, err := store.Get(domain.SourceJongmyo, sampleItem())

	// Assert
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_PutOverwrites(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	store := NewStore(dir)
	item := sampleItem()
	first, err := domain.NewArticle(domain.SourceJongmyo, item, "old body\n")
	require.NoError(t, err)
	second, err := domain.NewArticle(domain.SourceJongmyo, item, "new body\n")
	require.NoError(t, err)

	// Act
	require.NoError(t, store.Put(first))
	require.NoError(t, store.Put(second))

	// Assert
	got, found, err := store.Get(domain.SourceJongmyo, item)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "new body\n", got.Content)

	content, err := os.ReadFile(filepath.Join(dir, "jm", "42.md"))
	require.NoError(t, err)
	assert.Equal(t, "new body\n", string(content))
}
