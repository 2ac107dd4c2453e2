package domain

import (
	"errors"
	"testing"

	"github.com/heritage-kr/noticehub/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewItem_Valid(t *testing.T) {
	tests := []struct {
		name string
		item PreviewItem
		want bool
	}{
		{
			name: "complete item",
			item: PreviewItem{ArticleID: 42, Title: "Notice", URL: "https://example.com/x", PublishedOn: "2024-01-05"},
			want: true,
		},
		{
			name: "missing title",
			item: PreviewItem{ArticleID: 42, URL: "https://example.com/x", PublishedOn: "2024-01-05"},
			want: false,
		},
		{
			name: "missing url",
			item: PreviewItem{ArticleID: 42, Title: "Notice", PublishedOn: "2024-01-05"},
			want: false,
		},
		{
			name: "zero id",
			item: PreviewItem{ArticleID: 0, Title: "Notice", URL: "https://example.com/x", PublishedOn: "2024-01-05"},
			want: false,
		},
		{
			name: "negative id",
			item: PreviewItem{ArticleID: -3, Title: "Notice", URL: "https://example.com/x", PublishedOn: "2024-01-05"},
			want: false,
		},
		{
			name: "malformed date",
			item: PreviewItem{ArticleID: 42, Title: "Notice", URL: "https://example.com/x", PublishedOn: "05.01.2024"},
			want: false,
		},
		{
			name: "empty date",
			item: PreviewItem{ArticleID: 42, Title: "Notice", URL: "https://example.com/x"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.Valid())
		})
	}
}

func TestNewArticle(t *testing.T) {
	item := PreviewItem{ArticleID: 7, Title: "Palace closed", URL: "https://example.com/7", PublishedOn: "2024-02-01"}

	a, err := NewArticle(SourceGyeongbokgung, item, "# Palace closed\n")
	require.NoError(t, err)
	assert.Equal(t, SourceGyeongbokgung, a.Source)
	assert.Equal(t, 7, a.ArticleID)
	assert.Equal(t, "Palace closed", a.Title)
	assert.Equal(t, "# Palace closed\n", a.Content)

	at, err := a.PublishedAt()
	require.NoError(t, err)
	assert.Equal(t, 2024, at.Year())
}

func TestNewArticle_RejectsUnknownSource(t *testing.T) {
	item := PreviewItem{ArticleID: 7, Title: "t", URL: "u", PublishedOn: "2024-02-01"}

	_, err := NewArticle(SourceTag("nope"), item, "")

	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))
}

func TestNewArticle_RejectsBadDate(t *testing.T) {
	item := PreviewItem{ArticleID: 7, Title: "t", URL: "u", PublishedOn: "2024/02/01"}

	_, err := NewArticle(SourceJongmyo, item, "")

	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))
}

func TestSourceTag_Valid(t *testing.T) {
	for _, tag := range SourceTags() {
		assert.True(t, tag.Valid(), "tag %q should be valid", tag)
	}
	assert.False(t, SourceTag("").Valid())
	assert.False(t, SourceTag("dsg").Valid())
}
