// Package cache memoizes normalized article bodies on disk so a crawl run
// never re-fetches a notice it has already processed. One file per article,
// laid out as <dir>/<source_tag>/<id>.md.
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/heritage-kr/noticehub/internal/domain"
)

type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(source domain.SourceTag, articleID int) string {
	return filepath.Join(s.dir, string(source), strconv.Itoa(articleID)+".md")
}

// Get loads the cached article for a preview item. Absence is not an error;
// the second return reports whether the article was found.
func (s *Store) Get(source domain.SourceTag, item domain.PreviewItem) (domain.Article, bool, error) {
	content, err := os.ReadFile(s.path(source, item.ArticleID))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Article{}, false, nil
	}
	if err != nil {
		return domain.Article{}, false, fmt.Errorf("read cached article %s/%d: %w", source, item.ArticleID, err)
	}
	article, err := domain.NewArticle(source, item, string(content))
	if err != nil {
		return domain.Article{}, false, err
	}
	return article, true, nil
}

// Put writes the article body, overwriting any previous version of the key.
func (s *Store) Put(article domain.Article) error {
	dir := filepath.Join(s.dir, string(article.Source))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	path := s.path(article.Source, article.ArticleID)
	if err := os.WriteFile(path, []byte(article.Content), 0o644); err != nil {
		return fmt.Errorf("write cached article %s: %w", path, err)
	}
	return nil
}
