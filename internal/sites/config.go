// Package sites loads the per-site crawl configuration: listing URL
// template, column schema, pagination constants and selectors. The crawler
// is fully data-driven; adding a board means adding an entry here, not a
// type.
package sites

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/heritage-kr/noticehub/internal/apperr"
	"github.com/heritage-kr/noticehub/internal/domain"
	"gopkg.in/yaml.v3"
)

// ColumnType tags how one listing-table column is interpreted.
type ColumnType string

const (
	ColumnSkip       ColumnType = ""
	ColumnArticleID  ColumnType = "article_id"
	ColumnTitleURL   ColumnType = "title_url"
	ColumnTitleJSURL ColumnType = "title_js_url"
	ColumnDate       ColumnType = "date"
)

var columnTypes = map[ColumnType]bool{
	ColumnSkip:       true,
	ColumnArticleID:  true,
	ColumnTitleURL:   true,
	ColumnTitleJSURL: true,
	ColumnDate:       true,
}

func (c ColumnType) Valid() bool {
	return columnTypes[c]
}

// Config describes one monitored notice board.
type Config struct {
	Name             string           `yaml:"name"`
	Source           domain.SourceTag `yaml:"source"`
	ListURL          string           `yaml:"listUrl"` // page number is appended
	TableSelector    string           `yaml:"tableSelector"`
	Columns          []ColumnType     `yaml:"columns"`
	ArticlesPerPage  int              `yaml:"articlesPerPage"`
	ArticleContainer string           `yaml:"articleContainer"`
	Domain           string           `yaml:"domain"` // origin used to resolve relative links
	JSURL            string           `yaml:"jsUrl"`  // path template for script-call links
}

func (c *Config) Validate() error {
	if c.Name == "" {
		return apperr.NewValidation("site name must not be empty")
	}
	if !c.Source.Valid() {
		return apperr.NewValidationf("site %s: unknown source tag %q", c.Name, c.Source)
	}
	if c.ListURL == "" || c.TableSelector == "" || c.ArticleContainer == "" || c.Domain == "" {
		return apperr.NewValidationf("site %s: listUrl, tableSelector, articleContainer and domain are required", c.Name)
	}
	if c.ArticlesPerPage < 1 {
		return apperr.NewValidationf("site %s: articlesPerPage must be greater than 0", c.Name)
	}
	if len(c.Columns) == 0 {
		return apperr.NewValidationf("site %s: column schema must not be empty", c.Name)
	}
	for _, col := range c.Columns {
		if !col.Valid() {
			return apperr.NewValidationf("site %s: invalid column type %q", c.Name, col)
		}
	}
	hasJS := false
	for _, col := range c.Columns {
		if col == ColumnTitleJSURL {
			hasJS = true
		}
	}
	if hasJS && c.JSURL == "" {
		return apperr.NewValidationf("site %s: jsUrl is required for title_js_url columns", c.Name)
	}
	return nil
}

// PageURL returns the listing URL for one page.
func (c *Config) PageURL(page int) string {
	return c.ListURL + strconv.Itoa(page)
}

// ResolveURL makes a document-relative link absolute against the site
// origin. Absolute links pass through unchanged.
func (c *Config) ResolveURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return c.Domain + href
}

// ScriptCallURL synthesizes the article URL for a script-call link from the
// extracted numeric argument.
func (c *Config) ScriptCallURL(articleID string) string {
	return c.Domain + c.JSURL + articleID
}

// Registry is the validated set of monitored sites, keyed by source tag.
type Registry struct {
	Sites []Config `yaml:"sites"`
}

// Load decodes and validates a site registry from YAML.
func Load(r io.Reader) (*Registry, error) {
	decoder := yaml.NewDecoder(r)
	var reg Registry
	if err := decoder.Decode(&reg); err != nil {
		return nil, fmt.Errorf("failed to decode site registry: %w", err)
	}
	if len(reg.Sites) == 0 {
		return nil, apperr.NewValidation("site registry is empty")
	}
	seen := map[domain.SourceTag]bool{}
	for i := range reg.Sites {
		if err := reg.Sites[i].Validate(); err != nil {
			return nil, err
		}
		if seen[reg.Sites[i].Source] {
			return nil, apperr.NewValidationf("duplicate source tag %q", reg.Sites[i].Source)
		}
		seen[reg.Sites[i].Source] = true
	}
	return &reg, nil
}

// Get looks a site up by source tag.
func (r *Registry) Get(source domain.SourceTag) (*Config, bool) {
	for i := range r.Sites {
		if r.Sites[i].Source == source {
			return &r.Sites[i], true
		}
	}
	return nil, false
}
