// Package router binds the HTTP endpoints to the storage collaborators.
package router

import (
	"context"
	"net/http"
	"strconv"

	"github.com/heritage-kr/noticehub/internal/apperr"
	"github.com/heritage-kr/noticehub/internal/domain"
	"github.com/heritage-kr/noticehub/internal/storage/es"
	"github.com/heritage-kr/noticehub/pkg/pagination"
	"github.com/labstack/echo/v4"
)

// Searcher is the search index read surface.
type Searcher interface {
	Search(ctx context.Context, query, language string, offset, limit int) (*es.SearchResult, error)
	Suggest(ctx context.Context, prefix, language string, size int) ([]string, error)
}

type SearchRouter struct {
	e        *echo.Echo
	searcher Searcher
}

func NewSearchRouter(e *echo.Echo, searcher Searcher) *SearchRouter {
	return &SearchRouter{
		e:        e,
		searcher: searcher,
	}
}

func (r *SearchRouter) Bind() {
	r.e.GET("/search", r.searchHandler)
	r.e.GET("/suggest", r.suggestHandler)
}

func (r *SearchRouter) searchHandler(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return apperr.NewValidation("query parameter is required")
	}
	language := languageParam(c)

	page := &pagination.OffsetRequest{}
	if err := c.Bind(page); err != nil {
		return apperr.NewValidationWrap("invalid pagination parameters", err)
	}
	page.Normalize()

	results, err := r.searcher.Search(c.Request().Context(), query, language, page.Offset(), page.Size)
	if err != nil {
		return err
	}

	out := pagination.NewOffsetResult(results.Hits, int64(results.Total), page.Page, page.Size)
	return c.JSON(http.StatusOK, out)
}

func (r *SearchRouter) suggestHandler(c echo.Context) error {
	prefix := c.QueryParam("prefix")
	if prefix == "" {
		return apperr.NewValidation("prefix parameter is required")
	}
	language := languageParam(c)

	size := 5
	if s := c.QueryParam("size"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed > 0 {
			size = parsed
		}
	}

	suggestions, err := r.searcher.Suggest(c.Request().Context(), prefix, language, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"suggestions": suggestions})
}

func languageParam(c echo.Context) string {
	if lang := c.QueryParam("lang"); lang != "" {
		return lang
	}
	return domain.DefaultLanguage
}
