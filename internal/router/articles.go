package router

import (
	"context"
	"net/http"
	"strconv"

	"github.com/heritage-kr/noticehub/internal/apperr"
	"github.com/heritage-kr/noticehub/internal/domain"
	"github.com/heritage-kr/noticehub/pkg/pagination"
	"github.com/labstack/echo/v4"
)

// ArticleReader is the document store read surface.
type ArticleReader interface {
	FindByKey(ctx context.Context, source domain.SourceTag, articleID int) (domain.Article, bool, error)
	FindLatest(ctx context.Context, language string, offset, limit int) ([]domain.Article, error)
}

type ArticleRouter struct {
	e      *echo.Echo
	reader ArticleReader
}

func NewArticleRouter(e *echo.Echo, reader ArticleReader) *ArticleRouter {
	return &ArticleRouter{
		e:      e,
		reader: reader,
	}
}

func (r *ArticleRouter) Bind() {
	r.e.GET("/articles", r.latestHandler)
	r.e.GET("/articles/:tag/:id", r.byKeyHandler)
}

func (r *ArticleRouter) latestHandler(c echo.Context) error {
	language := languageParam(c)

	page := &pagination.OffsetRequest{}
	if err := c.Bind(page); err != nil {
		return apperr.NewValidationWrap("invalid pagination parameters", err)
	}
	page.Normalize()

	articles, err := r.reader.FindLatest(c.Request().Context(), language, page.Offset(), page.Size)
	if err != nil {
		return err
	}

	// The store has no cheap total count; has_more is inferred from a full page.
	out := pagination.OffsetResult[domain.Article]{
		Items:   articles,
		Page:    page.Page,
		Size:    page.Size,
		HasMore: len(articles) == page.Size,
	}
	return c.JSON(http.StatusOK, out)
}

func (r *ArticleRouter) byKeyHandler(c echo.Context) error {
	source := domain.SourceTag(c.Param("tag"))
	if !source.Valid() {
		return apperr.NewValidationf("unknown source tag %q", c.Param("tag"))
	}
	articleID, err := strconv.Atoi(c.Param("id"))
	if err != nil || articleID < 1 {
		return apperr.NewValidationf("invalid article id %q", c.Param("id"))
	}

	article, found, err := r.reader.FindByKey(c.Request().Context(), source, articleID)
	if err != nil {
		return err
	}
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "article not found")
	}
	return c.JSON(http.StatusOK, article)
}
