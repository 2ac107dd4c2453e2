package sites

import (
	"errors"
	"strings"
	"testing"

	"github.com/heritage-kr/noticehub/internal/apperr"
	"github.com/heritage-kr/noticehub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validRegistry = `
sites:
  - name: Gyeongbokgung notices
    source: gbg
    listUrl: "https://www.royalpalace.go.kr/content/board/list.asp?page="
    tableSelector: "table.board_list"
    columns: ["article_id", "title_url", "", "date"]
    articlesPerPage: 10
    articleContainer: "div.board_view"
    domain: "https://www.royalpalace.go.kr"
  - name: Jongmyo notices
    source: jm
    listUrl: "https://jm.cha.go.kr/agapp/public/html/HtmlPage.do?page="
    tableSelector: "table.tbl_list"
    columns: ["article_id", "title_js_url", "date"]
    articlesPerPage: 15
    articleContainer: "div.bbs_content"
    domain: "https://jm.cha.go.kr"
    jsUrl: "/notice/view.do?id="
`

func TestLoad(t *testing.T) {
	reg, err := Load(strings.NewReader(validRegistry))

	require.NoError(t, err)
	require.Len(t, reg.Sites, 2)

	gbg, ok := reg.Get(domain.SourceGyeongbokgung)
	require.True(t, ok)
	assert.Equal(t, 10, gbg.ArticlesPerPage)
	assert.Equal(t, []ColumnType{ColumnArticleID, ColumnTitleURL, ColumnSkip, ColumnDate}, gbg.Columns)

	_, ok = reg.Get(domain.SourceChangdeokgung)
	assert.False(t, ok)
}

func TestLoad_InvalidColumnType(t *testing.T) {
	bad := strings.Replace(validRegistry, `"title_url"`, `"title_href"`, 1)

	_, err := Load(strings.NewReader(bad))

	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Message, "title_href")
}

func TestLoad_MissingJSURLForScriptColumn(t *testing.T) {
	bad := strings.Replace(validRegistry, `    jsUrl: "/notice/view.do?id="`, "", 1)

	_, err := Load(strings.NewReader(bad))

	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))
}

func TestLoad_UnknownSourceTag(t *testing.T) {
	bad := strings.Replace(validRegistry, "source: jm", "source: xyz", 1)

	_, err := Load(strings.NewReader(bad))

	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))
}

func TestConfig_URLHelpers(t *testing.T) {
	cfg := &Config{
		ListURL: "https://example.com/board/list.do?page=",
		Domain:  "https://example.com",
		JSURL:   "/board/view.do?id=",
	}

	assert.Equal(t, "https://example.com/board/list.do?page=3", cfg.PageURL(3))
	assert.Equal(t, "https://example.com/img/a.png", cfg.ResolveURL("/img/a.png"))
	assert.Equal(t, "https://other.com/x", cfg.ResolveURL("https://other.com/x"))
	assert.Equal(t, "https://example.com/board/view.do?id=42", cfg.ScriptCallURL("42"))
}
