package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-dash/folio-backend/internal/docs"
	"github.com/folio-dash/folio-backend/internal/docs/toc"
)

type fakePages map[string]docs.Page

func (f fakePages) Page(slug string) (docs.Page, bool) {
	p, ok := f[slug]
	return p, ok
}

func (f fakePages) Pages() []docs.PageInfo {
	out := make([]docs.PageInfo, 0, len(f))
	for _, p := range f {
		out = append(out, docs.PageInfo{Slug: p.Slug, Title: p.Title, Order: p.Order})
	}
	return out
}

func newRouter(pages fakePages) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(pages).Register(r.Group("/docs"))
	return r
}

var guide = docs.Page{
	Slug:  "guide",
	Title: "Guide",
	HTML:  `<h1 id="intro">Intro</h1><h2 id="setup">Setup</h2>`,
	Headings: []toc.Heading{
		{ID: "intro", Text: "Intro", Level: 1},
		{ID: "setup", Text: "Setup", Level: 2},
	},
}

func TestIndex(t *testing.T) {
	r := newRouter(fakePages{"guide": guide})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		OK    bool            `json:"ok"`
		Pages []docs.PageInfo `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.Equal(t, []docs.PageInfo{{Slug: "guide", Title: "Guide"}}, body.Pages)
}

func TestPage(t *testing.T) {
	r := newRouter(fakePages{"guide": guide})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/guide?active=setup", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		OK               bool      `json:"ok"`
		Page             docs.Page `json:"page"`
		TOC              string    `json:"toc"`
		ActiveRootMargin string    `json:"activeRootMargin"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.Equal(t, guide, body.Page)
	assert.Equal(t, toc.Render(guide.Headings, "setup"), body.TOC)
	assert.Equal(t, "-100px 0px -66% 0px", body.ActiveRootMargin)
}

func TestPage_NotFound(t *testing.T) {
	r := newRouter(fakePages{})
	for _, path := range []string{"/docs/missing", "/docs/missing/toc"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Contains(t, w.Body.String(), "page not found")
	}
}

func TestTOC(t *testing.T) {
	r := newRouter(fakePages{"guide": guide})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/guide/toc?active=intro", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, toc.Render(guide.Headings, "intro"), w.Body.String())
	assert.Contains(t, w.Body.String(), `href="#intro"`)
}
