package http

import "github.com/folio-dash/folio-backend/internal/docs"

// Pages is the read side of the docs library. *docs.Library implements it.
type Pages interface {
	Page(slug string) (docs.Page, bool)
	Pages() []docs.PageInfo
}

type Handler struct {
	lib Pages
}

func New(lib Pages) *Handler {
	return &Handler{lib: lib}
}
