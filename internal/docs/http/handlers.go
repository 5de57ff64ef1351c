package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/folio-dash/folio-backend/internal/docs/toc"
)

func (h *Handler) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "pages": h.lib.Pages()})
}

// page returns the rendered page, its outline and the side-panel nav with the
// ?active= heading highlighted.
func (h *Handler) page(c *gin.Context) {
	p, ok := h.lib.Page(c.Param("slug"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "page not found"})
		return
	}

	nav := toc.Render(p.Headings, c.Query("active"))

	c.JSON(http.StatusOK, gin.H{
		"ok":               true,
		"page":             p,
		"toc":              nav,
		"activeRootMargin": toc.ActiveRootMargin,
	})
}

func (h *Handler) toc(c *gin.Context) {
	p, ok := h.lib.Page(c.Param("slug"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "page not found"})
		return
	}

	nav := toc.Render(p.Headings, c.Query("active"))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(nav))
}
