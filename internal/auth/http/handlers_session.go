package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/folio-dash/folio-backend/internal/auth"
)

// Session returns the principal resolved by the auth middleware.
func (h *Handler) Session(c *gin.Context) {
	p := auth.CurrentPrincipal(c)
	if p.UID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": p})
}
