package http

import "github.com/gin-gonic/gin"

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.index)
	rg.GET("/:slug", h.page)
	rg.GET("/:slug/toc", h.toc)
}
