package http

import "github.com/gin-gonic/gin"

// Register attaches project routes to the given router group. uploadMW guards
// the multipart routes.
func (h *Handler) Register(rg *gin.RouterGroup, uploadMW ...gin.HandlerFunc) {
	rg.GET("", h.list)
	rg.GET("/summary", h.summary)
	rg.GET("/events", h.streamEvents)
	rg.GET("/:id", h.get)
	rg.POST("", h.create)
	rg.PATCH("/:id", h.update)
	rg.DELETE("/:id", h.delete)

	rg.POST("/form", chain(uploadMW, h.createForm)...)
	rg.PUT("/:id/form", chain(uploadMW, h.updateForm)...)
}

func chain(mw []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mw)+1)
	return append(append(out, mw...), h)
}
