package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/folio-dash/folio-backend/internal/auth"
	"github.com/folio-dash/folio-backend/internal/logging"
	"github.com/folio-dash/folio-backend/internal/projects/domain"
)

// streamEvents pushes an "invalidate" event whenever one of the caller's
// projects changes, using Server-Sent Events (SSE).
func (h *Handler) streamEvents(c *gin.Context) {
	uid := auth.UserFirebaseUID(c)
	if uid == "" {
		writeError(c, domain.ErrUnauthorized)
		return
	}
	if h.events == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "live updates are not configured"})
		return
	}

	ctx := c.Request.Context()
	sub, err := h.events.Subscribe(ctx, uid)
	if err != nil {
		logging.Operation(ctx, "projects.events").Error("subscribe failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to subscribe"})
		return
	}
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}

	fmt.Fprint(c.Writer, "event: ready\ndata: {}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			data, _ := json.Marshal(ev)
			fmt.Fprintf(c.Writer, "event: invalidate\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
