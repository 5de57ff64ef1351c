package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/folio-dash/folio-backend/internal/auth"
	"github.com/folio-dash/folio-backend/internal/logging"
	"github.com/folio-dash/folio-backend/internal/projects/domain"
	"github.com/folio-dash/folio-backend/internal/projects/form"
)

// A form may carry this many maximum-size images, plus room for the payload
// and multipart framing, before the body is cut off.
const (
	formImageAllowance = 10
	formOverhead       = 64 << 10
)

// createForm accepts multipart/form-data with a JSON "payload" field and any
// number of "images" files.
func (h *Handler) createForm(c *gin.Context) {
	uid := auth.UserFirebaseUID(c)
	if uid == "" {
		writeError(c, domain.ErrUnauthorized)
		return
	}

	d := form.NewDraft()
	warnings, uploaded, ok := h.prepare(c, d)
	if !ok {
		return
	}

	p, err := h.svc.Create(c.Request.Context(), uid, d.Insert())
	if err != nil {
		logOrphans(c, uploaded)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p, "warnings": warnings})
}

func (h *Handler) updateForm(c *gin.Context) {
	uid := auth.UserFirebaseUID(c)
	if uid == "" {
		writeError(c, domain.ErrUnauthorized)
		return
	}

	existing, err := h.svc.Get(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if existing == nil {
		writeError(c, domain.ErrNoRowMatched)
		return
	}

	d := form.DraftFrom(*existing)
	warnings, uploaded, ok := h.prepare(c, d)
	if !ok {
		return
	}

	p, err := h.svc.Update(c.Request.Context(), uid, existing.ID, d.Update())
	if err != nil {
		logOrphans(c, uploaded)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p, "warnings": warnings})
}

// prepare applies the payload to d, stages the images and uploads them. It
// writes the response itself and returns false when the request must stop.
func (h *Handler) prepare(c *gin.Context, d *form.Draft) ([]form.Rejection, []string, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.formLimit())
	mf, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": "form is too large"})
			return nil, nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "expected multipart form"})
		return nil, nil, false
	}

	var payload form.Payload
	if raw := mf.Value["payload"]; len(raw) > 0 && raw[0] != "" {
		if err := json.Unmarshal([]byte(raw[0]), &payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid payload"})
			return nil, nil, false
		}
	}
	if err := d.Apply(payload); err != nil {
		writeError(c, err)
		return nil, nil, false
	}

	d.Limit = h.maxUpload
	files := make([]form.File, 0, len(mf.File["images"]))
	for _, fh := range mf.File["images"] {
		files = append(files, form.FromMultipart(fh))
	}
	warnings := d.Stage(files...)
	d.Skip(payload.SkipImages)
	if warnings == nil {
		warnings = []form.Rejection{}
	}

	if len(d.Staged()) == 0 {
		return warnings, nil, true
	}
	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "image uploads are not configured"})
		return nil, nil, false
	}

	uploaded, err := d.Submit(c.Request.Context(), h.uploader)
	if err != nil {
		logging.Operation(c.Request.Context(), "projects.upload").Error("image upload failed", "error", err)
		logOrphans(c, uploaded)
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": "image upload failed"})
		return nil, nil, false
	}
	return warnings, uploaded, true
}

func (h *Handler) formLimit() int64 {
	limit := h.maxUpload
	if limit <= 0 {
		limit = form.MaxImageSize
	}
	return limit*formImageAllowance + formOverhead
}

// logOrphans records uploaded objects that no saved project points at. There
// is no compensating delete; they stay in the bucket.
func logOrphans(c *gin.Context, urls []string) {
	if len(urls) == 0 {
		return
	}
	logging.Operation(c.Request.Context(), "projects.upload").
		Warn("uploaded images left unreferenced", "urls", urls)
}
