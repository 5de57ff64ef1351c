package middleware

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-dash/folio-backend/internal/auth"
	"github.com/folio-dash/folio-backend/internal/logging"
)

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	var seenID, loggerID string
	r := gin.New()
	r.Use(RequestIDMiddleware(base))
	r.GET("/ping", func(c *gin.Context) {
		seenID = GetRequestID(c.Request.Context())
		logging.FromContext(c.Request.Context()).Info("inside")
		loggerID = c.GetString("request_id")
		c.Status(http.StatusOK)
	})

	t.Run("echoes supplied id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-Id", "abc-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get("X-Request-Id"))
		assert.Equal(t, "abc-123", seenID)
		assert.Equal(t, "abc-123", loggerID)
		assert.Contains(t, buf.String(), "msg=inside request_id=abc-123")
		assert.Contains(t, buf.String(), "msg=request request_id=abc-123 method=GET path=/ping status=200")
	})

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		rid := w.Header().Get("X-Request-Id")
		assert.Len(t, rid, 36)
		assert.Equal(t, rid, seenID)
	})
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	lim := NewRateLimiter(1, 2)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(auth.CtxFirebaseUID, c.GetHeader("X-User-Id"))
	}, lim.Middleware())
	r.POST("/upload", func(c *gin.Context) { c.Status(http.StatusCreated) })

	call := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/upload", nil)
		req.Header.Set("X-User-Id", user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusCreated, call("u1").Code)
	assert.Equal(t, http.StatusCreated, call("u1").Code)

	w := call("u1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusCreated, call("u2").Code, "buckets are per principal")
}

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	gin.SetMode(gin.TestMode)
	lim := NewRateLimiter(1, 2)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	lim.now = func() time.Time { return now }

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(auth.CtxFirebaseUID, c.GetHeader("X-User-Id"))
	}, lim.Middleware())
	r.POST("/upload", func(c *gin.Context) { c.Status(http.StatusCreated) })

	call := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/upload", nil)
		req.Header.Set("X-User-Id", user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, call("u1"))
	assert.Equal(t, http.StatusCreated, call("u1"))
	assert.Equal(t, http.StatusTooManyRequests, call("u1"))
	assert.Equal(t, http.StatusCreated, call("u2"))
	assert.Equal(t, 2, lim.size())

	now = now.Add(90 * time.Second)
	assert.Equal(t, http.StatusCreated, call("u1"), "tokens refill on the injected clock")

	now = now.Add(90 * time.Second)
	assert.Equal(t, http.StatusCreated, call("u3"))
	assert.Equal(t, 2, lim.size(), "u2 has been idle past the refill window")

	for i := 0; i < 100; i++ {
		now = now.Add(3 * time.Minute)
		call(fmt.Sprintf("caller-%d", i))
	}
	assert.LessOrEqual(t, lim.size(), 2, "one-off callers do not accumulate")
}

func TestMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/items/1", "/items/2", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/items/:id", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("unmatched", "GET", "404")))

	expected := `
# HELP folio_http_requests_total HTTP requests by route, method and status.
# TYPE folio_http_requests_total counter
folio_http_requests_total{method="GET",route="/items/:id",status="200"} 2
folio_http_requests_total{method="GET",route="unmatched",status="404"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "folio_http_requests_total"))
}
