package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestTraceMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("reuses incoming trace id", func(t *testing.T) {
		r := gin.New()
		r.Use(TraceMiddleware())

		var seen string
		r.GET("/ping", func(c *gin.Context) {
			seen = TraceID(c)
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Trace-ID", "trace-abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "trace-abc", seen)
		assert.Equal(t, "trace-abc", w.Header().Get("X-Trace-ID"))
	})

	t.Run("generates trace id when header absent", func(t *testing.T) {
		r := gin.New()
		r.Use(TraceMiddleware())

		var seen string
		r.GET("/ping", func(c *gin.Context) {
			seen = TraceID(c)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get("X-Trace-ID"))
	})

	t.Run("logger middleware shares the trace id", func(t *testing.T) {
		r := gin.New()
		r.Use(TraceMiddleware(), LoggerMiddleware())

		var seen string
		r.GET("/ping", func(c *gin.Context) {
			seen = TraceID(c)
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Trace-ID", "trace-shared")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "trace-shared", seen)
	})
}
