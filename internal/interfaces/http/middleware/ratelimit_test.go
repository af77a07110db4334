package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	t.Run("bucket holds limit tokens per client", func(t *testing.T) {
		limiter := NewRateLimiter(2, time.Hour)
		t.Cleanup(limiter.Stop)

		assert.True(t, limiter.Allow("10.0.0.1"))
		assert.True(t, limiter.Allow("10.0.0.1"))
		assert.False(t, limiter.Allow("10.0.0.1"))
		assert.True(t, limiter.Allow("10.0.0.2"))
	})

	t.Run("refills over the window", func(t *testing.T) {
		limiter := NewRateLimiter(2, 50*time.Millisecond)
		t.Cleanup(limiter.Stop)

		assert.True(t, limiter.Allow("scanner"))
		assert.True(t, limiter.Allow("scanner"))
		assert.False(t, limiter.Allow("scanner"))

		time.Sleep(60 * time.Millisecond)
		assert.True(t, limiter.Allow("scanner"))
	})

	t.Run("remaining counts whole tokens", func(t *testing.T) {
		limiter := NewRateLimiter(5, time.Hour)
		t.Cleanup(limiter.Stop)

		assert.Equal(t, 5, limiter.Remaining("new"))
		limiter.Allow("new")
		limiter.Allow("new")
		assert.Equal(t, 3, limiter.Remaining("new"))
	})

	t.Run("concurrent callers share one bucket", func(t *testing.T) {
		limiter := NewRateLimiter(100, time.Hour)
		t.Cleanup(limiter.Stop)

		var allowed atomic.Int64
		var wg sync.WaitGroup
		for range 150 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Allow("batch") {
					allowed.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int64(100), allowed.Load())
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Millisecond)
		assert.NotPanics(t, func() {
			limiter.Stop()
			limiter.Stop()
		})
	})
}

func TestRateLimit_Headers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(2, time.Minute)
	t.Cleanup(limiter.Stop)

	router := gin.New()
	router.Use(RateLimit(limiter))
	router.GET("/barcodes", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	get := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/barcodes", nil)
		req.RemoteAddr = "192.168.1.100:12345"
		router.ServeHTTP(w, req)
		return w
	}

	w := get()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	get()
	w = get()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "ERR_RATE_LIMITED")
}

func TestRenderRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(1, time.Minute)
	t.Cleanup(limiter.Stop)

	router := gin.New()
	render := router.Group("/api/v1/print", RenderRateLimit(limiter))
	render.POST("/export", func(c *gin.Context) { c.Status(http.StatusCreated) })
	render.POST("/labels", func(c *gin.Context) { c.Status(http.StatusCreated) })

	post := func(path string) int {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, post("/api/v1/print/export"))
	assert.Equal(t, http.StatusTooManyRequests, post("/api/v1/print/export"))
	// labels keeps its own budget
	assert.Equal(t, http.StatusCreated, post("/api/v1/print/labels"))
	assert.Equal(t, http.StatusTooManyRequests, post("/api/v1/print/labels"))
}
