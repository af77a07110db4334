package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CORSConfig lists what cross-origin browser clients may do
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig allows no origin. Exposed headers cover rate limit state
// and the download file name.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", RequestIDHeader, IdempotencyKeyHeader, "Accept", "Origin", "Cache-Control"},
		ExposeHeaders:    []string{RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

func CORS() gin.HandlerFunc {
	return CORSWithConfig(DefaultCORSConfig())
}

// CORSWithConfig answers every preflight with 204 and only emits CORS
// headers for an allowed origin. Credentials are never combined with "*".
func CORSWithConfig(cfg CORSConfig) gin.HandlerFunc {
	anyOrigin := slices.Contains(cfg.AllowOrigins, "*")
	static := http.Header{}
	static.Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowHeaders, ", "))
	static.Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowMethods, ", "))
	if len(cfg.ExposeHeaders) > 0 {
		static.Set("Access-Control-Expose-Headers", strings.Join(cfg.ExposeHeaders, ", "))
	}
	if cfg.MaxAge > 0 {
		static.Set("Access-Control-Max-Age", strconv.Itoa(int(cfg.MaxAge/time.Second)))
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if anyOrigin {
			origin = "*"
		}
		if origin != "" && (anyOrigin || slices.Contains(cfg.AllowOrigins, origin)) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			if cfg.AllowCredentials && !anyOrigin {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			for k, v := range static {
				h[k] = v
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
