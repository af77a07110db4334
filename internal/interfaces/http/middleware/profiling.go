package middleware

import (
	"context"
	"strings"

	"github.com/barcodeprint/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// profilingSkipPrefixes never carry labels
var profilingSkipPrefixes = []string{"/health", "/swagger", "/api/v1/system"}

// Profiling tags CPU and heap samples taken while a request runs with its
// method, route pattern and controller (the first resource segment after
// /api/vN), so Pyroscope can split PNG previews from PDF renders.
func Profiling(skipPrefixes ...string) gin.HandlerFunc {
	skip := append(append([]string{}, profilingSkipPrefixes...), skipPrefixes...)

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || hasAnyPrefix(c.Request.URL.Path, skip) {
			c.Next()
			return
		}

		labels := map[string]string{
			telemetry.ProfilingLabelMethod: c.Request.Method,
			telemetry.ProfilingLabelRoute:  route,
		}
		if controller := routeController(route); controller != "" {
			labels[telemetry.ProfilingLabelController] = controller
		}

		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// routeController returns "barcodes" for /api/v1/barcodes/:id/image and
// "print" for /api/v1/print/jobs/:id.
func routeController(route string) string {
	for _, part := range strings.Split(route, "/") {
		switch {
		case part == "", part == "api", isVersionSegment(part):
		case strings.HasPrefix(part, ":"), strings.HasPrefix(part, "*"):
		default:
			return part
		}
	}
	return ""
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || (s[0] != 'v' && s[0] != 'V') {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
