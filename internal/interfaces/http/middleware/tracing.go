package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// MaxRequestIDLength bounds client supplied request IDs
	MaxRequestIDLength = 128
	// MaxResourceIDLength caps path identifiers copied onto spans
	MaxResourceIDLength = 64
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// TracingWithConfig starts a server span per request through otelgin.
// Span names follow "METHOD /route/pattern".
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passThrough
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// TracingAttributeInjector tags the current span with the request ID and
// the barcode or print job the route addresses. It must run after
// TracingWithConfig.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			if id := GetRequestID(c); id != "" {
				span.SetAttributes(attribute.String("request_id", id))
			}
			if attr, ok := resourceAttribute(c); ok {
				span.SetAttributes(attr)
			}
		}
		c.Next()
	}
}

func resourceAttribute(c *gin.Context) (attribute.KeyValue, bool) {
	id := c.Param("id")
	if id == "" || len(id) > MaxResourceIDLength {
		return attribute.KeyValue{}, false
	}
	route := c.FullPath()
	switch {
	case strings.Contains(route, "/print/jobs/"):
		return attribute.String("print_job.id", id), true
	case strings.Contains(route, "/barcodes/"):
		return attribute.String("barcode.id", id), true
	}
	return attribute.KeyValue{}, false
}

// SpanErrorMarker sets an error status on the span of 4xx and 5xx responses.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		status := c.Writer.Status()
		if !span.IsRecording() || status < http.StatusBadRequest {
			return
		}
		span.SetStatus(codes.Error, spanErrorDescription(status))
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}

func spanErrorDescription(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "Internal Server Error"
	case status == http.StatusNotFound:
		return "Not Found"
	default:
		return "Client Error"
	}
}
