// Package middleware provides HTTP middleware for the barcode print service.
package middleware

import (
	"time"

	"github.com/barcodeprint/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const attrStatusClass = attribute.Key("http.status_class")

// HTTPMetricsConfig selects the meter provider used by HTTPMetrics.
type HTTPMetricsConfig struct {
	MeterProvider *telemetry.MeterProvider
	Enabled       bool
}

type httpInstruments struct {
	requests *telemetry.Counter
	latency  *telemetry.Histogram
	reqSize  *telemetry.Histogram
	respSize *telemetry.Histogram
	inFlight *telemetry.UpDownCounter
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	var (
		in  httpInstruments
		err error
	)
	if in.requests, err = telemetry.NewCounter(meter,
		"http_server_request_total", "Total number of HTTP requests", "{request}"); err != nil {
		return nil, err
	}
	if in.inFlight, err = telemetry.NewUpDownCounter(meter,
		"http_server_active_requests", "Number of currently active HTTP requests", "{request}"); err != nil {
		return nil, err
	}
	if in.latency, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency in seconds",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if in.reqSize, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_size_bytes",
		Description: "HTTP request body size in bytes",
		Unit:        "By",
		Boundaries:  []float64{100, 500, 1000, 5000, 10000, 50000, 100000},
	}); err != nil {
		return nil, err
	}
	// PNG previews and PDF downloads dominate the upper buckets
	if in.respSize, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_response_size_bytes",
		Description: "HTTP response body size in bytes",
		Unit:        "By",
		Boundaries:  []float64{100, 1000, 10000, 50000, 100000, 500000, 1000000, 5000000, 20000000},
	}); err != nil {
		return nil, err
	}
	return &in, nil
}

// HTTPMetrics records request count, latency, body sizes and in-flight
// requests labelled by method and route pattern. It is a pass-through when
// metrics are disabled.
func HTTPMetrics(cfg HTTPMetricsConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.MeterProvider == nil || !cfg.MeterProvider.IsEnabled() {
		return passThrough
	}
	return httpMetricsFromMeter(cfg.MeterProvider.Meter("http.server"))
}

func passThrough(c *gin.Context) { c.Next() }

func httpMetricsFromMeter(meter metric.Meter) gin.HandlerFunc {
	in, err := newHTTPInstruments(meter)
	if err != nil {
		return passThrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		in.inFlight.Add(ctx, 1)
		c.Next()
		in.inFlight.Add(ctx, -1)

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		base := []attribute.KeyValue{
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(route),
		}

		in.requests.Inc(ctx, append(base,
			telemetry.AttrHTTPStatusCode.Int(status),
			attrStatusClass.String(statusClass(status)))...)
		in.latency.RecordDuration(ctx, time.Since(start), base...)
		if n := c.Request.ContentLength; n > 0 {
			in.reqSize.Record(ctx, float64(n), base...)
		}
		if n := c.Writer.Size(); n > 0 {
			in.respSize.Record(ctx, float64(n), base...)
		}
	}
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "other"
	}
}
