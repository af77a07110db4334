package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/zap"
)

// MetricsConfig selects the metrics collector and push interval
type MetricsConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ExportInterval    time.Duration // 60s when zero
	Insecure          bool
}

// MeterProvider pushes metrics periodically. When disabled, Meter hands out
// meters from the global no-op provider.
type MeterProvider struct {
	sdk *sdkmetric.MeterProvider
}

func NewMeterProvider(ctx context.Context, cfg MetricsConfig, res *resource.Resource, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{}
	if !cfg.Enabled {
		return mp, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	interval := cfg.ExportInterval
	if interval <= 0 {
		interval = time.Minute
	}
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create metrics exporter: %w", err)
	}

	mp.sdk = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp.sdk)

	logger.Info("metrics enabled",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("export_interval", interval))
	return mp, nil
}

func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.sdk == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.sdk.Meter(name, opts...)
}

func (mp *MeterProvider) IsEnabled() bool {
	return mp.sdk != nil
}

// Shutdown pushes the last collection, waiting at most ten seconds
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.sdk == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := mp.sdk.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown meter provider: %w", err)
	}
	return nil
}

// Counter is a monotonic int64 sum
type Counter struct{ c metric.Int64Counter }

func NewCounter(meter metric.Meter, name, description, unit string) (*Counter, error) {
	c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("counter %s: %w", name, err)
	}
	return &Counter{c}, nil
}

func (c *Counter) Add(ctx context.Context, n int64, attrs ...attribute.KeyValue) {
	c.c.Add(ctx, n, metric.WithAttributes(attrs...))
}

func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.Add(ctx, 1, attrs...)
}

// UpDownCounter tracks work in flight
type UpDownCounter struct{ c metric.Int64UpDownCounter }

func NewUpDownCounter(meter metric.Meter, name, description, unit string) (*UpDownCounter, error) {
	c, err := meter.Int64UpDownCounter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("up-down counter %s: %w", name, err)
	}
	return &UpDownCounter{c}, nil
}

func (c *UpDownCounter) Add(ctx context.Context, delta int64, attrs ...attribute.KeyValue) {
	c.c.Add(ctx, delta, metric.WithAttributes(attrs...))
}

// Histogram is a float64 distribution
type Histogram struct{ h metric.Float64Histogram }

// HistogramOpts describes a histogram; nil Boundaries keeps the SDK default
type HistogramOpts struct {
	Name        string
	Description string
	Unit        string
	Boundaries  []float64
}

func NewHistogram(meter metric.Meter, opts HistogramOpts) (*Histogram, error) {
	hopts := []metric.Float64HistogramOption{metric.WithDescription(opts.Description), metric.WithUnit(opts.Unit)}
	if len(opts.Boundaries) > 0 {
		hopts = append(hopts, metric.WithExplicitBucketBoundaries(opts.Boundaries...))
	}
	h, err := meter.Float64Histogram(opts.Name, hopts...)
	if err != nil {
		return nil, fmt.Errorf("histogram %s: %w", opts.Name, err)
	}
	return &Histogram{h}, nil
}

func (h *Histogram) Record(ctx context.Context, v float64, attrs ...attribute.KeyValue) {
	h.h.Record(ctx, v, metric.WithAttributes(attrs...))
}

// RecordDuration records d in seconds
func (h *Histogram) RecordDuration(ctx context.Context, d time.Duration, attrs ...attribute.KeyValue) {
	h.Record(ctx, d.Seconds(), attrs...)
}

var (
	AttrHTTPMethod     = attribute.Key("http.method")
	AttrHTTPStatusCode = attribute.Key("http.status_code")
	AttrHTTPRoute      = attribute.Key("http.route")

	AttrJobKind   = attribute.Key("job.kind")
	AttrJobStatus = attribute.Key("job.status")
	AttrPaperSize = attribute.Key("paper.size")
	AttrRenderer  = attribute.Key("renderer")
)

// Bucket boundaries. Durations are seconds.
var (
	HTTPDurationBuckets   = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	RenderDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60}
	JobSizeBuckets        = []float64{1, 5, 10, 20, 50, 100, 250, 500, 1000}
)
