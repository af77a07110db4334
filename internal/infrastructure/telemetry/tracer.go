package telemetry

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// TracingConfig selects where spans go and how many are kept
type TracingConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	Insecure          bool
}

// TracerProvider owns the span exporter. When tracing is disabled it holds
// nothing and the global no-op provider stays installed.
type TracerProvider struct {
	sdk      *sdktrace.TracerProvider
	logger   *zap.Logger
	profiled atomic.Bool
}

// NewTracerProvider exports spans over OTLP/gRPC and installs the provider
// and W3C propagators globally.
func NewTracerProvider(ctx context.Context, cfg TracingConfig, res *resource.Resource, logger *zap.Logger) (*TracerProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tp := &TracerProvider{logger: logger}
	if !cfg.Enabled {
		return tp, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	tp.sdk = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(cfg.SamplingRatio)),
	)
	otel.SetTracerProvider(tp.sdk)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	logger.Info("tracing enabled",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Float64("sampling_ratio", cfg.SamplingRatio))
	return tp, nil
}

// samplerFor follows the caller's sampling decision when there is one
func samplerFor(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case ratio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// EnableSpanProfiles tags CPU samples with the active span id. It reports
// whether the wrapper was installed; the Pyroscope profiler must be running.
func (tp *TracerProvider) EnableSpanProfiles() bool {
	if tp.sdk == nil || !tp.profiled.CompareAndSwap(false, true) {
		return false
	}
	otel.SetTracerProvider(otelpyroscope.NewTracerProvider(tp.sdk))
	tp.logger.Info("span profiles enabled")
	return true
}

func (tp *TracerProvider) IsEnabled() bool {
	return tp.sdk != nil
}

// Shutdown flushes buffered spans, waiting at most ten seconds
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.sdk == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := tp.sdk.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown tracer provider: %w", err)
	}
	return nil
}
