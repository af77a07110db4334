// Package telemetry wires OpenTelemetry traces, metrics and logs plus
// Pyroscope profiling for the barcode service. Every provider degrades to a
// no-op when its signal is disabled in configuration.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/barcodeprint/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// Telemetry owns every provider started for the process
type Telemetry struct {
	Tracer   *TracerProvider
	Meter    *MeterProvider
	Logs     *LoggerProvider
	Profiler *Profiler
}

// Setup starts the providers enabled in cfg. If one fails, those already
// started are shut down again.
func Setup(ctx context.Context, cfg config.TelemetryConfig, version string, logger *zap.Logger) (_ *Telemetry, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	res, err := newResource(cfg.ServiceName, version)
	if err != nil {
		return nil, err
	}

	t := &Telemetry{}
	defer func() {
		if err != nil {
			_ = t.Shutdown(ctx)
		}
	}()

	// span profiles attach to a running profiler
	if t.Profiler, err = NewProfiler(ProfilerConfig{
		Enabled:         cfg.ProfilingEnabled,
		ServerAddress:   cfg.ProfilingServerAddress,
		ApplicationName: cfg.ServiceName,
	}, logger); err != nil {
		return nil, err
	}
	if t.Tracer, err = NewTracerProvider(ctx, TracingConfig{
		Enabled:           cfg.Enabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		SamplingRatio:     cfg.SamplingRatio,
		Insecure:          cfg.Insecure,
	}, res, logger); err != nil {
		return nil, err
	}
	if cfg.SpanProfilesEnabled && t.Profiler.IsEnabled() {
		t.Tracer.EnableSpanProfiles()
	}
	if t.Meter, err = NewMeterProvider(ctx, MetricsConfig{
		Enabled:           cfg.MetricsEnabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		ExportInterval:    cfg.MetricsInterval,
		Insecure:          cfg.Insecure,
	}, res, logger); err != nil {
		return nil, err
	}
	if t.Logs, err = NewLoggerProvider(ctx, LogsConfig{
		Enabled:           cfg.LogsEnabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		Insecure:          cfg.Insecure,
	}, res, logger); err != nil {
		return nil, err
	}
	return t, nil
}

// Shutdown flushes and stops every started provider, newest first
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.Logs != nil {
		errs = append(errs, t.Logs.Shutdown(ctx))
	}
	if t.Meter != nil {
		errs = append(errs, t.Meter.Shutdown(ctx))
	}
	if t.Tracer != nil {
		errs = append(errs, t.Tracer.Shutdown(ctx))
	}
	if t.Profiler != nil {
		errs = append(errs, t.Profiler.Stop())
	}
	return errors.Join(errs...)
}

func newResource(serviceName, version string) (*resource.Resource, error) {
	if version == "" {
		version = "dev"
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
