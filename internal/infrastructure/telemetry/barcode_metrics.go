package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when metrics are created without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// BarcodeCounter reports how many barcodes are stored. It is read on every
// metrics collection cycle.
type BarcodeCounter interface {
	CountBarcodes(ctx context.Context) (int64, error)
}

// BarcodeMetricsConfig holds configuration for BarcodeMetrics.
type BarcodeMetricsConfig struct {
	Meter   metric.Meter
	Logger  *zap.Logger
	Counter BarcodeCounter // optional; enables barcode_stored
}

// BarcodeMetrics records barcode and print job activity.
type BarcodeMetrics struct {
	logger *zap.Logger

	barcodesGenerated *Counter
	barcodesDeleted   *Counter
	jobsCreated       *Counter
	jobsFinished      *Counter
	itemsPerJob       *Histogram
	renderDuration    *Histogram
	rendersInFlight   *UpDownCounter
	registration      metric.Registration
}

// NewBarcodeMetrics creates the instruments on cfg.Meter.
func NewBarcodeMetrics(cfg BarcodeMetricsConfig) (*BarcodeMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	bm := &BarcodeMetrics{logger: logger}

	var err error
	if bm.barcodesGenerated, err = NewCounter(cfg.Meter, "barcode_generated_total", "Barcodes generated", "{barcode}"); err != nil {
		return nil, err
	}
	if bm.barcodesDeleted, err = NewCounter(cfg.Meter, "barcode_deleted_total", "Barcodes deleted", "{barcode}"); err != nil {
		return nil, err
	}
	if bm.jobsCreated, err = NewCounter(cfg.Meter, "print_job_created_total", "Print jobs created", "{job}"); err != nil {
		return nil, err
	}
	if bm.jobsFinished, err = NewCounter(cfg.Meter, "print_job_finished_total", "Print jobs finished by status", "{job}"); err != nil {
		return nil, err
	}
	if bm.itemsPerJob, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "print_job_items",
		Description: "Barcodes per print job",
		Unit:        "{barcode}",
		Boundaries:  JobSizeBuckets,
	}); err != nil {
		return nil, err
	}
	if bm.renderDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "print_job_render_duration_seconds",
		Description: "Time spent rendering a print job",
		Unit:        "s",
		Boundaries:  RenderDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if bm.rendersInFlight, err = NewUpDownCounter(cfg.Meter, "print_job_renders_in_flight", "Print jobs currently rendering", "{job}"); err != nil {
		return nil, err
	}

	if cfg.Counter != nil {
		stored, err := cfg.Meter.Int64ObservableGauge("barcode_stored",
			metric.WithDescription("Barcodes currently stored"),
			metric.WithUnit("{barcode}"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create gauge barcode_stored: %w", err)
		}
		bm.registration, err = cfg.Meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
			n, err := cfg.Counter.CountBarcodes(ctx)
			if err != nil {
				logger.Warn("failed to count barcodes for metrics", zap.Error(err))
				return nil
			}
			o.ObserveInt64(stored, n)
			return nil
		}, stored)
		if err != nil {
			return nil, fmt.Errorf("failed to register barcode_stored callback: %w", err)
		}
	}

	return bm, nil
}

// RecordGenerated counts n newly generated barcodes.
func (bm *BarcodeMetrics) RecordGenerated(ctx context.Context, n int) {
	bm.barcodesGenerated.Add(ctx, int64(n))
}

// RecordDeleted counts n deleted barcodes.
func (bm *BarcodeMetrics) RecordDeleted(ctx context.Context, n int) {
	bm.barcodesDeleted.Add(ctx, int64(n))
}

// RecordJobCreated counts a new job and its size.
func (bm *BarcodeMetrics) RecordJobCreated(ctx context.Context, kind, paper string, items int) {
	bm.jobsCreated.Inc(ctx, AttrJobKind.String(kind), AttrPaperSize.String(paper))
	bm.itemsPerJob.Record(ctx, float64(items), AttrJobKind.String(kind))
}

// RecordJobFinished counts a job reaching a terminal status.
func (bm *BarcodeMetrics) RecordJobFinished(ctx context.Context, kind, status string) {
	bm.jobsFinished.Inc(ctx, AttrJobKind.String(kind), AttrJobStatus.String(status))
}

// TrackRender marks a render as in flight and returns a func that records
// its duration and clears the in-flight mark.
func (bm *BarcodeMetrics) TrackRender(ctx context.Context, kind, renderer string) func() {
	start := time.Now()
	bm.rendersInFlight.Add(ctx, 1)
	return func() {
		bm.rendersInFlight.Add(ctx, -1)
		bm.renderDuration.RecordDuration(ctx, time.Since(start),
			AttrJobKind.String(kind), AttrRenderer.String(renderer))
	}
}

// Stop unregisters the stored-barcodes callback.
func (bm *BarcodeMetrics) Stop() {
	if bm.registration == nil {
		return
	}
	if err := bm.registration.Unregister(); err != nil {
		bm.logger.Warn("failed to unregister metrics callback", zap.Error(err))
	}
}
