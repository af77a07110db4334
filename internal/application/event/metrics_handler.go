package event

import (
	"context"
	"fmt"

	"github.com/barcodeprint/backend/internal/domain/barcode"
	"github.com/barcodeprint/backend/internal/domain/printing"
	"github.com/barcodeprint/backend/internal/domain/shared"
)

// BusinessMetrics is the sink for barcode and print job counters
type BusinessMetrics interface {
	RecordGenerated(ctx context.Context, n int)
	RecordDeleted(ctx context.Context, n int)
	RecordJobCreated(ctx context.Context, kind, paper string, items int)
	RecordJobFinished(ctx context.Context, kind, status string)
}

// MetricsHandler turns domain events into business metrics
type MetricsHandler struct {
	metrics BusinessMetrics
}

// NewMetricsHandler creates a new MetricsHandler
func NewMetricsHandler(metrics BusinessMetrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// EventTypes returns the event types this handler is interested in
func (h *MetricsHandler) EventTypes() []string {
	return []string{
		barcode.EventTypeBarcodeCreated,
		barcode.EventTypeBarcodeDeleted,
		printing.EventTypePrintJobCreated,
		printing.EventTypePrintJobCompleted,
		printing.EventTypePrintJobFailed,
	}
}

// Handle records the event
func (h *MetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.metrics == nil {
		return nil
	}

	switch e := event.(type) {
	case *barcode.BarcodeCreatedEvent:
		h.metrics.RecordGenerated(ctx, 1)
	case *barcode.BarcodeDeletedEvent:
		h.metrics.RecordDeleted(ctx, 1)
	case *printing.PrintJobCreatedEvent:
		h.metrics.RecordJobCreated(ctx, e.Kind.String(), e.PaperSize.String(), e.ItemCount)
	case *printing.PrintJobCompletedEvent:
		h.metrics.RecordJobFinished(ctx, e.Kind.String(), printing.JobStatusCompleted.String())
	case *printing.PrintJobFailedEvent:
		h.metrics.RecordJobFinished(ctx, e.Kind.String(), printing.JobStatusFailed.String())
	default:
		return fmt.Errorf("metrics handler: unexpected event %T", event)
	}
	return nil
}

var _ shared.EventHandler = (*MetricsHandler)(nil)
