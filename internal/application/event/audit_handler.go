package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/barcodeprint/backend/internal/domain/barcode"
	"github.com/barcodeprint/backend/internal/domain/printing"
	"github.com/barcodeprint/backend/internal/domain/shared"
	"github.com/barcodeprint/backend/internal/infrastructure/logger"
)

// PayloadEncoder turns an event into its wire form
type PayloadEncoder interface {
	Serialize(event shared.DomainEvent) ([]byte, error)
}

// AuditLogHandler writes one structured audit entry per barcode or print
// job change
type AuditLogHandler struct {
	logger  *zap.Logger
	encoder PayloadEncoder
}

// AuditOption configures an AuditLogHandler
type AuditOption func(*AuditLogHandler)

// WithPayloadEncoder attaches the full serialized event to every entry
func WithPayloadEncoder(enc PayloadEncoder) AuditOption {
	return func(h *AuditLogHandler) {
		h.encoder = enc
	}
}

// NewAuditLogHandler creates a new AuditLogHandler
func NewAuditLogHandler(log *zap.Logger, opts ...AuditOption) *AuditLogHandler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &AuditLogHandler{logger: log.Named("audit")}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *AuditLogHandler) EventTypes() []string {
	return []string{
		barcode.EventTypeBarcodeCreated,
		barcode.EventTypeBarcodeRenamed,
		barcode.EventTypeBarcodeDeleted,
		printing.EventTypePrintJobCreated,
		printing.EventTypePrintJobCompleted,
		printing.EventTypePrintJobFailed,
	}
}

// Handle logs the event with its payload fields
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *barcode.BarcodeCreatedEvent:
		fields = append(fields, zap.String("code", e.Code), zap.String("title", e.Title))
	case *barcode.BarcodeRenamedEvent:
		fields = append(fields, zap.String("old_title", e.OldTitle), zap.String("new_title", e.NewTitle))
	case *barcode.BarcodeDeletedEvent:
		fields = append(fields, zap.String("code", e.Code))
	case *printing.PrintJobCreatedEvent:
		fields = append(fields,
			zap.String("kind", e.Kind.String()),
			zap.String("paper_size", e.PaperSize.String()),
			zap.Int("items", e.ItemCount))
	case *printing.PrintJobCompletedEvent:
		fields = append(fields,
			zap.String("kind", e.Kind.String()),
			zap.Int("items", e.ItemCount),
			zap.Int("pages", e.PageCount),
			zap.Int64("duration_ms", e.DurationMS))
	case *printing.PrintJobFailedEvent:
		fields = append(fields,
			zap.String("kind", e.Kind.String()),
			zap.Int("items", e.ItemCount),
			zap.String("error", e.ErrorMessage))
	}

	if h.encoder != nil {
		payload, err := h.encoder.Serialize(event)
		if err != nil {
			return err
		}
		fields = append(fields, zap.ByteString("payload", payload))
	}

	logger.WithLogger(ctx, h.logger).Info("audit", fields...)
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
