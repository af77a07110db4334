package barcode

import (
	"github.com/google/uuid"

	"github.com/barcodeprint/backend/internal/domain/shared"
)

// AggregateTypeBarcode identifies barcode events
const AggregateTypeBarcode = "Barcode"

// Event type constants
const (
	EventTypeBarcodeCreated = "barcode.created"
	EventTypeBarcodeRenamed = "barcode.renamed"
	EventTypeBarcodeDeleted = "barcode.deleted"
)

// BarcodeCreatedEvent is published when a barcode is generated
type BarcodeCreatedEvent struct {
	shared.BaseDomainEvent
	BarcodeID uuid.UUID `json:"barcode_id"`
	Code      string    `json:"code"`
	Title     string    `json:"title"`
}

// NewBarcodeCreatedEvent creates a new BarcodeCreatedEvent
func NewBarcodeCreatedEvent(b *Barcode) *BarcodeCreatedEvent {
	return &BarcodeCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBarcodeCreated, AggregateTypeBarcode, b.ID),
		BarcodeID:       b.ID,
		Code:            b.Code,
		Title:           b.Title,
	}
}

// BarcodeRenamedEvent is published when a title changes
type BarcodeRenamedEvent struct {
	shared.BaseDomainEvent
	BarcodeID uuid.UUID `json:"barcode_id"`
	OldTitle  string    `json:"old_title"`
	NewTitle  string    `json:"new_title"`
}

// NewBarcodeRenamedEvent creates a new BarcodeRenamedEvent
func NewBarcodeRenamedEvent(b *Barcode, oldTitle string) *BarcodeRenamedEvent {
	return &BarcodeRenamedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBarcodeRenamed, AggregateTypeBarcode, b.ID),
		BarcodeID:       b.ID,
		OldTitle:        oldTitle,
		NewTitle:        b.Title,
	}
}

// BarcodeDeletedEvent is published after a barcode is removed
type BarcodeDeletedEvent struct {
	shared.BaseDomainEvent
	BarcodeID uuid.UUID `json:"barcode_id"`
	Code      string    `json:"code"`
}

// NewBarcodeDeletedEvent creates a new BarcodeDeletedEvent
func NewBarcodeDeletedEvent(b *Barcode) *BarcodeDeletedEvent {
	return &BarcodeDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBarcodeDeleted, AggregateTypeBarcode, b.ID),
		BarcodeID:       b.ID,
		Code:            b.Code,
	}
}
