package event

import (
	"github.com/barcodeprint/backend/internal/domain/barcode"
	"github.com/barcodeprint/backend/internal/domain/printing"
	"github.com/barcodeprint/backend/internal/domain/shared"
)

func factory[T any, P interface {
	*T
	shared.DomainEvent
}]() func() shared.DomainEvent {
	return func() shared.DomainEvent { return P(new(T)) }
}

// RegisterAllEvents makes every barcode and print job event decodable
func RegisterAllEvents(s *EventSerializer) {
	s.Register(barcode.EventTypeBarcodeCreated, factory[barcode.BarcodeCreatedEvent]())
	s.Register(barcode.EventTypeBarcodeRenamed, factory[barcode.BarcodeRenamedEvent]())
	s.Register(barcode.EventTypeBarcodeDeleted, factory[barcode.BarcodeDeletedEvent]())
	s.Register(printing.EventTypePrintJobCreated, factory[printing.PrintJobCreatedEvent]())
	s.Register(printing.EventTypePrintJobCompleted, factory[printing.PrintJobCompletedEvent]())
	s.Register(printing.EventTypePrintJobFailed, factory[printing.PrintJobFailedEvent]())
}
