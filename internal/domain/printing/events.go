package printing

import (
	"github.com/google/uuid"

	"github.com/barcodeprint/backend/internal/domain/shared"
)

// AggregateTypePrintJob identifies print job events
const AggregateTypePrintJob = "PrintJob"

// Event type constants for PrintJob
const (
	EventTypePrintJobCreated   = "print_job.created"
	EventTypePrintJobCompleted = "print_job.completed"
	EventTypePrintJobFailed    = "print_job.failed"
)

// PrintJobCreatedEvent is published when a job is accepted
type PrintJobCreatedEvent struct {
	shared.BaseDomainEvent
	JobID     uuid.UUID `json:"job_id"`
	Kind      JobKind   `json:"kind"`
	PaperSize PaperSize `json:"paper_size"`
	ItemCount int       `json:"item_count"`
}

// NewPrintJobCreatedEvent creates a new PrintJobCreatedEvent
func NewPrintJobCreatedEvent(job *PrintJob) *PrintJobCreatedEvent {
	return &PrintJobCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePrintJobCreated, AggregateTypePrintJob, job.ID),
		JobID:           job.ID,
		Kind:            job.Kind,
		PaperSize:       job.PaperSize,
		ItemCount:       job.ItemCount,
	}
}

// PrintJobCompletedEvent is published when a document has been stored
type PrintJobCompletedEvent struct {
	shared.BaseDomainEvent
	JobID      uuid.UUID  `json:"job_id"`
	Kind       JobKind    `json:"kind"`
	LayoutMode LayoutMode `json:"layout_mode"`
	ItemCount  int        `json:"item_count"`
	PageCount  int        `json:"page_count"`
	OutputURL  string     `json:"output_url"`
	DurationMS int64      `json:"duration_ms"`
}

// NewPrintJobCompletedEvent creates a new PrintJobCompletedEvent
func NewPrintJobCompletedEvent(job *PrintJob) *PrintJobCompletedEvent {
	var duration int64
	if job.CompletedAt != nil {
		duration = job.CompletedAt.Sub(job.CreatedAt).Milliseconds()
	}
	return &PrintJobCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePrintJobCompleted, AggregateTypePrintJob, job.ID),
		JobID:           job.ID,
		Kind:            job.Kind,
		LayoutMode:      job.LayoutMode,
		ItemCount:       job.ItemCount,
		PageCount:       job.PageCount,
		OutputURL:       job.OutputURL,
		DurationMS:      duration,
	}
}

// PrintJobFailedEvent is published when rendering or storing fails
type PrintJobFailedEvent struct {
	shared.BaseDomainEvent
	JobID        uuid.UUID `json:"job_id"`
	Kind         JobKind   `json:"kind"`
	ItemCount    int       `json:"item_count"`
	ErrorMessage string    `json:"error_message"`
}

// NewPrintJobFailedEvent creates a new PrintJobFailedEvent
func NewPrintJobFailedEvent(job *PrintJob) *PrintJobFailedEvent {
	return &PrintJobFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePrintJobFailed, AggregateTypePrintJob, job.ID),
		JobID:           job.ID,
		Kind:            job.Kind,
		ItemCount:       job.ItemCount,
		ErrorMessage:    job.ErrorMessage,
	}
}
