package printing

import (
	"time"

	"github.com/google/uuid"

	"github.com/barcodeprint/backend/internal/domain/shared"
)

// MaxJobItems bounds the number of barcodes in one export or print
const MaxJobItems = 1000

// PrintJob records one export or print of a set of barcodes.
// It moves PENDING -> RENDERING -> COMPLETED or FAILED.
type PrintJob struct {
	shared.BaseAggregateRoot
	Kind         JobKind
	PaperSize    PaperSize
	LayoutMode   LayoutMode
	BarcodeIDs   []uuid.UUID
	ItemCount    int
	PageCount    int
	Status       JobStatus
	OutputKey    string // storage key of the rendered document
	OutputURL    string
	ContentType  string
	FileName     string
	ErrorMessage string
	CompletedAt  *time.Time
}

// NewPrintJob creates a pending job for the given barcodes
func NewPrintJob(kind JobKind, paper PaperSize, mode LayoutMode, barcodeIDs []uuid.UUID) (*PrintJob, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_JOB_KIND", "Invalid job kind: "+kind.String())
	}
	if !paper.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAPER_SIZE", "Invalid paper size: "+paper.String())
	}
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_LAYOUT_MODE", "Invalid layout mode: "+mode.String())
	}
	if len(barcodeIDs) == 0 {
		return nil, shared.NewDomainError("EMPTY_JOB", "At least one barcode is required")
	}
	if len(barcodeIDs) > MaxJobItems {
		return nil, shared.NewDomainError("JOB_TOO_LARGE", "Too many barcodes in one job")
	}

	ids := make([]uuid.UUID, len(barcodeIDs))
	copy(ids, barcodeIDs)

	job := &PrintJob{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Kind:              kind,
		PaperSize:         paper,
		LayoutMode:        mode,
		BarcodeIDs:        ids,
		ItemCount:         len(ids),
		Status:            JobStatusPending,
	}
	job.AddDomainEvent(NewPrintJobCreatedEvent(job))

	return job, nil
}

// StartRendering marks the job as rendering with its computed page count
func (j *PrintJob) StartRendering(pageCount int) error {
	if !j.Status.CanTransitionTo(JobStatusRendering) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot start rendering from status: "+j.Status.String())
	}

	j.Status = JobStatusRendering
	j.PageCount = pageCount
	j.UpdatedAt = time.Now()
	j.IncrementVersion()

	return nil
}

// Complete records where the rendered document was stored
func (j *PrintJob) Complete(outputKey, outputURL, fileName, contentType string) error {
	if !j.Status.CanTransitionTo(JobStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot complete from status: "+j.Status.String())
	}
	if outputKey == "" {
		return shared.NewDomainError("INVALID_OUTPUT", "Output key cannot be empty")
	}

	now := time.Now()
	j.Status = JobStatusCompleted
	j.OutputKey = outputKey
	j.OutputURL = outputURL
	j.FileName = fileName
	j.ContentType = contentType
	j.CompletedAt = &now
	j.UpdatedAt = now
	j.IncrementVersion()

	j.AddDomainEvent(NewPrintJobCompletedEvent(j))

	return nil
}

// Fail marks the job as failed. The batch produced no output.
func (j *PrintJob) Fail(errorMessage string) error {
	if j.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot fail a job that is already in terminal status: "+j.Status.String())
	}

	now := time.Now()
	j.Status = JobStatusFailed
	j.ErrorMessage = errorMessage
	j.CompletedAt = &now
	j.UpdatedAt = now
	j.IncrementVersion()

	j.AddDomainEvent(NewPrintJobFailedEvent(j))

	return nil
}

// IsCompleted returns true if the job is completed
func (j *PrintJob) IsCompleted() bool {
	return j.Status == JobStatusCompleted
}

// IsTerminal returns true if the job is in a terminal state
func (j *PrintJob) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// HasOutput returns true if a document has been stored
func (j *PrintJob) HasOutput() bool {
	return j.OutputKey != ""
}
