package printing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/barcodeprint/backend/internal/domain/shared"
)

// PrintJobRepository defines the interface for print job persistence
type PrintJobRepository interface {
	// FindByID finds a job by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PrintJob, error)

	// FindAll finds jobs matching the filter, newest first
	FindAll(ctx context.Context, filter PrintJobFilter) ([]PrintJob, error)

	// Count returns the total count of jobs matching the filter
	Count(ctx context.Context, filter PrintJobFilter) (int64, error)

	// FindCompletedBefore finds completed jobs with stored output older than cutoff
	FindCompletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]PrintJob, error)

	// Save saves a job (insert or update)
	Save(ctx context.Context, job *PrintJob) error

	// Delete deletes a job by ID
	Delete(ctx context.Context, id uuid.UUID) error
}

// PrintJobFilter extends the standard filter with print job criteria
type PrintJobFilter struct {
	shared.Filter
	Kind   *JobKind
	Status *JobStatus
}
