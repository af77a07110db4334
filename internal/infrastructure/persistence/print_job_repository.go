package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/barcodeprint/backend/internal/domain/printing"
	"github.com/barcodeprint/backend/internal/domain/shared"
	"github.com/barcodeprint/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPrintJobRepository stores export and print jobs in print_jobs
type GormPrintJobRepository struct {
	db *gorm.DB
}

func NewGormPrintJobRepository(db *gorm.DB) *GormPrintJobRepository {
	return &GormPrintJobRepository{db: db}
}

func (r *GormPrintJobRepository) jobs(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.PrintJobModel{})
}

func (r *GormPrintJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*printing.PrintJob, error) {
	var m models.PrintJobModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, shared.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to find print job: %w", err)
	}
	return m.ToDomain(), nil
}

// FindAll lists jobs newest first unless the filter orders otherwise
func (r *GormPrintJobRepository) FindAll(ctx context.Context, filter printing.PrintJobFilter) ([]printing.PrintJob, error) {
	query := matching(r.jobs(ctx), filter)
	if filter.Paged() {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	var rows []models.PrintJobModel
	if err := query.Order(orderBy(filter.OrderBy, filter.OrderDir, PrintJobSortFields)).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list print jobs: %w", err)
	}
	return toJobs(rows), nil
}

// Count ignores paging and ordering
func (r *GormPrintJobRepository) Count(ctx context.Context, filter printing.PrintJobFilter) (int64, error) {
	var n int64
	if err := matching(r.jobs(ctx), filter).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count print jobs: %w", err)
	}
	return n, nil
}

// FindCompletedBefore returns completed jobs that still own a stored
// document and finished before cutoff, oldest first
func (r *GormPrintJobRepository) FindCompletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]printing.PrintJob, error) {
	query := r.jobs(ctx).
		Where("status = ?", string(printing.JobStatusCompleted)).
		Where("completed_at < ?", cutoff).
		Where("output_key <> ''").
		Order("completed_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.PrintJobModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find expired print jobs: %w", err)
	}
	return toJobs(rows), nil
}

// Save upserts the job row
func (r *GormPrintJobRepository) Save(ctx context.Context, job *printing.PrintJob) error {
	if err := r.db.WithContext(ctx).Save(models.PrintJobModelFromDomain(job)).Error; err != nil {
		return fmt.Errorf("failed to save print job: %w", err)
	}
	return nil
}

func (r *GormPrintJobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.PrintJobModel{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete print job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func matching(query *gorm.DB, filter printing.PrintJobFilter) *gorm.DB {
	if filter.Kind != nil {
		query = query.Where("kind = ?", string(*filter.Kind))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	return query
}

func toJobs(rows []models.PrintJobModel) []printing.PrintJob {
	jobs := make([]printing.PrintJob, len(rows))
	for i := range rows {
		jobs[i] = *rows[i].ToDomain()
	}
	return jobs
}

var _ printing.PrintJobRepository = (*GormPrintJobRepository)(nil)
