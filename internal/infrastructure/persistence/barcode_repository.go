package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/barcodeprint/backend/internal/domain/barcode"
	"github.com/barcodeprint/backend/internal/domain/shared"
	"github.com/barcodeprint/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// saveBatchSize is the insert chunk size used by SaveBatch
const saveBatchSize = 100

// GormBarcodeRepository implements BarcodeRepository using GORM
type GormBarcodeRepository struct {
	db *gorm.DB
}

// NewGormBarcodeRepository creates a new GormBarcodeRepository
func NewGormBarcodeRepository(db *gorm.DB) *GormBarcodeRepository {
	return &GormBarcodeRepository{db: db}
}

// Save creates or updates a barcode
func (r *GormBarcodeRepository) Save(ctx context.Context, b *barcode.Barcode) error {
	model := models.BarcodeModelFromDomain(b)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return barcode.NewPersistenceError("save", err)
	}
	return nil
}

// SaveBatch inserts all barcodes in one transaction; either all rows are
// written or none are
func (r *GormBarcodeRepository) SaveBatch(ctx context.Context, barcodes []*barcode.Barcode) error {
	if len(barcodes) == 0 {
		return nil
	}

	rows := make([]*models.BarcodeModel, len(barcodes))
	for i, b := range barcodes {
		rows[i] = models.BarcodeModelFromDomain(b)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(rows, saveBatchSize).Error
	})
	if err != nil {
		return barcode.NewPersistenceError("save batch", err)
	}
	return nil
}

// FindByID finds a barcode by its ID
func (r *GormBarcodeRepository) FindByID(ctx context.Context, id uuid.UUID) (*barcode.Barcode, error) {
	var model models.BarcodeModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, barcode.NewPersistenceError("find by id", err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds the barcodes with the given IDs; unknown IDs are skipped
func (r *GormBarcodeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]barcode.Barcode, error) {
	if len(ids) == 0 {
		return []barcode.Barcode{}, nil
	}

	var rows []models.BarcodeModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, barcode.NewPersistenceError("find by ids", err)
	}
	return toBarcodes(rows), nil
}

// FindAll lists barcodes, newest first by default
func (r *GormBarcodeRepository) FindAll(ctx context.Context, filter shared.Filter) ([]barcode.Barcode, error) {
	var rows []models.BarcodeModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.BarcodeModel{}), filter)

	if err := query.Find(&rows).Error; err != nil {
		return nil, barcode.NewPersistenceError("find all", err)
	}
	return toBarcodes(rows), nil
}

// Count counts barcodes matching the filter's search
func (r *GormBarcodeRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&models.BarcodeModel{}), filter.Search)

	if err := query.Count(&count).Error; err != nil {
		return 0, barcode.NewPersistenceError("count", err)
	}
	return count, nil
}

// FindByCode finds a barcode by its grouped display code
func (r *GormBarcodeRepository) FindByCode(ctx context.Context, code string) (*barcode.Barcode, error) {
	var model models.BarcodeModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, barcode.NewPersistenceError("find by code", err)
	}
	return model.ToDomain(), nil
}

// ExistsByCode reports whether the grouped code is already stored
func (r *GormBarcodeRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.BarcodeModel{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, barcode.NewPersistenceError("exists by code", err)
	}
	return count > 0, nil
}

// UpdateTitle changes the title and bumps the version
func (r *GormBarcodeRepository) UpdateTitle(ctx context.Context, id uuid.UUID, title string) error {
	result := r.db.WithContext(ctx).Model(&models.BarcodeModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"title":      title,
			"updated_at": time.Now(),
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return barcode.NewPersistenceError("update title", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes one barcode
func (r *GormBarcodeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.BarcodeModel{}, "id = ?", id)
	if result.Error != nil {
		return barcode.NewPersistenceError("delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteMany removes the listed barcodes in one statement
func (r *GormBarcodeRepository) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.BarcodeModel{})
	if result.Error != nil {
		return 0, barcode.NewPersistenceError("delete many", result.Error)
	}
	return result.RowsAffected, nil
}

// applyFilter applies search, ordering and pagination
func (r *GormBarcodeRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applySearch(query, filter.Search)
	if filter.Paged() {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query.Order(orderBy(filter.OrderBy, filter.OrderDir, BarcodeSortFields))
}

// likeEscaper makes LIKE wildcards in user input match literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// applySearch matches the search text as a literal substring of the title
// (case-insensitive) and of the code with grouping spaces removed
func (r *GormBarcodeRepository) applySearch(query *gorm.DB, search string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" {
		return query
	}

	titlePattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
	codePattern := "%" + likeEscaper.Replace(barcode.Unformat(search)) + "%"
	return query.Where(`LOWER(title) LIKE ? ESCAPE '\' OR REPLACE(code, ' ', '') LIKE ? ESCAPE '\'`, titlePattern, codePattern)
}

func toBarcodes(rows []models.BarcodeModel) []barcode.Barcode {
	result := make([]barcode.Barcode, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result
}

// Ensure GormBarcodeRepository implements BarcodeRepository
var _ barcode.BarcodeRepository = (*GormBarcodeRepository)(nil)
