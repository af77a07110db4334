package barcode

import (
	"context"

	"github.com/google/uuid"

	"github.com/barcodeprint/backend/internal/domain/shared"
)

// BarcodeRepository is the record store for barcodes. Store failures are
// returned as *PersistenceError; missing rows as shared.ErrNotFound.
type BarcodeRepository interface {
	// Save creates or updates a barcode
	Save(ctx context.Context, b *Barcode) error

	// SaveBatch creates all barcodes in one transaction
	SaveBatch(ctx context.Context, barcodes []*Barcode) error

	// FindByID finds a barcode by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Barcode, error)

	// FindByIDs finds the barcodes with the given IDs, in no particular order
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Barcode, error)

	// FindAll lists barcodes, newest first unless the filter orders otherwise
	FindAll(ctx context.Context, filter shared.Filter) ([]Barcode, error)

	// Count counts barcodes matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindByCode finds a barcode by its grouped code
	FindByCode(ctx context.Context, code string) (*Barcode, error)

	// ExistsByCode reports whether a barcode with the grouped code exists
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// UpdateTitle changes the title of one barcode
	UpdateTitle(ctx context.Context, id uuid.UUID, title string) error

	// Delete removes one barcode
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteMany removes all listed barcodes and returns how many existed
	DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error)
}
