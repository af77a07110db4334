package barcode

import (
	"time"

	"github.com/google/uuid"

	"github.com/barcodeprint/backend/internal/domain/barcode"
)

// Generation bounds per request
const (
	MinGenerateCount = 1
	MaxGenerateCount = 100

	// DefaultPageSize is the table page size when the client sends none
	DefaultPageSize = 10
	// MaxPageSize caps the table page size
	MaxPageSize = 100
)

// GenerateRequest asks for a batch of new codes
type GenerateRequest struct {
	Count int `json:"count" binding:"required,min=1,max=100" example:"5"`
}

// ListBarcodesRequest holds the table query: search, sort and paging
type ListBarcodesRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"10"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=title code created_at" example:"created_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc" example:"desc"`
	Search   string `form:"search" binding:"max=100"`
}

// RenameRequest changes the title of one barcode
type RenameRequest struct {
	Title string `json:"title" binding:"required,max=255" example:"Shelf A"`
}

// LookupRequest resolves a scanned code
type LookupRequest struct {
	Code string `form:"code" binding:"required,barcode_code" example:"123456789012"`
}

// BatchDeleteRequest removes several barcodes at once
type BatchDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1,max=1000"`
}

// BatchDeleteResponse reports how many of the requested rows existed
type BatchDeleteResponse struct {
	Requested int   `json:"requested"`
	Deleted   int64 `json:"deleted"`
}

// BarcodeResponse is the API view of a barcode record
type BarcodeResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code" example:"1234 5678 9012"`
	Digits    string    `json:"digits" example:"123456789012"`
	Title     string    `json:"title" example:"Title 1"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BarcodeListResponse is one page of the barcode table
type BarcodeListResponse struct {
	Items    []BarcodeResponse `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// PreviewImage is a rendered PNG of one barcode
type PreviewImage struct {
	BarcodeID uuid.UUID
	Mode      barcode.RenderMode
	PNG       []byte
}

// ToBarcodeResponse converts a domain barcode to its API view
func ToBarcodeResponse(b *barcode.Barcode) BarcodeResponse {
	return BarcodeResponse{
		ID:        b.ID,
		Code:      b.Code,
		Digits:    b.Digits(),
		Title:     b.Title,
		Version:   b.Version,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// ToBarcodeResponses converts a slice of barcodes
func ToBarcodeResponses(items []barcode.Barcode) []BarcodeResponse {
	out := make([]BarcodeResponse, len(items))
	for i := range items {
		out[i] = ToBarcodeResponse(&items[i])
	}
	return out
}
