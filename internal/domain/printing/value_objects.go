package printing

import (
	"fmt"

	"github.com/barcodeprint/backend/internal/domain/shared"
)

// PageSize is a page's physical size in millimeters
type PageSize struct {
	Width  float64 `json:"width_mm"`
	Height float64 `json:"height_mm"`
}

// NewPageSize creates a PageSize, rejecting non-positive dimensions
func NewPageSize(width, height float64) (PageSize, error) {
	if width <= 0 || height <= 0 {
		return PageSize{}, shared.NewDomainError("INVALID_PAGE_SIZE", "Page dimensions must be positive")
	}
	return PageSize{Width: width, Height: height}, nil
}

// CSS returns the value of a CSS @page size declaration
func (p PageSize) CSS() string {
	return fmt.Sprintf("%gmm %gmm", p.Width, p.Height)
}

// Placement is where one item lands: the page it is on and its rectangle in
// millimeters from the top-left corner of that page
type Placement struct {
	Index     int     `json:"index"`
	PageIndex int     `json:"page_index"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
}
