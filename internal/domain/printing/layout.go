package printing

import (
	"fmt"
	"math"

	"github.com/barcodeprint/backend/internal/domain/shared"
)

// Grid and label geometry, in millimeters
const (
	GridColumns = 2

	// DefaultGridMargin is the uniform margin of grid pages
	DefaultGridMargin = 10.0
	// DefaultRowHeight is the grid row height. It is a layout constant and
	// does not follow the rendered image; images are scaled into the row.
	DefaultRowHeight = 40.0
	// DefaultLabelMargin is the padding inside a single label
	DefaultLabelMargin = 1.0
)

// LayoutConfig holds the tunable layout constants
type LayoutConfig struct {
	GridMargin  float64
	RowHeight   float64
	LabelMargin float64
}

// DefaultLayoutConfig returns the standard layout constants
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		GridMargin:  DefaultGridMargin,
		RowHeight:   DefaultRowHeight,
		LabelMargin: DefaultLabelMargin,
	}
}

// GridSpec describes a multi-item page
type GridSpec struct {
	Page      PageSize
	Margin    float64
	RowHeight float64
}

// ColumnWidth is the width of one grid column
func (s GridSpec) ColumnWidth() float64 {
	return (s.Page.Width - float64(GridColumns+1)*s.Margin) / GridColumns
}

// RowsPerPage is the number of whole rows that fit on one page
func (s GridSpec) RowsPerPage() int {
	return int(math.Floor((s.Page.Height - s.Margin) / (s.RowHeight + s.Margin)))
}

// ItemsPerPage is the number of items on a full page
func (s GridSpec) ItemsPerPage() int {
	return s.RowsPerPage() * GridColumns
}

// Validate checks that at least one item fits on a page
func (s GridSpec) Validate() error {
	if s.Page.Width <= 0 || s.Page.Height <= 0 {
		return shared.NewDomainError("INVALID_LAYOUT", "Page dimensions must be positive")
	}
	if s.Margin < 0 || s.RowHeight <= 0 {
		return shared.NewDomainError("INVALID_LAYOUT", "Margin cannot be negative and row height must be positive")
	}
	if s.ColumnWidth() <= 0 {
		return shared.NewDomainError("INVALID_LAYOUT", "Margins leave no room for columns")
	}
	if s.RowsPerPage() < 1 {
		return shared.NewDomainError("INVALID_LAYOUT",
			fmt.Sprintf("Row height %gmm does not fit on a %gmm page", s.RowHeight, s.Page.Height))
	}
	return nil
}

// SingleSpec describes a one-item-per-page medium
type SingleSpec struct {
	Page   PageSize
	Margin float64
}

// Validate checks that the margin leaves a drawable area
func (s SingleSpec) Validate() error {
	if s.Margin < 0 || s.Page.Width-2*s.Margin <= 0 || s.Page.Height-2*s.Margin <= 0 {
		return shared.NewDomainError("INVALID_LAYOUT", "Margin leaves no room on the page")
	}
	return nil
}

// Layout is the computed placement of a sequence of items
type Layout struct {
	Mode         LayoutMode
	Page         PageSize
	ItemsPerPage int
	PageCount    int
	Placements   []Placement
}

// PageItems returns the placements on one page in input order
func (l Layout) PageItems(page int) []Placement {
	var items []Placement
	for _, p := range l.Placements {
		if p.PageIndex == page {
			items = append(items, p)
		}
	}
	return items
}

// GridLayout tiles n items onto a two-column grid. Item i is in column i%2,
// row (i%itemsPerPage)/2 of page i/itemsPerPage.
func GridLayout(n int, spec GridSpec) (Layout, error) {
	if err := spec.Validate(); err != nil {
		return Layout{}, err
	}

	perPage := spec.ItemsPerPage()
	colWidth := spec.ColumnWidth()
	layout := Layout{
		Mode:         LayoutModeGrid,
		Page:         spec.Page,
		ItemsPerPage: perPage,
		PageCount:    pageCount(n, perPage),
		Placements:   make([]Placement, 0, max(n, 0)),
	}

	for i := range max(n, 0) {
		col := i % GridColumns
		row := (i % perPage) / GridColumns
		layout.Placements = append(layout.Placements, Placement{
			Index:     i,
			PageIndex: i / perPage,
			X:         spec.Margin + float64(col)*(colWidth+spec.Margin),
			Y:         spec.Margin + float64(row)*(spec.RowHeight+spec.Margin),
			Width:     colWidth,
			Height:    spec.RowHeight,
		})
	}
	return layout, nil
}

// SingleItemLayout puts each item on its own page at the margin offset
func SingleItemLayout(n int, spec SingleSpec) (Layout, error) {
	if err := spec.Validate(); err != nil {
		return Layout{}, err
	}

	layout := Layout{
		Mode:         LayoutModeSingle,
		Page:         spec.Page,
		ItemsPerPage: 1,
		PageCount:    max(n, 0),
		Placements:   make([]Placement, 0, max(n, 0)),
	}
	for i := range max(n, 0) {
		layout.Placements = append(layout.Placements, Placement{
			Index:     i,
			PageIndex: i,
			X:         spec.Margin,
			Y:         spec.Margin,
			Width:     spec.Page.Width - 2*spec.Margin,
			Height:    spec.Page.Height - 2*spec.Margin,
		})
	}
	return layout, nil
}

// Plan lays out n items on paper using the requested mode
func Plan(mode LayoutMode, n int, paper PaperSize, cfg LayoutConfig) (Layout, error) {
	if !paper.IsValid() {
		return Layout{}, shared.NewDomainError("INVALID_PAPER_SIZE", "Unsupported paper size: "+paper.String())
	}

	switch mode {
	case LayoutModeGrid:
		return GridLayout(n, GridSpec{Page: paper.PageSize(), Margin: cfg.GridMargin, RowHeight: cfg.RowHeight})
	case LayoutModeSingle:
		return SingleItemLayout(n, SingleSpec{Page: paper.PageSize(), Margin: cfg.LabelMargin})
	default:
		return Layout{}, shared.NewDomainError("INVALID_LAYOUT_MODE", "Unsupported layout mode: "+mode.String())
	}
}

func pageCount(n, perPage int) int {
	if n <= 0 {
		return 0
	}
	return (n + perPage - 1) / perPage
}
