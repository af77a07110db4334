package printing

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/barcodeprint/backend/internal/domain/barcode"
)

var titleCaser = cases.Title(language.English)

func displayName(s string) string {
	return titleCaser.String(strings.ToLower(strings.ReplaceAll(s, "_", " ")))
}

// PaperSize represents the physical medium a document is laid out on
type PaperSize string

const (
	PaperSizeA4         PaperSize = "A4"          // 210mm x 297mm sheet
	PaperSizeLabel40x20 PaperSize = "LABEL_40X20" // 40mm x 20mm thermal label
	PaperSizeLabel20x10 PaperSize = "LABEL_20X10" // 20mm x 10mm thermal label
)

// IsValid checks if the PaperSize is a valid value
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperSizeA4, PaperSizeLabel40x20, PaperSizeLabel20x10:
		return true
	}
	return false
}

// String returns the string representation of PaperSize
func (p PaperSize) String() string {
	return string(p)
}

// DisplayName returns a human readable name
func (p PaperSize) DisplayName() string {
	switch p {
	case PaperSizeA4:
		return "A4"
	case PaperSizeLabel40x20:
		return "Label 40 x 20 mm"
	case PaperSizeLabel20x10:
		return "Label 20 x 10 mm"
	default:
		return string(p)
	}
}

// Dimensions returns the page dimensions in millimeters (width, height)
func (p PaperSize) Dimensions() (width, height float64) {
	switch p {
	case PaperSizeLabel40x20:
		return 40, 20
	case PaperSizeLabel20x10:
		return 20, 10
	default:
		return 210, 297
	}
}

// PageSize returns the dimensions as a value object
func (p PaperSize) PageSize() PageSize {
	w, h := p.Dimensions()
	return PageSize{Width: w, Height: h}
}

// IsLabel returns true for thermal label stock
func (p PaperSize) IsLabel() bool {
	return p == PaperSizeLabel40x20 || p == PaperSizeLabel20x10
}

// DefaultLayoutMode returns the layout normally used on this medium
func (p PaperSize) DefaultLayoutMode() LayoutMode {
	if p.IsLabel() {
		return LayoutModeSingle
	}
	return LayoutModeGrid
}

// PaperSizeForLabel maps the label size chosen in settings to a paper size
func PaperSizeForLabel(size barcode.LabelSize) (PaperSize, bool) {
	switch size {
	case barcode.LabelSize40mm:
		return PaperSizeLabel40x20, true
	case barcode.LabelSize20mm:
		return PaperSizeLabel20x10, true
	}
	return "", false
}

// AllPaperSizes returns all valid PaperSize values
func AllPaperSizes() []PaperSize {
	return []PaperSize{PaperSizeA4, PaperSizeLabel40x20, PaperSizeLabel20x10}
}

// LayoutMode selects how items are tiled onto pages
type LayoutMode string

const (
	LayoutModeGrid   LayoutMode = "GRID"   // two-column grid, many items per page
	LayoutModeSingle LayoutMode = "SINGLE" // one item per page
)

// IsValid checks if the LayoutMode is a valid value
func (m LayoutMode) IsValid() bool {
	return m == LayoutModeGrid || m == LayoutModeSingle
}

// String returns the string representation of LayoutMode
func (m LayoutMode) String() string {
	return string(m)
}

// DisplayName returns a human readable name
func (m LayoutMode) DisplayName() string {
	return displayName(string(m))
}

// JobKind is what a print job produces
type JobKind string

const (
	JobKindExport JobKind = "EXPORT" // PDF document saved as a file
	JobKindPrint  JobKind = "PRINT"  // print-ready HTML document
)

// IsValid checks if the JobKind is a valid value
func (k JobKind) IsValid() bool {
	return k == JobKindExport || k == JobKindPrint
}

// String returns the string representation of JobKind
func (k JobKind) String() string {
	return string(k)
}

// DisplayName returns a human readable name
func (k JobKind) DisplayName() string {
	return displayName(string(k))
}

// RenderMode returns the rasterization constants used by this kind of job
func (k JobKind) RenderMode() barcode.RenderMode {
	if k == JobKindPrint {
		return barcode.RenderModePrint
	}
	return barcode.RenderModeExport
}

// JobStatus represents the status of a print job
type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRendering JobStatus = "RENDERING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
)

// IsValid checks if the JobStatus is a valid value
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusRendering, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of JobStatus
func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal returns true if this is a terminal status (no further transitions)
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransitionTo checks if the status can transition to the target status
func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	switch s {
	case JobStatusPending:
		return target == JobStatusRendering || target == JobStatusFailed
	case JobStatusRendering:
		return target == JobStatusCompleted || target == JobStatusFailed
	}
	return false
}
