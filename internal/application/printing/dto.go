package printing

import (
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/barcodeprint/backend/internal/domain/barcode"
	"github.com/barcodeprint/backend/internal/domain/printing"
)

// Output file names and content types
const (
	ExportFileName    = "barcodes.pdf"
	ExportContentType = "application/pdf"
	PrintFileName     = "labels.html"
	PrintContentType  = "text/html; charset=utf-8"
)

// =============================================================================
// Request DTOs
// =============================================================================

// SettingsDTO carries the user-facing rendering settings. Omitted fields
// keep the defaults of the request's mode. Every field is range-checked,
// but export and print take bar width, height, font size and text offset
// from the fixed EXPORT and PRINT profiles; only fixed_size, quiet_zone
// and dpi change the rendered output.
type SettingsDTO struct {
	FixedSize *bool `json:"fixed_size,omitempty"`
	// Validated only; export and print use the profile bar width
	NarrowBarWidth *int `json:"narrow_bar_width,omitempty" example:"2"`
	// Validated only; export and print use the profile height
	Height    *int `json:"height,omitempty" example:"100"`
	QuietZone *int `json:"quiet_zone,omitempty" example:"10"`
	// Validated only; export and print use the profile font size
	FontSize *int `json:"font_size,omitempty" example:"12"`
	// Validated only; export and print use the profile text offset
	TextYOffset *int `json:"text_y_offset,omitempty" example:"2"`
	DPI         *int `json:"dpi,omitempty" example:"300"`
}

// apply overlays the supplied fields on base
func (d *SettingsDTO) apply(base barcode.Settings) barcode.Settings {
	if d == nil {
		return base
	}
	if d.FixedSize != nil {
		base.FixedSize = *d.FixedSize
	}
	if d.NarrowBarWidth != nil {
		base.NarrowBarWidth = *d.NarrowBarWidth
	}
	if d.Height != nil {
		base.Height = *d.Height
	}
	if d.QuietZone != nil {
		base.QuietZone = *d.QuietZone
	}
	if d.FontSize != nil {
		base.FontSize = *d.FontSize
	}
	if d.TextYOffset != nil {
		base.TextYOffset = *d.TextYOffset
	}
	if d.DPI != nil {
		base.DPI = *d.DPI
	}
	return base
}

// ExportRequest exports the selected barcodes to a PDF. PaperSize defaults
// to A4; LayoutMode defaults to the paper's usual layout.
type ExportRequest struct {
	BarcodeIDs []uuid.UUID  `json:"barcode_ids" binding:"required,min=1,max=1000"`
	PaperSize  string       `json:"paper_size" binding:"omitempty,oneof=A4 LABEL_40X20 LABEL_20X10" example:"A4"`
	LayoutMode string       `json:"layout_mode" binding:"omitempty,oneof=GRID SINGLE" example:"GRID"`
	Settings   *SettingsDTO `json:"settings"`
}

// PrintRequest prints the selected barcodes on thermal labels
type PrintRequest struct {
	BarcodeIDs []uuid.UUID  `json:"barcode_ids" binding:"required,min=1,max=1000"`
	LabelSize  string       `json:"paper_size" binding:"required,oneof=20mm 40mm" example:"40mm"`
	Settings   *SettingsDTO `json:"settings"`
}

// ListJobsRequest filters the job history
type ListJobsRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Kind     string `form:"kind" binding:"omitempty,oneof=EXPORT PRINT"`
	Status   string `form:"status" binding:"omitempty,oneof=PENDING RENDERING COMPLETED FAILED"`
}

// =============================================================================
// Response DTOs
// =============================================================================

// JobResponse is the API view of a print job
type JobResponse struct {
	ID           uuid.UUID   `json:"id"`
	Kind         string      `json:"kind" example:"EXPORT"`
	PaperSize    string      `json:"paper_size" example:"A4"`
	LayoutMode   string      `json:"layout_mode" example:"GRID"`
	Status       string      `json:"status" example:"COMPLETED"`
	BarcodeIDs   []uuid.UUID `json:"barcode_ids"`
	ItemCount    int         `json:"item_count"`
	PageCount    int         `json:"page_count"`
	FileName     string      `json:"file_name,omitempty" example:"barcodes.pdf"`
	ContentType  string      `json:"content_type,omitempty"`
	OutputURL    string      `json:"output_url,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
}

// JobListResponse is one page of job history
type JobListResponse struct {
	Items    []JobResponse `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// JobOutput is an opened job document. Exactly one of Body and RedirectURL
// is set; the caller closes Body.
type JobOutput struct {
	FileName    string
	ContentType string
	Body        io.ReadCloser
	RedirectURL string
}

// PaperSizeResponse describes one supported medium
type PaperSizeResponse struct {
	Code          string  `json:"code" example:"LABEL_40X20"`
	Name          string  `json:"name" example:"Label 40 x 20 mm"`
	WidthMM       float64 `json:"width_mm"`
	HeightMM      float64 `json:"height_mm"`
	IsLabel       bool    `json:"is_label"`
	DefaultLayout string  `json:"default_layout" example:"SINGLE"`
	ItemsPerPage  int     `json:"items_per_page"`
}

// SettingsDefaultsResponse lists the starting settings and accepted ranges
type SettingsDefaultsResponse struct {
	Export       SettingsView            `json:"export"`
	Print        map[string]SettingsView `json:"print"`
	ExportRanges barcode.SettingsRanges  `json:"export_ranges"`
	PrintRanges  barcode.SettingsRanges  `json:"print_ranges"`
}

// SettingsView is the JSON shape of barcode.Settings
type SettingsView struct {
	FixedSize      bool   `json:"fixed_size"`
	NarrowBarWidth int    `json:"narrow_bar_width"`
	Height         int    `json:"height"`
	QuietZone      int    `json:"quiet_zone"`
	FontSize       int    `json:"font_size"`
	TextYOffset    int    `json:"text_y_offset"`
	DPI            int    `json:"dpi"`
	PaperSize      string `json:"paper_size,omitempty"`
	PrintMode      bool   `json:"print_mode"`
}

func toSettingsView(s barcode.Settings) SettingsView {
	return SettingsView{
		FixedSize:      s.FixedSize,
		NarrowBarWidth: s.NarrowBarWidth,
		Height:         s.Height,
		QuietZone:      s.QuietZone,
		FontSize:       s.FontSize,
		TextYOffset:    s.TextYOffset,
		DPI:            s.DPI,
		PaperSize:      string(s.PaperSize),
		PrintMode:      s.PrintMode,
	}
}

// ToJobResponse converts a domain job to its API view
func ToJobResponse(job *printing.PrintJob) JobResponse {
	return JobResponse{
		ID:           job.ID,
		Kind:         job.Kind.String(),
		PaperSize:    job.PaperSize.String(),
		LayoutMode:   job.LayoutMode.String(),
		Status:       job.Status.String(),
		BarcodeIDs:   job.BarcodeIDs,
		ItemCount:    job.ItemCount,
		PageCount:    job.PageCount,
		FileName:     job.FileName,
		ContentType:  job.ContentType,
		OutputURL:    job.OutputURL,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		CompletedAt:  job.CompletedAt,
	}
}
