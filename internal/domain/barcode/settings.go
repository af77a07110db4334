package barcode

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/barcodeprint/backend/internal/domain/shared"
)

// LabelSize is the thermal label stock selected for printing
type LabelSize string

const (
	LabelSize20mm LabelSize = "20mm"
	LabelSize40mm LabelSize = "40mm"
)

// IsValid reports whether the label size is supported
func (l LabelSize) IsValid() bool {
	return l == LabelSize20mm || l == LabelSize40mm
}

// Resolution bounds for rasterization
const (
	DefaultDPI = 300
	MinDPI     = 72
	MaxDPI     = 600
)

// Range is an inclusive numeric bound
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether v lies within the range
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// SettingsRanges lists the accepted values for one mode
type SettingsRanges struct {
	NarrowBarWidth Range `json:"narrow_bar_width"`
	Height         Range `json:"height"`
	QuietZone      Range `json:"quiet_zone"`
	FontSize       Range `json:"font_size"`
	DPI            Range `json:"dpi"`
}

var (
	exportRanges = SettingsRanges{
		NarrowBarWidth: Range{1, 10},
		Height:         Range{50, 300},
		QuietZone:      Range{0, 50},
		FontSize:       Range{8, 24},
		DPI:            Range{MinDPI, MaxDPI},
	}
	printRanges = SettingsRanges{
		NarrowBarWidth: Range{1, 10},
		Height:         Range{8, 16},
		QuietZone:      Range{0, 2},
		FontSize:       Range{2, 4},
		DPI:            Range{MinDPI, MaxDPI},
	}
)

// RangesFor returns the accepted ranges for print or export settings
func RangesFor(printMode bool) SettingsRanges {
	if printMode {
		return printRanges
	}
	return exportRanges
}

// Settings is the per-request rendering configuration. It is never persisted.
type Settings struct {
	FixedSize      bool
	NarrowBarWidth int
	Height         int
	QuietZone      int
	FontSize       int
	TextYOffset    int
	DPI            int
	PaperSize      LabelSize
	PrintMode      bool
	SelectedIDs    []uuid.UUID // render order
}

// WithSelection returns a copy of s that renders ids, in order
func (s Settings) WithSelection(ids []uuid.UUID) Settings {
	s.SelectedIDs = slices.Clone(ids)
	return s
}

// DefaultSettings returns the export settings a new request starts from
func DefaultSettings() Settings {
	return Settings{
		FixedSize:      true,
		NarrowBarWidth: 2,
		Height:         100,
		QuietZone:      10,
		FontSize:       12,
		TextYOffset:    2,
		DPI:            DefaultDPI,
	}
}

// DefaultPrintSettings returns label printing defaults for the given stock
func DefaultPrintSettings(size LabelSize) Settings {
	return Settings{
		FixedSize:      true,
		NarrowBarWidth: 2,
		Height:         12,
		QuietZone:      1,
		FontSize:       3,
		TextYOffset:    2,
		DPI:            DefaultDPI,
		PaperSize:      size,
		PrintMode:      true,
	}
}

// Validate checks every field against the ranges of its mode
func (s Settings) Validate() error {
	r := RangesFor(s.PrintMode)

	checks := []struct {
		name  string
		value int
		rng   Range
	}{
		{"narrow_bar_width", s.NarrowBarWidth, r.NarrowBarWidth},
		{"height", s.Height, r.Height},
		{"quiet_zone", s.QuietZone, r.QuietZone},
		{"font_size", s.FontSize, r.FontSize},
	}
	for _, c := range checks {
		if !c.rng.Contains(c.value) {
			return shared.NewDomainError(CodeInvalidSettings,
				fmt.Sprintf("%s must be between %d and %d, got %d", c.name, c.rng.Min, c.rng.Max, c.value))
		}
	}
	if s.DPI != 0 && !r.DPI.Contains(s.DPI) {
		return shared.NewDomainError(CodeInvalidSettings,
			fmt.Sprintf("dpi must be between %d and %d, got %d", r.DPI.Min, r.DPI.Max, s.DPI))
	}
	if s.PrintMode && !s.PaperSize.IsValid() {
		return shared.NewDomainError(CodeInvalidSettings, "paper_size must be 20mm or 40mm when printing")
	}
	if s.PaperSize != "" && !s.PaperSize.IsValid() {
		return shared.NewDomainError(CodeInvalidSettings, fmt.Sprintf("unsupported paper_size %q", s.PaperSize))
	}
	return nil
}
