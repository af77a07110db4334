package barcode

import (
	"fmt"
	"strings"
)

// RenderMode selects the rendering constants used for one rasterization
type RenderMode string

const (
	// RenderModeDisplay is the on-screen preview
	RenderModeDisplay RenderMode = "DISPLAY"
	// RenderModeExport is used for PDF export
	RenderModeExport RenderMode = "EXPORT"
	// RenderModePrint is used for thermal label printing
	RenderModePrint RenderMode = "PRINT"
)

// AllRenderModes returns every supported render mode
func AllRenderModes() []RenderMode {
	return []RenderMode{RenderModeDisplay, RenderModeExport, RenderModePrint}
}

// IsValid reports whether the mode is supported
func (m RenderMode) IsValid() bool {
	_, ok := modeProfiles[m]
	return ok
}

func (m RenderMode) String() string {
	return string(m)
}

// ParseRenderMode parses a mode name case-insensitively; empty means DISPLAY
func ParseRenderMode(s string) (RenderMode, error) {
	if strings.TrimSpace(s) == "" {
		return RenderModeDisplay, nil
	}
	mode := RenderMode(strings.ToUpper(strings.TrimSpace(s)))
	if !mode.IsValid() {
		return "", fmt.Errorf("unknown render mode %q", s)
	}
	return mode, nil
}

// RenderProfile is the full set of constants handed to the rasterizer.
// Height is in millimetres, FontSize and TextYOffset in points, NarrowBarWidth
// in pixels per module and QuietZone in modules.
type RenderProfile struct {
	NarrowBarWidth int
	Height         int
	QuietZone      int
	FontSize       int
	TextYOffset    int
	DPI            int
	ShowText       bool
	FixedSize      bool
}

// modeProfiles is read-only after init; callers only ever get copies.
var modeProfiles = map[RenderMode]RenderProfile{
	RenderModeDisplay: {NarrowBarWidth: 2, Height: 10, QuietZone: 5, FontSize: 7, TextYOffset: 4, DPI: DefaultDPI, ShowText: true, FixedSize: true},
	RenderModeExport:  {NarrowBarWidth: 3, Height: 10, QuietZone: 10, FontSize: 4, TextYOffset: 2, DPI: DefaultDPI, ShowText: true, FixedSize: true},
	RenderModePrint:   {NarrowBarWidth: 2, Height: 12, QuietZone: 0, FontSize: 3, TextYOffset: 2, DPI: DefaultDPI, ShowText: true, FixedSize: true},
}

// ProfileFor returns a copy of the constants for mode. Unknown modes fall back
// to DISPLAY.
func ProfileFor(mode RenderMode) RenderProfile {
	if p, ok := modeProfiles[mode]; ok {
		return p
	}
	return modeProfiles[RenderModeDisplay]
}

// Profile combines the mode constants with the caller's settings. Bar
// geometry and text metrics always come from the mode table; quiet zone,
// fixed sizing and resolution come from the settings.
func (s Settings) Profile(mode RenderMode) RenderProfile {
	p := ProfileFor(mode)
	p.QuietZone = s.QuietZone
	p.FixedSize = s.FixedSize
	if s.DPI > 0 {
		p.DPI = s.DPI
	}
	return p
}
