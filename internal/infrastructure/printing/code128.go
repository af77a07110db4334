package printing

import (
	"fmt"
	"image"
	"image/color"
	"math"

	bc "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/barcodeprint/backend/internal/domain/barcode"
)

const (
	mmPerInch     = 25.4
	pointsPerInch = 72.0

	// maxRasterSide bounds a single rendered image in pixels
	maxRasterSide = 8192
)

// Rasterizer turns the digits of a code into a barcode image
type Rasterizer interface {
	Rasterize(text string, profile barcode.RenderProfile) (image.Image, error)
}

// Code128Rasterizer renders CODE128 symbols with an optional human readable
// line under the bars. It holds no state and is safe for concurrent use.
type Code128Rasterizer struct {
	face font.Face
}

// NewCode128Rasterizer creates a rasterizer using the built-in bitmap font
func NewCode128Rasterizer() *Code128Rasterizer {
	return &Code128Rasterizer{face: basicfont.Face7x13}
}

// Rasterize encodes text as CODE128. Bar height follows profile.Height in
// millimetres at profile.DPI, each module is NarrowBarWidth pixels wide and
// the quiet zone is QuietZone modules on every side.
func (r *Code128Rasterizer) Rasterize(text string, p barcode.RenderProfile) (image.Image, error) {
	if text == "" {
		return nil, NewRenderError(ErrCodeRasterizeFailed, "nothing to encode", nil)
	}
	if p.NarrowBarWidth <= 0 || p.Height <= 0 || p.QuietZone < 0 {
		return nil, NewRenderError(ErrCodeRasterizeFailed,
			fmt.Sprintf("invalid render profile %+v", p), nil)
	}
	dpi := float64(p.DPI)
	if dpi <= 0 {
		dpi = barcode.DefaultDPI
	}

	symbol, err := code128.Encode(text)
	if err != nil {
		return nil, NewRenderError(ErrCodeRasterizeFailed, "code128 encoding failed", err)
	}

	modules := symbol.Bounds().Dx()
	barsW := modules * p.NarrowBarWidth
	barsH := max(1, int(math.Round(float64(p.Height)*dpi/mmPerInch)))
	quiet := p.QuietZone * p.NarrowBarWidth

	var textH, textGap int
	if p.ShowText && p.FontSize > 0 {
		textH = max(1, int(math.Round(float64(p.FontSize)*dpi/pointsPerInch)))
		textGap = max(0, int(math.Round(float64(p.TextYOffset)*dpi/pointsPerInch)))
	}

	width := barsW + 2*quiet
	height := barsH + textGap + textH + 2*quiet
	if width > maxRasterSide || height > maxRasterSide {
		return nil, NewRenderError(ErrCodeRasterizeFailed,
			fmt.Sprintf("image %dx%d exceeds %d pixels", width, height, maxRasterSide), nil)
	}

	scaled, err := bc.Scale(symbol, barsW, barsH)
	if err != nil {
		return nil, NewRenderError(ErrCodeRasterizeFailed, "scaling bars failed", err)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(quiet, quiet, quiet+barsW, quiet+barsH), scaled, scaled.Bounds().Min, draw.Src)

	if textH > 0 {
		top := quiet + barsH + textGap
		r.drawCaption(canvas, text, image.Rect(0, top, width, top+textH))
	}
	return canvas, nil
}

// drawCaption renders text with the bitmap face and scales it into area,
// horizontally centred and never wider than the area
func (r *Code128Rasterizer) drawCaption(dst *image.RGBA, text string, area image.Rectangle) {
	metrics := r.face.Metrics()
	glyphH := (metrics.Ascent + metrics.Descent).Ceil()
	glyphW := font.MeasureString(r.face, text).Ceil()
	if glyphW <= 0 || glyphH <= 0 {
		return
	}

	src := image.NewRGBA(image.Rect(0, 0, glyphW, glyphH))
	draw.Draw(src, src.Bounds(), image.White, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  src,
		Src:  image.NewUniform(color.Black),
		Face: r.face,
		Dot:  fixed.Point26_6{X: 0, Y: metrics.Ascent},
	}
	d.DrawString(text)

	h := area.Dy()
	w := int(math.Round(float64(glyphW) * float64(h) / float64(glyphH)))
	if w > area.Dx() {
		w = area.Dx()
		h = max(1, int(math.Round(float64(glyphH)*float64(w)/float64(glyphW))))
	}
	x := area.Min.X + (area.Dx()-w)/2
	y := area.Min.Y + (area.Dy()-h)/2

	draw.ApproxBiLinear.Scale(dst, image.Rect(x, y, x+w, y+h), src, src.Bounds(), draw.Src, nil)
}

var _ Rasterizer = (*Code128Rasterizer)(nil)
