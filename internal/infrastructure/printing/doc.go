// Package printing provides the rendering side of label printing: the CODE128
// rasterizer, the HTML page document that places rendered images, the
// HTML-to-PDF renderers (chromedp and wkhtmltopdf) and the document storage
// the rendered outputs are written to.
//
// Example usage:
//
//	raster := NewCode128Rasterizer()
//	scratch := AcquireScratch()
//	defer scratch.Release()
//
//	img, err := raster.Rasterize("123456789012", barcode.ProfileFor(barcode.RenderModeExport))
//	if err != nil {
//	    return err
//	}
//	src, err := scratch.EncodeDataURI(img)
//	if err != nil {
//	    return err
//	}
//
//	doc := NewDocument(printing.PaperSizeA4.PageSize(), DocumentOptions{Title: "barcodes"})
//	doc.AddPage()
//	_ = doc.PlaceImage(src, "1234 5678 9012", 10, 10, 90, 40)
//	html, err := doc.Render()
package printing
