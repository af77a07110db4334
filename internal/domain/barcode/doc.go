// Package barcode contains the barcode record aggregate, the numeric code
// generator and the rendering settings used when barcodes are rasterized.
package barcode
