package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// BarcodeSortFields are the barcode columns a list may be ordered by
var BarcodeSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"title":      true,
	"code":       true,
}

// PrintJobSortFields are the print job columns a list may be ordered by
var PrintJobSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"completed_at": true,
	"status":       true,
	"kind":         true,
	"item_count":   true,
}

// orderBy resolves a requested column and direction against allowed.
// Unknown columns order by created_at, anything but "asc" is descending,
// and id is appended so rows created in one batch page deterministically.
func orderBy(column, dir string, allowed map[string]bool) clause.OrderBy {
	column = strings.TrimSpace(column)
	if !allowed[column] {
		column = "created_at"
	}
	desc := !strings.EqualFold(strings.TrimSpace(dir), "asc")
	return clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: column}, Desc: desc},
		{Column: clause.Column{Name: "id"}, Desc: desc},
	}}
}
