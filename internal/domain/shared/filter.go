package shared

// Filter carries paging, ordering and free-text search for list queries.
// Repositories whitelist OrderBy and treat anything but "asc" as descending.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// Offset is the number of rows skipped before Page. Unset paging gives 0.
func (f Filter) Offset() int {
	if f.Page < 1 || f.PageSize < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Paged reports whether the filter asks for a single page
func (f Filter) Paged() bool {
	return f.Page > 0 && f.PageSize > 0
}
