package query

// Result is one page of rows with the totals the admin UI paginates on.
type Result struct {
	Rows       []map[string]any `json:"rows"`
	Total      int64            `json:"total"`
	TotalPages int64            `json:"total_pages"`
}

// Pages computes the page count for a total row count. Always at least 1, so
// an empty result set still renders as a single empty page.
func Pages(total int64, pageSize int) int64 {
	if pageSize <= 0 {
		return 1
	}
	pages := (total + int64(pageSize) - 1) / int64(pageSize)
	if pages < 1 {
		return 1
	}
	return pages
}
