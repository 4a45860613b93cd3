package pagination

// Page describes one page of a paginated collection. The JSON field
// names match the "meta" object returned by collection endpoints.
type Page struct {
	Page         int `json:"page"`
	PageCount    int `json:"page_count"`
	ItemCount    int `json:"item_count"`
	ItemsPerPage int `json:"items_per_page"`
}

// New computes pagination metadata for the given page number, page size
// and total item count. Page numbers below 1 are clamped to 1.
func New(page, itemsPerPage, itemCount int) Page {
	if page < 1 {
		page = 1
	}
	pageCount := 0
	if itemCount > 0 {
		pageCount = (itemCount + itemsPerPage - 1) / itemsPerPage
	}
	return Page{
		Page:         page,
		PageCount:    pageCount,
		ItemCount:    itemCount,
		ItemsPerPage: itemsPerPage,
	}
}

// Limit returns the page size for use in LIMIT clauses.
func (p Page) Limit() int {
	return p.ItemsPerPage
}

// Offset returns the row offset of the page for use in OFFSET clauses.
func (p Page) Offset() int {
	return (p.Page - 1) * p.ItemsPerPage
}
