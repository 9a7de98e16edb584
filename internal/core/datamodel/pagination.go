package datamodel

// Pagination is the paging block list endpoints return under
// data.pagination.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func DefaultPagination() Pagination {
	return Pagination{Page: 1, Limit: 50}
}
