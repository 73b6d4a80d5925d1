package domain

// DefaultPageSize is the number of items requested per page by list views.
const DefaultPageSize = 10

// SortKey selects the server-side ordering of a list.
type SortKey string

const (
	SortCreatedAsc  SortKey = "created_at_asc"
	SortCreatedDesc SortKey = "created_at_desc"
	SortTitleAsc    SortKey = "title_asc"
	SortTitleDesc   SortKey = "title_desc"
)

// Valid reports whether k is one of the sort keys the server accepts.
func (k SortKey) Valid() bool {
	switch k {
	case SortCreatedAsc, SortCreatedDesc, SortTitleAsc, SortTitleDesc:
		return true
	}
	return false
}

// PageParams are the optional pagination parameters of a list request.
// Zero values are omitted so the server defaults apply.
type PageParams struct {
	Page  int
	Limit int
	Sort  SortKey
}

// Page is one slice of a server-side collection.
type Page[T any] struct {
	Items      []T
	TotalCount int
	PageNumber int
	PageSize   int
}

// TotalPages returns ceil(totalCount/pageSize). It is 0 for an empty
// collection or a non-positive page size.
func TotalPages(totalCount, pageSize int) int {
	if totalCount <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalCount + pageSize - 1) / pageSize
}
