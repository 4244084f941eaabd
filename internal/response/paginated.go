package response

// Paginated is the shape of a list result.
//
// Page is 1-based. PagesCount and TotalCount describe the whole result set,
// not just the current page.
type Paginated[T any] struct {
	Items      []T    `json:"items"`
	Page       uint32 `json:"page"`
	Size       uint32 `json:"size"`
	PagesCount uint32 `json:"pagesCount"`
	TotalCount uint32 `json:"totalCount"`
}
