package resource

// Page is one slice of a paginated listing.
// len(Items) <= PageSize and PageNumber >= 1 always hold for pages produced by
// this package and by well-behaved clients.
type Page[T any] struct {
	Items      []T
	PageNumber int
	PageSize   int
	TotalItems int
}

// Metadata is derived from (PageNumber, PageSize, TotalItems) and never stored.
type Metadata struct {
	TotalItems      int
	TotalPages      int
	PageNumber      int
	PageSize        int
	HasNextPage     bool
	HasPreviousPage bool
	NextPage        *int
	PreviousPage    *int
}

// Metadata computes the page's pagination metadata.
func (p Page[T]) Metadata() Metadata {
	return Paginate(p.PageNumber, p.PageSize, p.TotalItems)
}

// Paginate is total over its inputs: a page size below 1 is treated as 1 and a
// negative total as 0. A page number past the end yields HasNextPage=false.
func Paginate(pageNumber, pageSize, totalItems int) Metadata {
	if pageSize < 1 {
		pageSize = 1
	}
	if totalItems < 0 {
		totalItems = 0
	}
	totalPages := (totalItems + pageSize - 1) / pageSize
	m := Metadata{
		TotalItems:      totalItems,
		TotalPages:      totalPages,
		PageNumber:      pageNumber,
		PageSize:        pageSize,
		HasNextPage:     pageNumber < totalPages,
		HasPreviousPage: pageNumber > 1,
	}
	if m.HasNextPage {
		n := pageNumber + 1
		m.NextPage = &n
	}
	if m.HasPreviousPage {
		p := pageNumber - 1
		m.PreviousPage = &p
	}
	return m
}

// SlicePage builds a page from a complete, unpaginated listing.
// Used for endpoints that return every item at once.
func SlicePage[T any](all []T, pageNumber, pageSize int) Page[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	if pageNumber < 1 {
		pageNumber = 1
	}
	start := (pageNumber - 1) * pageSize
	items := []T{}
	if start < len(all) {
		end := start + pageSize
		if end > len(all) {
			end = len(all)
		}
		items = append(items, all[start:end]...)
	}
	return Page[T]{
		Items:      items,
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalItems: len(all),
	}
}

// Clamp truncates Items to PageSize.
func (p Page[T]) Clamp() Page[T] {
	if p.PageSize >= 1 && len(p.Items) > p.PageSize {
		p.Items = p.Items[:p.PageSize]
	}
	if p.PageNumber < 1 {
		p.PageNumber = 1
	}
	return p
}
