package store

// Page selects one page of a listing. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// MaxPageSize caps Page.Size.
const MaxPageSize = 100

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = 5
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Number - 1) * p.Size
}

// PageResult is one page of items plus what is needed to render pager links.
type PageResult[T any] struct {
	Items   []T  `json:"items"`
	Page    int  `json:"page"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
	HasPrev bool `json:"has_prev"`
}

// NewPageResult builds a PageResult for page given the full row count.
func NewPageResult[T any](items []T, page Page, total int) PageResult[T] {
	page = page.Normalize()
	if items == nil {
		items = []T{}
	}
	return PageResult[T]{
		Items:   items,
		Page:    page.Number,
		Total:   total,
		HasMore: page.Offset()+len(items) < total,
		HasPrev: page.Number > 1,
	}
}
