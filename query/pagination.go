package query

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
	DefaultMaxPerPage = 50
)

// Limits bound the page size accepted from clients.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		DefaultPageSize: DefaultPageSize,
		MaxPageSize:     DefaultMaxPerPage,
	}
}

func (l Limits) normalized() Limits {
	if l.MaxPageSize < 1 {
		l.MaxPageSize = DefaultMaxPerPage
	}
	if l.DefaultPageSize < 1 {
		l.DefaultPageSize = DefaultPageSize
	}
	if l.DefaultPageSize > l.MaxPageSize {
		l.DefaultPageSize = l.MaxPageSize
	}
	return l
}

// Pagination selects one page of a collection. Values built with
// NewPagination are always valid.
type Pagination struct {
	PageNumber int
	PageSize   int
}

// NewPagination normalizes raw client values. Invalid or missing values fall
// back to defaults and oversized pages are capped, nothing is rejected.
func NewPagination(pageNumber, pageSize int, limits Limits) Pagination {
	limits = limits.normalized()

	if pageNumber < 1 {
		pageNumber = DefaultPageNumber
	}
	switch {
	case pageSize < 1:
		pageSize = limits.DefaultPageSize
	case pageSize > limits.MaxPageSize:
		pageSize = limits.MaxPageSize
	}

	return Pagination{PageNumber: pageNumber, PageSize: pageSize}
}

// Offset returns the number of records skipped before the page starts.
func (p Pagination) Offset() int {
	return (p.PageNumber - 1) * p.PageSize
}

// TotalPages returns the number of pages needed for total records.
func (p Pagination) TotalPages(total int) int {
	if total <= 0 || p.PageSize <= 0 {
		return 0
	}
	return (total + p.PageSize - 1) / p.PageSize
}

// Window returns the records of the page in their original order. The result
// is a fresh slice, empty when the offset is past the end.
func Window[T any](all []*T, p Pagination) []*T {
	offset := p.Offset()
	if offset < 0 || offset >= len(all) || p.PageSize <= 0 {
		return []*T{}
	}
	end := offset + p.PageSize
	if end > len(all) {
		end = len(all)
	}
	out := make([]*T, end-offset)
	copy(out, all[offset:end])
	return out
}
