package query

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownField matches every *FieldResolutionError.
var ErrUnknownField = errors.New("unknown field")

// FieldResolutionError reports a sort field name that is not registered in
// the entity schema. Callers surface it as a client error.
type FieldResolutionError struct {
	Field string
	Known []string
}

func (e *FieldResolutionError) Error() string {
	return fmt.Sprintf("unknown sort field %q (known: %s)", e.Field, strings.Join(e.Known, ", "))
}

// Is reports true for ErrUnknownField.
func (e *FieldResolutionError) Is(target error) bool {
	return target == ErrUnknownField
}

// Request describes one listing call.
type Request struct {
	Search     string
	SortBy     string
	Pagination Pagination
}

// Page is the paged envelope returned by listing calls. It is built once per
// request and never cached.
type Page[T any] struct {
	Data         []*T     `json:"data"`
	PageNumber   int      `json:"pageNumber"`
	PageSize     int      `json:"pageSize"`
	TotalRecords int      `json:"totalRecords"`
	TotalPages   int      `json:"totalPages"`
	Succeeded    bool     `json:"succeeded"`
	Errors       []string `json:"errors"`
	Message      string   `json:"message,omitempty"`
}

// Run shapes the full, unsorted collection into a page. The steps run in a
// fixed order: the page window is cut from the natural order first, then the
// window is sorted, then filtered. Filtering can leave a page with fewer than
// PageSize records; it never pulls records from other pages to refill it.
// TotalRecords and TotalPages describe the unfiltered collection.
func Run[T any](all []*T, req Request, schema *Schema[T]) (Page[T], error) {
	p := req.Pagination
	if p.PageNumber < 1 || p.PageSize < 1 {
		p = NewPagination(p.PageNumber, p.PageSize, DefaultLimits())
	}

	records := Window(all, p)

	if req.SortBy != "" {
		sorted, err := schema.SortBy(records, req.SortBy)
		if err != nil {
			return Page[T]{}, err
		}
		records = sorted
	}

	if req.Search != "" {
		records = schema.Filter(records, req.Search)
	}

	return Page[T]{
		Data:         records,
		PageNumber:   p.PageNumber,
		PageSize:     p.PageSize,
		TotalRecords: len(all),
		TotalPages:   p.TotalPages(len(all)),
		Succeeded:    true,
		Errors:       []string{},
	}, nil
}
