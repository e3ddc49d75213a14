package query

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   int
	Name string
	Tag  *string
}

func itemSchema() *Schema[item] {
	return NewSchema[item]().
		Register("id", Ordered(func(i *item) int { return i.ID })).
		Register("name", Ordered(func(i *item) string { return i.Name })).
		Register("tag", Optional(func(i *item) *string { return i.Tag })).
		Searchable(func(i *item) string { return i.Name })
}

func items(names ...string) []*item {
	out := make([]*item, len(names))
	for i, n := range names {
		out[i] = &item{ID: i + 1, Name: n}
	}
	return out
}

func names(records []*item) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func TestRunSingleRecordScenario(t *testing.T) {
	all := []*item{{ID: 1, Name: "Thor"}}
	schema := itemSchema()

	page, err := Run(all, Request{SortBy: "name", Pagination: Pagination{PageNumber: 1, PageSize: 10}}, schema)
	require.NoError(t, err)
	assert.Equal(t, []string{"Thor"}, names(page.Data))
	assert.Equal(t, 1, page.TotalRecords)
	assert.Equal(t, 1, page.TotalPages)
	assert.True(t, page.Succeeded)
	assert.Empty(t, page.Errors)

	page, err = Run(all, Request{Pagination: Pagination{PageNumber: 2, PageSize: 10}}, schema)
	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 2, page.PageNumber)
}

func TestRunPagesBeforeSorting(t *testing.T) {
	all := items("delta", "charlie", "echo", "alpha", "bravo")

	page, err := Run(all, Request{SortBy: "name", Pagination: Pagination{PageNumber: 1, PageSize: 3}}, itemSchema())
	require.NoError(t, err)

	// Only the first three in natural order are sorted.
	assert.Equal(t, []string{"charlie", "delta", "echo"}, names(page.Data))
	assert.Equal(t, 5, page.TotalRecords)
	assert.Equal(t, 2, page.TotalPages)
}

func TestRunFilterDoesNotBackfill(t *testing.T) {
	all := items("Thor", "Loki", "Thora", "Odin", "Frigg", "Thrud", "Baldr", "Sif", "Heimdall", "Tyr", "Thorsten")

	page, err := Run(all, Request{Search: "THO", Pagination: Pagination{PageNumber: 1, PageSize: 10}}, itemSchema())
	require.NoError(t, err)

	assert.Equal(t, []string{"Thor", "Thora"}, names(page.Data))
	assert.Equal(t, 11, page.TotalRecords)
	assert.Equal(t, 2, page.TotalPages)
}

func TestRunUnicodeCaseFolding(t *testing.T) {
	all := items("STRASSE", "Straße", "Ægir")

	page, err := Run(all, Request{Search: "straße", Pagination: Pagination{PageNumber: 1, PageSize: 10}}, itemSchema())
	require.NoError(t, err)
	assert.Equal(t, []string{"STRASSE", "Straße"}, names(page.Data))

	page, err = Run(all, Request{Search: "æ", Pagination: Pagination{PageNumber: 1, PageSize: 10}}, itemSchema())
	require.NoError(t, err)
	assert.Equal(t, []string{"Ægir"}, names(page.Data))
}

func TestRunUnknownSortField(t *testing.T) {
	_, err := Run(items("a"), Request{SortBy: "Name", Pagination: Pagination{PageNumber: 1, PageSize: 10}}, itemSchema())
	require.Error(t, err)

	var fre *FieldResolutionError
	require.True(t, errors.As(err, &fre))
	assert.Equal(t, "Name", fre.Field)
	assert.Equal(t, []string{"id", "name", "tag"}, fre.Known)
	assert.True(t, errors.Is(err, ErrUnknownField))
}

func TestRunNormalizesInvalidPagination(t *testing.T) {
	all := items("a", "b", "c")

	page, err := Run(all, Request{Pagination: Pagination{PageNumber: 0, PageSize: -5}}, itemSchema())
	require.NoError(t, err)
	assert.Equal(t, 1, page.PageNumber)
	assert.Equal(t, DefaultPageSize, page.PageSize)
	assert.Len(t, page.Data, 3)
}

func TestRunDoesNotMutateInput(t *testing.T) {
	all := items("c", "b", "a")
	before := names(all)

	_, err := Run(all, Request{SortBy: "name", Search: "a", Pagination: Pagination{PageNumber: 1, PageSize: 10}}, itemSchema())
	require.NoError(t, err)
	assert.Equal(t, before, names(all))
}

func TestSortByIsStable(t *testing.T) {
	all := []*item{{ID: 1, Name: "x"}, {ID: 2, Name: "a"}, {ID: 3, Name: "x"}, {ID: 4, Name: "a"}}

	sorted, err := itemSchema().SortBy(all, "name")
	require.NoError(t, err)

	ids := make([]int, len(sorted))
	for i, r := range sorted {
		ids[i] = r.ID
	}
	assert.Equal(t, []int{2, 4, 1, 3}, ids)
}

func TestOptionalSortsNilFirst(t *testing.T) {
	b, a := "b", "a"
	all := []*item{{ID: 1, Tag: &b}, {ID: 2}, {ID: 3, Tag: &a}}

	sorted, err := itemSchema().SortBy(all, "tag")
	require.NoError(t, err)
	assert.Equal(t, 2, sorted[0].ID)
	assert.Equal(t, 3, sorted[1].ID)
	assert.Equal(t, 1, sorted[2].ID)
}

func TestWindowAndTotals(t *testing.T) {
	all := make([]*item, 25)
	for i := range all {
		all[i] = &item{ID: i + 1, Name: fmt.Sprintf("hero-%02d", i+1)}
	}

	tests := []struct {
		page, size int
		wantFirst  int
		wantLen    int
	}{
		{page: 1, size: 10, wantFirst: 1, wantLen: 10},
		{page: 3, size: 10, wantFirst: 21, wantLen: 5},
		{page: 4, size: 10, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("page %d size %d", tt.page, tt.size), func(t *testing.T) {
			p := Pagination{PageNumber: tt.page, PageSize: tt.size}
			got := Window(all, p)
			require.Len(t, got, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirst, got[0].ID)
			}
			assert.Equal(t, 3, p.TotalPages(len(all)))
		})
	}
}
