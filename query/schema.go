package query

import (
	"cmp"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Compare orders two records, negative when a sorts before b.
type Compare[T any] func(a, b *T) int

// Schema is the per entity table of sortable fields and the searchable field.
// Field names are resolved at call time by exact, case sensitive match.
type Schema[T any] struct {
	fields     map[string]Compare[T]
	searchable func(*T) string
}

// NewSchema returns an empty schema.
func NewSchema[T any]() *Schema[T] {
	return &Schema[T]{fields: make(map[string]Compare[T])}
}

// Register adds a sortable field. Registering a name twice replaces it.
func (s *Schema[T]) Register(name string, compare Compare[T]) *Schema[T] {
	s.fields[name] = compare
	return s
}

// Searchable sets the field used by substring filtering.
func (s *Schema[T]) Searchable(field func(*T) string) *Schema[T] {
	s.searchable = field
	return s
}

// Fields returns the registered field names, sorted.
func (s *Schema[T]) Fields() []string {
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the comparator registered under name.
func (s *Schema[T]) Resolve(name string) (Compare[T], error) {
	compare, ok := s.fields[name]
	if !ok || compare == nil {
		return nil, &FieldResolutionError{Field: name, Known: s.Fields()}
	}
	return compare, nil
}

// SortBy sorts records ascending by the named field. The sort is stable and
// works on a copy.
func (s *Schema[T]) SortBy(records []*T, name string) ([]*T, error) {
	compare, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b *T) int { return compare(a, b) })
	return out, nil
}

// Filter keeps the records whose searchable field contains term, ignoring
// case with Unicode case folding. An empty term keeps everything.
func (s *Schema[T]) Filter(records []*T, term string) []*T {
	if term == "" || s.searchable == nil {
		return records
	}
	fold := cases.Fold()
	needle := fold.String(term)

	out := make([]*T, 0, len(records))
	for _, r := range records {
		if strings.Contains(fold.String(s.searchable(r)), needle) {
			out = append(out, r)
		}
	}
	return out
}

// Ordered builds a comparator from a field accessor with a natural ordering.
func Ordered[T any, V cmp.Ordered](field func(*T) V) Compare[T] {
	return func(a, b *T) int {
		return cmp.Compare(field(a), field(b))
	}
}

// Optional builds a comparator for a nullable field. Nil sorts first.
func Optional[T any, V cmp.Ordered](field func(*T) *V) Compare[T] {
	return func(a, b *T) int {
		va, vb := field(a), field(b)
		switch {
		case va == nil && vb == nil:
			return 0
		case va == nil:
			return -1
		case vb == nil:
			return 1
		}
		return cmp.Compare(*va, *vb)
	}
}
