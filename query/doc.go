// Package query turns an entity collection into a paged response.
//
// A listing runs three steps in a fixed order over the full, unsorted
// collection: cut the page window, sort the window by a field named at
// runtime, filter the window by a case insensitive substring. Because the
// filter runs last it may return a short page; it never backfills.
//
// Sorting does not use reflection. Each entity registers a Schema mapping
// field names to typed comparators:
//
//	schema := query.NewSchema[Hero]().
//		Register("id", query.Ordered(func(h *Hero) int64 { return h.ID })).
//		Register("name", query.Ordered(func(h *Hero) string { return h.Name })).
//		Searchable(func(h *Hero) string { return h.Name })
//
// Unknown names return *FieldResolutionError.
package query
