package hero

import (
	"context"

	"github.com/goliatone/go-heroes/query"
	"github.com/goliatone/go-heroes/repository"
	"github.com/uptrace/bun"
)

// Handlers are the identity handlers of the Hero model.
var Handlers = repository.Handlers[Hero]{
	GetID:    func(h *Hero) int64 { return h.ID },
	SetID:    func(h *Hero, id int64) { h.ID = id },
	PKColumn: "id",
}

// Repository adds hero specific lookups to the generic repository.
type Repository struct {
	*repository.Repository[Hero]
}

// NewRepository creates a hero repository reading from db.
func NewRepository(db bun.IDB) *Repository {
	return &Repository{Repository: repository.New(db, Handlers)}
}

// GetByID returns the hero with the given identity, or nil when none exists.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Hero, error) {
	heroes, err := r.FindByCondition(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.id = ?", id).Limit(1)
	})
	if err != nil {
		return nil, err
	}
	if len(heroes) == 0 {
		return nil, nil
	}
	return heroes[0], nil
}

// ExistsByName reports whether a hero with the same name, ignoring case,
// is already stored. Names are compared by their FoldName key.
func (r *Repository) ExistsByName(ctx context.Context, name string) (bool, error) {
	heroes, err := r.FindByCondition(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.name_key = ?", FoldName(name)).Limit(1)
	})
	if err != nil {
		return false, err
	}
	return len(heroes) > 0, nil
}

var schema = query.NewSchema[Hero]().
	Register("id", query.Ordered(func(h *Hero) int64 { return h.ID })).
	Register("name", query.Ordered(func(h *Hero) string { return h.Name })).
	Register("firstName", query.Ordered(func(h *Hero) string { return h.FirstName })).
	Register("lastName", query.Ordered(func(h *Hero) string { return h.LastName })).
	Register("place", query.Ordered(func(h *Hero) string { return h.Place })).
	Register("imageUrl", query.Optional(func(h *Hero) *string { return h.ImageURL })).
	Searchable(func(h *Hero) string { return h.Name })

// Schema returns the sortable fields of Hero, keyed by their JSON names.
// Name is the searchable field.
func Schema() *query.Schema[Hero] {
	return schema
}
