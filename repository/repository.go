package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/uptrace/bun"
)

// SelectCriteria narrows a select query. Criteria are applied in order and
// evaluated by the store, never in memory.
type SelectCriteria func(*bun.SelectQuery) *bun.SelectQuery

// Handlers describe how the generic repository reads and writes the identity
// of a model. T is the bun model struct; records travel as *T.
type Handlers[T any] struct {
	// GetID returns the store assigned identity, zero when unassigned.
	GetID func(*T) int64
	// SetID overwrites the identity. Used to clear identities after a rollback.
	SetID func(*T, int64)
	// PKColumn is the identity column, used for store ordering and RETURNING.
	PKColumn string
}

// Operation is the kind of a staged change.
type Operation int

const (
	OpCreate Operation = iota + 1
	OpUpdate
	OpDelete
)

func (o Operation) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

type change[T any] struct {
	op     Operation
	record *T
}

// Repository implements entity agnostic CRUD over a single store handle.
// Reads go straight to the store. Writes are staged and only reach the store
// when Persist runs, usually from a unit of work commit.
type Repository[T any] struct {
	db       bun.IDB
	handlers Handlers[T]

	mu      sync.Mutex
	pending []change[T]
}

// New creates a repository reading from db.
func New[T any](db bun.IDB, handlers Handlers[T]) *Repository[T] {
	if handlers.PKColumn == "" {
		handlers.PKColumn = "id"
	}
	return &Repository[T]{
		db:       db,
		handlers: handlers,
	}
}

// DB returns the handle the repository reads from.
func (r *Repository[T]) DB() bun.IDB {
	return r.db
}

// Handlers returns the identity handlers of the repository.
func (r *Repository[T]) Handlers() Handlers[T] {
	return r.handlers
}

// FindAll returns every record in store order.
func (r *Repository[T]) FindAll(ctx context.Context) ([]*T, error) {
	return r.FindByCondition(ctx)
}

// FindByCondition returns the records matching all criteria, in store order.
func (r *Repository[T]) FindByCondition(ctx context.Context, criteria ...SelectCriteria) ([]*T, error) {
	records := make([]*T, 0)
	q := r.db.NewSelect().Model(&records)
	for _, c := range criteria {
		if c != nil {
			q = c(q)
		}
	}
	q = q.Order(r.handlers.PKColumn)

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select %T: %w", (*T)(nil), err)
	}
	return records, nil
}

// Create stages record for insertion and returns it. The identity stays
// unassigned until the change is persisted.
func (r *Repository[T]) Create(record *T) *T {
	r.stage(OpCreate, record)
	return record
}

// Update stages an in place modification of record, matched by identity.
func (r *Repository[T]) Update(record *T) {
	r.stage(OpUpdate, record)
}

// Delete stages the removal of record, matched by identity.
func (r *Repository[T]) Delete(record *T) {
	r.stage(OpDelete, record)
}

func (r *Repository[T]) stage(op Operation, record *T) {
	if record == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, change[T]{op: op, record: record})
}

// Pending returns the number of staged changes.
func (r *Repository[T]) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Persist applies the staged changes on db in staging order. It stops at the
// first failure; the caller owns the transaction and decides what to undo.
// Staged changes are kept until Reset or Rollback.
func (r *Repository[T]) Persist(ctx context.Context, db bun.IDB) error {
	r.mu.Lock()
	pending := append([]change[T](nil), r.pending...)
	r.mu.Unlock()

	for _, c := range pending {
		if err := r.apply(ctx, db, c); err != nil {
			return classify(fmt.Errorf("%s %T: %w", c.op, c.record, err), c.op)
		}
	}
	return nil
}

func (r *Repository[T]) apply(ctx context.Context, db bun.IDB, c change[T]) error {
	var err error
	switch c.op {
	case OpCreate:
		_, err = db.NewInsert().Model(c.record).Returning(r.handlers.PKColumn).Exec(ctx)
	case OpUpdate:
		_, err = db.NewUpdate().Model(c.record).WherePK().Exec(ctx)
	case OpDelete:
		_, err = db.NewDelete().Model(c.record).WherePK().Exec(ctx)
	default:
		err = fmt.Errorf("unsupported operation %d", c.op)
	}
	return err
}

// Persisted reports whether record carries a store assigned identity.
func (r *Repository[T]) Persisted(record *T) bool {
	return record != nil && r.handlers.GetID != nil && r.handlers.GetID(record) != 0
}

// Reset drops the staged changes after they were durably persisted.
func (r *Repository[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = nil
}

// Rollback drops the staged changes and clears the identities that a failed
// persist may have written into staged creates.
func (r *Repository[T]) Rollback() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handlers.SetID != nil {
		for _, c := range r.pending {
			if c.op == OpCreate {
				r.handlers.SetID(c.record, 0)
			}
		}
	}
	r.pending = nil
}
