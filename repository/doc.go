// Package repository provides an entity agnostic repository over bun.
//
// # Overview
//
// Repository[T] reads straight from the store handle it was created with and
// stages every write. Staged changes reach the store only when Persist runs on
// a transaction supplied by the caller, which is how the uow package commits a
// whole business operation at once:
//
//	repo := repository.New[Hero](conn, handlers)
//	repo.Create(&Hero{Name: "Loki"})          // staged, no SQL yet
//	err := repo.Persist(ctx, tx)              // INSERT ... RETURNING id
//
// # Criteria
//
// FindByCondition accepts SelectCriteria, plain functions over *bun.SelectQuery,
// so predicates are evaluated by the store:
//
//	repo.FindByCondition(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
//		return q.Where("?TableAlias.place = ?", "Asgard")
//	})
//
// # Errors
//
// Constraint failures raised by postgres (SQLSTATE class 23) or sqlite
// (SQLITE_CONSTRAINT) surface from Persist as *ConstraintViolation, which
// matches ErrConstraintViolation with errors.Is. Staging never fails.
package repository
