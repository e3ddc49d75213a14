package repository

import (
	"errors"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrConstraintViolation matches every *ConstraintViolation.
var ErrConstraintViolation = errors.New("constraint violation")

// ConstraintViolation reports a store level constraint failure raised while
// persisting a staged change.
type ConstraintViolation struct {
	Op         Operation
	Constraint string
	Err        error
}

// Error implements the error interface.
func (e *ConstraintViolation) Error() string {
	msg := "constraint violation on " + e.Op.String()
	if e.Constraint != "" {
		msg += " (" + e.Constraint + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConstraintViolation) Unwrap() error { return e.Err }

// Is reports true for ErrConstraintViolation.
func (e *ConstraintViolation) Is(target error) bool {
	return target == ErrConstraintViolation
}

// classify wraps driver constraint errors from postgres and sqlite into a
// *ConstraintViolation. Other errors are returned unchanged.
func classify(err error, op Operation) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "23" {
		return &ConstraintViolation{Op: op, Constraint: pqErr.Constraint, Err: err}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.Code == sqlite3.ErrConstraint {
		return &ConstraintViolation{Op: op, Constraint: liteErr.ExtendedCode.Error(), Err: err}
	}

	return err
}
