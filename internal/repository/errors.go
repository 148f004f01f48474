package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// PersistenceError wraps a storage failure that aborted an ingestion run.
// ConstraintViolation is true when the failure was a unique-constraint hit,
// which happens when concurrent uploads race on the same natural key and the
// database arbitrates.
type PersistenceError struct {
	Op                  string
	ConstraintViolation bool
	Err                 error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// newPersistenceError classifies and wraps a gorm error.
func newPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{
		Op:                  op,
		ConstraintViolation: errors.Is(err, gorm.ErrDuplicatedKey),
		Err:                 err,
	}
}
