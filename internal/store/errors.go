package store

import (
	"errors"
	"fmt"
)

// NotFoundError indicates a lookup for an entity that does not exist.
type NotFoundError struct {
	Entity string // "form", "submission", "version"
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// DuplicateError indicates an insert that would overwrite an existing
// entity. The existing row is left untouched.
type DuplicateError struct {
	Entity string
	ID     string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Entity, e.ID)
}

// StorageError wraps a lower-level database or serialization failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsDuplicate returns true if the error is a DuplicateError.
func IsDuplicate(err error) bool {
	var d *DuplicateError
	return errors.As(err, &d)
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
