package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a selector resolved to no entity.
	ErrNotFound = errors.New("not found")

	// ErrInvalidField indicates a value document contains a key that is not
	// allowed for the entity kind.
	ErrInvalidField = errors.New("invalid field")

	// ErrPathConflict indicates the URL path is already claimed by another
	// enabled service or content set.
	ErrPathConflict = errors.New("path conflict")

	// ErrAmbiguousSelection indicates a non-interactive call needed a human
	// to pick between several entities.
	ErrAmbiguousSelection = errors.New("ambiguous selection")

	// ErrOperationCancelled indicates the user aborted an interactive selection.
	ErrOperationCancelled = errors.New("operation cancelled")

	// ErrValidation indicates a malformed field value, e.g. a path without a
	// leading separator.
	ErrValidation = errors.New("validation error")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")
)
