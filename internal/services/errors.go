package services

import (
	"errors"
	"fmt"
)

// Error kinds. Specific failures wrap one of these so callers can map them to
// HTTP statuses with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("duplicate key")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

// DomainError pairs a human-readable message with one of the error kinds.
type DomainError struct {
	kind error
	msg  string
}

func (e *DomainError) Error() string { return e.msg }

func (e *DomainError) Unwrap() error { return e.kind }

func notFoundf(format string, args ...any) error {
	return &DomainError{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

func duplicatef(format string, args ...any) error {
	return &DomainError{kind: ErrDuplicate, msg: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...any) error {
	return &DomainError{kind: ErrConflict, msg: fmt.Sprintf(format, args...)}
}

func validationf(format string, args ...any) error {
	return &DomainError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}
