package services

import (
	"errors"
	"fmt"
)

// ErrStatementNotFound is returned when no statement matches the requested id
var ErrStatementNotFound = errors.New("statement not found")

// ValidationError rejects a malformed request; it is never retried
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// PersistenceError wraps a failed store read or write
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// GenerationError wraps a failed or unparsable AI generation
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// persistence passes ErrStatementNotFound through untouched and wraps anything else
func persistence(op string, err error) error {
	if errors.Is(err, ErrStatementNotFound) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
