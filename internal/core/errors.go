package core

import (
	"errors"
	"fmt"
)

// ErrEntryNotFound is returned by an EntryStore when no record exists for a key
var ErrEntryNotFound = errors.New("entry not found")

// ValidationError reports a missing or malformed required field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid submission: %s %s", e.Field, e.Reason)
}

// PersistenceError reports that the entry store rejected or failed a write
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// AuditError reports a failed notification log write. It is never surfaced
// to callers.
type AuditError struct {
	Channel Channel
	Err     error
}

func (e *AuditError) Error() string {
	return fmt.Sprintf("notification log write failed for %s: %v", e.Channel, e.Err)
}

func (e *AuditError) Unwrap() error { return e.Err }

// DispatchError reports an outbound delivery failure
type DispatchError struct {
	Channel Channel
	Err     error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch failed for %s: %v", e.Channel, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }
