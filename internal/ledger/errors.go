package ledger

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Update when the entry does not exist.
var ErrNotFound = errors.New("work entry not found")

// ValidationError reports caller-supplied data that violates a constraint.
// Field is empty when the problem is not tied to one field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PersistenceError is a failed store operation. Its message is safe to show
// to the user; the cause is only reachable through Unwrap.
type PersistenceError struct {
	Op  string // "save", "update" or "delete"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("Could not %s work entry. Please try again.", e.Op)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ToggleError is a failed paid/unpaid change.
type ToggleError struct {
	WindowEndDate string
	Err           error
}

func (e *ToggleError) Error() string {
	return "Could not update payment status. Please try again."
}

func (e *ToggleError) Unwrap() error { return e.Err }

// AggregateRefreshError is a failed recomputation of a window total.
type AggregateRefreshError struct {
	WindowEndDate string
	Err           error
}

func (e *AggregateRefreshError) Error() string {
	return fmt.Sprintf("refreshing total of window %s: %v", e.WindowEndDate, e.Err)
}

func (e *AggregateRefreshError) Unwrap() error { return e.Err }
