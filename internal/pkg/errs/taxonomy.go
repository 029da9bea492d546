package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Recoverable dispatch-engine failures. These sentinels form the error
// taxonomy that repositories, domain aggregates and handlers share; the HTTP
// adapter maps them to response codes with errors.Is.
var (
	// ErrInvalidTransition indicates a status change outside the allowed transition table.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrVersionConflict indicates that a concurrent writer moved the aggregate past
	// the version the caller observed.
	ErrVersionConflict = errors.New("version conflict: order was modified concurrently")
	// ErrAlreadyAssigned indicates that another agent won the accept race for an order.
	ErrAlreadyAssigned = errors.New("order is already assigned to an agent")
	// ErrPreconditionFailed indicates an operation whose prerequisites do not hold,
	// such as advancing to picked_up without an assignment.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrDuplicateEntry indicates an attempted second write of an append-once record.
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// InvalidTransitionError carries the rejected transition together with the
// targets that would have been valid, so callers can surface "invalid status
// transition, allowed next: ..." messages.
type InvalidTransitionError struct {
	From    string
	To      string
	Allowed []string
}

// NewInvalidTransitionError creates an InvalidTransitionError for the rejected
// from -> to change with the list of allowed target statuses.
func NewInvalidTransitionError(from, to string, allowed []string) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to, Allowed: allowed}
}

func (e *InvalidTransitionError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("%s: %s -> %s (terminal status)", ErrInvalidTransition, e.From, e.To)
	}
	return fmt.Sprintf("%s: %s -> %s (allowed next: %s)",
		ErrInvalidTransition, e.From, e.To, strings.Join(e.Allowed, ", "))
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// PreconditionFailedError attaches a human-readable reason to ErrPreconditionFailed.
type PreconditionFailedError struct {
	Reason string
}

// NewPreconditionFailedError creates a PreconditionFailedError with the given reason.
func NewPreconditionFailedError(reason string) *PreconditionFailedError {
	return &PreconditionFailedError{Reason: reason}
}

func (e *PreconditionFailedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPreconditionFailed, e.Reason)
}

func (e *PreconditionFailedError) Unwrap() error {
	return ErrPreconditionFailed
}
