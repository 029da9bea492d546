package order

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
// It implements a state machine with a fixed transition table so that orders
// always follow the fulfillment workflow.
//
// State transitions:
//
//	pending -> confirmed -> preparing -> ready -> picked_up -> on_the_way -> delivered
//	    │          │            │          │          │            │
//	    └──────────┴────────────┴──────────┴──────────┴────────────┴──> cancelled
//
// delivered and cancelled are terminal. Cancellation is allowed from every
// non-terminal state.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status when an order is first placed.
	Pending

	// Confirmed indicates the vendor has accepted the order.
	Confirmed

	// Preparing indicates the vendor is preparing the order.
	Preparing

	// Ready indicates the order is packed and awaiting a delivery agent.
	// Orders in this status are surfaced through the dispatch pool.
	Ready

	// PickedUp indicates the assigned agent has collected the order.
	PickedUp

	// OnTheWay indicates the order is in transit to the delivery location.
	OnTheWay

	// Delivered indicates successful delivery. Terminal.
	Delivered

	// Cancelled indicates the order was cancelled. Terminal.
	Cancelled
)

// getStatusStrings returns a map of Status values to their wire names.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		Pending:   "pending",
		Confirmed: "confirmed",
		Preparing: "preparing",
		Ready:     "ready",
		PickedUp:  "picked_up",
		OnTheWay:  "on_the_way",
		Delivered: "delivered",
		Cancelled: "cancelled",
	}
}

// getTransitionTable returns the allowed targets per source status.
// Terminal statuses map to an empty set.
func getTransitionTable() map[Status][]Status {
	return map[Status][]Status{
		Pending:   {Confirmed, Cancelled},
		Confirmed: {Preparing, Cancelled},
		Preparing: {Ready, Cancelled},
		Ready:     {PickedUp, Cancelled},
		PickedUp:  {OnTheWay, Cancelled},
		OnTheWay:  {Delivered, Cancelled},
		Delivered: {},
		Cancelled: {},
	}
}

// StatusFromString parses a wire name ("pending", "picked_up", ...) into a Status.
// Unknown names fail with a ValueIsInvalidError.
func StatusFromString(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if name == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause(
		"status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is a member of the lifecycle.
// Unknown (0) and out-of-range values are invalid.
func (s Status) Validate() error {
	if _, ok := getTransitionTable()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire name of the status, or "unknown" for invalid values.
// Implements fmt.Stringer.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// CanTransitionTo reports whether the transition table permits moving from s
// to target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range getTransitionTable()[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// AllowedTargets returns the statuses reachable from s in one transition.
// Used to build "invalid transition" messages listing the valid next states.
func (s Status) AllowedTargets() []Status {
	targets := getTransitionTable()[s]
	out := make([]Status, len(targets))
	copy(out, targets)
	return out
}

// allowedTargetNames renders AllowedTargets as wire names.
func (s Status) allowedTargetNames() []string {
	targets := s.AllowedTargets()
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.String()
	}
	return names
}
