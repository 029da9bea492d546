package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrTransitionOrderCommandIsNotConstructed = errors.New(
	"TransitionOrderCommand must be created via NewTransitionOrderCommand constructor",
)

// TransitionOrderCommand represents a request to move an order to a new
// lifecycle status. The acting party (ID and role) is recorded in the status
// history; the role additionally drives the cancellation earnings policy.
type TransitionOrderCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	target    order.Status
	actorID   string
	actorRole order.ActorRole
	note      string

	guard guard.ConstructorGuard
}

// NewTransitionOrderCommand creates a command to transition an order.
// The note is optional; everything else is validated here. Whether the
// transition itself is legal is decided by the aggregate.
func NewTransitionOrderCommand(
	orderID kernel.UUID,
	target order.Status,
	actorID string,
	actorRole order.ActorRole,
	note string,
) (TransitionOrderCommand, error) {
	command := TransitionOrderCommand{
		note:  note,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setTarget(target),
		command.setActor(actorID, actorRole),
	); err != nil {
		return TransitionOrderCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c TransitionOrderCommand) Validate() error {
	return c.guard.Validate(ErrTransitionOrderCommandIsNotConstructed)
}

// OrderID returns the order to transition.
func (c TransitionOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Target returns the requested lifecycle status.
func (c TransitionOrderCommand) Target() order.Status {
	return c.target
}

// ActorID returns the identifier of the acting party.
func (c TransitionOrderCommand) ActorID() string {
	return c.actorID
}

// ActorRole returns the role of the acting party.
func (c TransitionOrderCommand) ActorRole() order.ActorRole {
	return c.actorRole
}

// Note returns the optional free-form note for the history entry.
func (c TransitionOrderCommand) Note() string {
	return c.note
}

func (c *TransitionOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *TransitionOrderCommand) setTarget(target order.Status) error {
	if err := target.Validate(); err != nil {
		return err
	}

	c.target = target
	return nil
}

func (c *TransitionOrderCommand) setActor(actorID string, actorRole order.ActorRole) error {
	if actorID == "" {
		return errs.NewValueIsRequiredError("actorID")
	}
	if err := actorRole.Validate(); err != nil {
		return err
	}

	c.actorID = actorID
	c.actorRole = actorRole
	return nil
}
