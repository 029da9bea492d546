package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrReleaseOrderCommandIsNotConstructed = errors.New(
	"ReleaseOrderCommand must be created via NewReleaseOrderCommand constructor",
)

// ReleaseOrderCommand represents a request to give up an assignment while the
// order is still ready, returning it to the dispatch pool.
type ReleaseOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	agentID kernel.UUID

	guard guard.ConstructorGuard
}

// NewReleaseOrderCommand creates a command to release an assignment.
func NewReleaseOrderCommand(orderID, agentID kernel.UUID) (ReleaseOrderCommand, error) {
	command := ReleaseOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setAgentID(agentID),
	); err != nil {
		return ReleaseOrderCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c ReleaseOrderCommand) Validate() error {
	return c.guard.Validate(ErrReleaseOrderCommandIsNotConstructed)
}

// OrderID returns the order whose assignment is released.
func (c ReleaseOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// AgentID returns the agent giving up the assignment.
func (c ReleaseOrderCommand) AgentID() kernel.UUID {
	return c.agentID
}

func (c *ReleaseOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *ReleaseOrderCommand) setAgentID(agentID kernel.UUID) error {
	if err := agentID.Validate(); err != nil {
		return err
	}

	c.agentID = agentID
	return nil
}
