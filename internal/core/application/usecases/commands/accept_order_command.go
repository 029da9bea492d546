package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAcceptOrderCommandIsNotConstructed = errors.New(
	"AcceptOrderCommand must be created via NewAcceptOrderCommand constructor",
)

// AcceptOrderCommand represents an agent's attempt to claim a ready order
// from the dispatch pool.
type AcceptOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	agentID kernel.UUID

	guard guard.ConstructorGuard
}

// NewAcceptOrderCommand creates a command for an accept attempt.
func NewAcceptOrderCommand(orderID, agentID kernel.UUID) (AcceptOrderCommand, error) {
	command := AcceptOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setAgentID(agentID),
	); err != nil {
		return AcceptOrderCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c AcceptOrderCommand) Validate() error {
	return c.guard.Validate(ErrAcceptOrderCommandIsNotConstructed)
}

// OrderID returns the order being claimed.
func (c AcceptOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// AgentID returns the claiming agent.
func (c AcceptOrderCommand) AgentID() kernel.UUID {
	return c.agentID
}

func (c *AcceptOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *AcceptOrderCommand) setAgentID(agentID kernel.UUID) error {
	if err := agentID.Validate(); err != nil {
		return err
	}

	c.agentID = agentID
	return nil
}
