package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateAgentLocationCommandIsNotConstructed = errors.New(
	"UpdateAgentLocationCommand must be created via NewUpdateAgentLocationCommand constructor",
)

// UpdateAgentLocationCommand represents one location ping from an agent's
// update stream. Pings arrive every 10-30 seconds while the agent is online
// and are the only writer of the agent's presence record.
type UpdateAgentLocationCommand struct { //nolint:recvcheck //using for validation
	agentID  kernel.UUID
	location kernel.Location
	seenAt   time.Time

	guard guard.ConstructorGuard
}

// NewUpdateAgentLocationCommand creates a command from a location ping.
func NewUpdateAgentLocationCommand(
	agentID kernel.UUID,
	location kernel.Location,
	seenAt time.Time,
) (UpdateAgentLocationCommand, error) {
	command := UpdateAgentLocationCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setAgentID(agentID),
		command.setLocation(location),
		command.setSeenAt(seenAt),
	); err != nil {
		return UpdateAgentLocationCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c UpdateAgentLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateAgentLocationCommandIsNotConstructed)
}

// AgentID returns the reporting agent.
func (c UpdateAgentLocationCommand) AgentID() kernel.UUID {
	return c.agentID
}

// Location returns the reported position.
func (c UpdateAgentLocationCommand) Location() kernel.Location {
	return c.location
}

// SeenAt returns the ping timestamp.
func (c UpdateAgentLocationCommand) SeenAt() time.Time {
	return c.seenAt
}

func (c *UpdateAgentLocationCommand) setAgentID(agentID kernel.UUID) error {
	if err := agentID.Validate(); err != nil {
		return err
	}

	c.agentID = agentID
	return nil
}

func (c *UpdateAgentLocationCommand) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}

	c.location = location
	return nil
}

func (c *UpdateAgentLocationCommand) setSeenAt(seenAt time.Time) error {
	if seenAt.IsZero() {
		return errs.NewValueIsRequiredError("seenAt")
	}

	c.seenAt = seenAt
	return nil
}
