package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/guard"
)

var ErrAgentOfflineCommandIsNotConstructed = errors.New(
	"AgentOfflineCommand must be created via NewAgentOfflineCommand constructor",
)

// AgentOfflineCommand represents an agent's explicit sign-off from dispatch.
// Going silent achieves the same thing after the liveness window; this is the
// immediate path.
type AgentOfflineCommand struct { //nolint:recvcheck //using for validation
	agentID kernel.UUID

	guard guard.ConstructorGuard
}

// NewAgentOfflineCommand creates a command for an explicit sign-off.
func NewAgentOfflineCommand(agentID kernel.UUID) (AgentOfflineCommand, error) {
	command := AgentOfflineCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := agentID.Validate(); err != nil {
		return AgentOfflineCommand{}, err
	}

	command.agentID = agentID
	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c AgentOfflineCommand) Validate() error {
	return c.guard.Validate(ErrAgentOfflineCommandIsNotConstructed)
}

// AgentID returns the agent signing off.
func (c AgentOfflineCommand) AgentID() kernel.UUID {
	return c.agentID
}

// AgentOfflineCommandHandler marks an agent ineligible for dispatch in the
// index.
type AgentOfflineCommandHandler struct {
	index ports.DispatchIndex
}

// NewAgentOfflineCommandHandler creates a handler for explicit sign-offs.
func NewAgentOfflineCommandHandler(index ports.DispatchIndex) AgentOfflineCommandHandler {
	return AgentOfflineCommandHandler{
		index: index,
	}
}

// Handle processes the sign-off.
func (h AgentOfflineCommandHandler) Handle(ctx context.Context, command AgentOfflineCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	return h.index.MarkAgentOffline(ctx, command.AgentID())
}
