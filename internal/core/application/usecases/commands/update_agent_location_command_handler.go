package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// UpdateAgentLocationCommandHandler feeds location pings into the dispatch
// index. Presence is runtime state, not durable state, so there is no unit of
// work here; the index owns atomicity per agent key.
type UpdateAgentLocationCommandHandler struct {
	index ports.DispatchIndex
}

// NewUpdateAgentLocationCommandHandler creates a handler for location pings.
func NewUpdateAgentLocationCommandHandler(index ports.DispatchIndex) UpdateAgentLocationCommandHandler {
	return UpdateAgentLocationCommandHandler{
		index: index,
	}
}

// Handle processes the location ping, creating or refreshing the agent's
// presence record.
func (h UpdateAgentLocationCommandHandler) Handle(ctx context.Context, command UpdateAgentLocationCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	return h.index.UpdateAgentLocation(ctx, command.AgentID(), command.Location(), command.SeenAt())
}
