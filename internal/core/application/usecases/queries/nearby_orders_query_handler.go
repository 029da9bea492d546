package queries

import (
	"context"

	"dispatch/internal/core/ports"
)

// NearbyOrdersQueryHandler answers an agent's "orders near me" poll from the
// dispatch index. The index computes distances against the agent's last
// reported location, so the handler needs no repository access; a stale or
// offline agent gets ports.ErrAgentNotAvailable rather than an empty feed.
type NearbyOrdersQueryHandler struct {
	index ports.DispatchIndex
}

// NewNearbyOrdersQueryHandler creates a handler for nearby-orders polls.
func NewNearbyOrdersQueryHandler(index ports.DispatchIndex) NearbyOrdersQueryHandler {
	return NearbyOrdersQueryHandler{index: index}
}

// Handle executes the poll. Candidates come back sorted by pickup distance,
// then posting time, and never include assigned orders or orders beyond the
// radius.
func (h NearbyOrdersQueryHandler) Handle(
	ctx context.Context,
	query NearbyOrdersQuery,
) ([]ports.DispatchCandidate, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	return h.index.NearbyOrders(ctx, query.AgentID(), query.RadiusKm(), query.Limit())
}
