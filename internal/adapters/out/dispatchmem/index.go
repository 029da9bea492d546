// Package dispatchmem implements the dispatch index as in-process concurrent
// storage: one keyed map for the ready pool and one for agent presence, both
// behind a single read-write mutex. Suitable for a single-instance
// deployment; the interface allows swapping in a shared keyed store without
// touching the core.
package dispatchmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// Index is the in-memory dispatch index. The zero value is not usable;
// create instances via NewIndex.
//
// The index is not the source of truth for assignments: accept races are
// decided by the order repository's conditional write, so a stale pool entry
// costs a losing accept attempt, never a double assignment.
type Index struct {
	mu sync.RWMutex
	// pool holds ready unassigned orders keyed by order ID
	pool map[kernel.UUID]ports.ReadyOrder
	// agents holds presence records keyed by agent ID
	agents map[kernel.UUID]*agent.Agent
	// window is the liveness window for dispatch eligibility
	window time.Duration
}

// NewIndex creates an empty dispatch index with the given liveness window.
// Agents whose last heartbeat is older than the window are excluded from
// matching without an explicit go-offline action.
func NewIndex(livenessWindow time.Duration) *Index {
	return &Index{
		pool:   make(map[kernel.UUID]ports.ReadyOrder),
		agents: make(map[kernel.UUID]*agent.Agent),
		window: livenessWindow,
	}
}

// PublishReady puts an order into the dispatch pool, replacing any existing
// entry for the same order.
func (i *Index) PublishReady(_ context.Context, ready ports.ReadyOrder) error {
	if err := ready.OrderID.Validate(); err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	i.pool[ready.OrderID] = ready
	return nil
}

// Retract removes an order from the dispatch pool. Absent orders are a no-op
// so retraction can be retried freely.
func (i *Index) Retract(_ context.Context, orderID kernel.UUID) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	delete(i.pool, orderID)
	return nil
}

// UpdateAgentLocation creates or refreshes the agent's presence record.
func (i *Index) UpdateAgentLocation(
	_ context.Context,
	agentID kernel.UUID,
	location kernel.Location,
	seenAt time.Time,
) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if existing, ok := i.agents[agentID]; ok {
		return existing.Refresh(location, seenAt)
	}

	created, err := agent.NewAgent(agentID, location, seenAt)
	if err != nil {
		return err
	}

	i.agents[agentID] = created
	return nil
}

// MarkAgentOffline drops the agent out of dispatch eligibility. Unknown
// agents are a no-op.
func (i *Index) MarkAgentOffline(_ context.Context, agentID kernel.UUID) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if existing, ok := i.agents[agentID]; ok {
		existing.GoOffline()
	}
	return nil
}

// NearbyOrders computes the agent's feed: pool orders whose pickup is within
// radiusKm of the agent's last reported location, sorted by pickup distance
// then posting time, capped at limit.
func (i *Index) NearbyOrders(
	_ context.Context,
	agentID kernel.UUID,
	radiusKm float64,
	limit int,
) ([]ports.DispatchCandidate, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	requester, ok := i.agents[agentID]
	if !ok || !requester.IsEligible(time.Now(), i.window) {
		return nil, ports.ErrAgentNotAvailable
	}

	origin := requester.Location()
	candidates := make([]ports.DispatchCandidate, 0, len(i.pool))
	for _, ready := range i.pool {
		pickupDistance := origin.DistanceKmTo(ready.PickupLocation)
		if pickupDistance > radiusKm {
			continue
		}

		dropDistance := ready.PickupLocation.DistanceKmTo(ready.DropLocation)
		candidates = append(candidates, ports.DispatchCandidate{
			OrderID:          ready.OrderID,
			VendorID:         ready.VendorID,
			PickupLocation:   ready.PickupLocation,
			DropLocation:     ready.DropLocation,
			PickupDistanceKm: pickupDistance,
			DropDistanceKm:   dropDistance,
			TotalDistanceKm:  pickupDistance + dropDistance,
			PostedAt:         ready.PostedAt,
		})
	}

	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].PickupDistanceKm != candidates[b].PickupDistanceKm {
			return candidates[a].PickupDistanceKm < candidates[b].PickupDistanceKm
		}
		return candidates[a].PostedAt.Before(candidates[b].PostedAt)
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return candidates, nil
}

// RemoveAgentsInactiveSince prunes presence records whose last heartbeat is
// older than the cutoff, returning how many were removed.
func (i *Index) RemoveAgentsInactiveSince(_ context.Context, cutoff time.Time) (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	removed := 0
	for id, a := range i.agents {
		if a.LastSeenAt().Before(cutoff) {
			delete(i.agents, id)
			removed++
		}
	}

	return removed, nil
}

// PoolSize reports the number of orders currently in the dispatch pool.
// Used for startup logging and diagnostics.
func (i *Index) PoolSize() int {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return len(i.pool)
}
