package ports

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// ErrAgentNotAvailable is returned by NearbyOrders when the querying agent has
// no live presence record: it never pinged, went offline, or its last
// heartbeat fell outside the liveness window.
var ErrAgentNotAvailable = errors.New("agent has no live presence record")

// ReadyOrder is the dispatch pool's view of an order awaiting an agent:
// identity, the two leg endpoints and when it entered the pool. Derived from
// the order aggregate when it transitions into ready.
type ReadyOrder struct {
	OrderID        kernel.UUID
	VendorID       kernel.UUID
	PickupLocation kernel.Location
	DropLocation   kernel.Location
	PostedAt       time.Time
}

// DispatchCandidate is one row of an agent's "orders near me" feed. Distances
// are computed on demand from the agent's last reported location and never
// persisted.
type DispatchCandidate struct {
	OrderID          kernel.UUID
	VendorID         kernel.UUID
	PickupLocation   kernel.Location
	DropLocation     kernel.Location
	PickupDistanceKm float64
	DropDistanceKm   float64
	TotalDistanceKm  float64
	PostedAt         time.Time
}

// DispatchIndex maintains the two runtime registries of the dispatch engine:
// the pool of ready unassigned orders and the presence records of online
// agents. Both are keyed stores with atomic per-key access; operations on
// distinct keys never block each other.
//
// The index is a performance surface, not the source of truth: the order
// repository remains authoritative, and the pool is rebuilt from it at
// startup. A missed retraction therefore costs a losing accept attempt, never
// a double assignment.
type DispatchIndex interface {
	// PublishReady puts an order into the dispatch pool. Publishing an
	// already-present order refreshes it in place (idempotent).
	PublishReady(ctx context.Context, ready ReadyOrder) error

	// Retract removes an order from the dispatch pool. Retracting an absent
	// order is a no-op.
	Retract(ctx context.Context, orderID kernel.UUID) error

	// UpdateAgentLocation creates or refreshes the agent's presence record
	// from a location ping.
	UpdateAgentLocation(ctx context.Context, agentID kernel.UUID, location kernel.Location, seenAt time.Time) error

	// MarkAgentOffline drops the agent out of dispatch eligibility without
	// discarding the last reported location.
	MarkAgentOffline(ctx context.Context, agentID kernel.UUID) error

	// NearbyOrders answers "orders within radiusKm of the agent", sorted by
	// pickup distance then posting time, capped at limit. Fails with
	// ErrAgentNotAvailable when the agent has no live presence record.
	NearbyOrders(ctx context.Context, agentID kernel.UUID, radiusKm float64, limit int) ([]DispatchCandidate, error)

	// RemoveAgentsInactiveSince prunes presence records whose last heartbeat
	// is older than the cutoff, returning how many were removed.
	RemoveAgentsInactiveSince(ctx context.Context, cutoff time.Time) (int, error)
}
