// Package queries contains read-only operations in the CQRS architecture.
// Queries bypass the aggregate layer and read either the dispatch index or
// the database directly, returning presentation-shaped responses.
package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrNearbyOrdersQueryIsNotConstructed = errors.New(
	"NearbyOrdersQuery must be created via NewNearbyOrdersQuery constructor",
)

// Bounds for the nearby-orders feed. Radius and result count are capped so a
// single agent poll cannot scan or return the whole pool.
const (
	DefaultNearbyLimit = 20
	MaxNearbyLimit     = 100
	MaxNearbyRadiusKm  = 50.0
)

// NearbyOrdersQuery asks for the dispatch candidates around an agent's last
// reported position.
type NearbyOrdersQuery struct { //nolint:recvcheck //using for validation
	agentID  kernel.UUID
	radiusKm float64
	limit    int

	guard guard.ConstructorGuard
}

// NewNearbyOrdersQuery creates a nearby-orders query. The radius must fall in
// (0, MaxNearbyRadiusKm]; a non-positive limit selects the default and an
// oversized limit is clamped.
func NewNearbyOrdersQuery(agentID kernel.UUID, radiusKm float64, limit int) (NearbyOrdersQuery, error) {
	if err := agentID.Validate(); err != nil {
		return NearbyOrdersQuery{}, err
	}

	if radiusKm <= 0 || radiusKm > MaxNearbyRadiusKm {
		return NearbyOrdersQuery{}, errs.NewValueIsOutOfRangeError(
			"radiusKm", radiusKm, 0.0, MaxNearbyRadiusKm)
	}

	if limit <= 0 {
		limit = DefaultNearbyLimit
	}
	if limit > MaxNearbyLimit {
		limit = MaxNearbyLimit
	}

	return NearbyOrdersQuery{
		agentID:  agentID,
		radiusKm: radiusKm,
		limit:    limit,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q NearbyOrdersQuery) Validate() error {
	return q.guard.Validate(ErrNearbyOrdersQueryIsNotConstructed)
}

// AgentID returns the polling agent.
func (q NearbyOrdersQuery) AgentID() kernel.UUID {
	return q.agentID
}

// RadiusKm returns the search radius.
func (q NearbyOrdersQuery) RadiusKm() float64 {
	return q.radiusKm
}

// Limit returns the maximum number of candidates to return.
func (q NearbyOrdersQuery) Limit() int {
	return q.limit
}
