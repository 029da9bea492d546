package agent

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Domain errors for agent operations.
var (
	// ErrAgentIsNotConstructed is returned when using an improperly initialized Agent.
	ErrAgentIsNotConstructed = errors.New("Agent must be created via NewAgent constructor")
	// ErrLastSeenIsRequired is returned when the last-seen timestamp is missing.
	ErrLastSeenIsRequired = errs.NewValueIsRequiredError("lastSeenAt")
)

// Agent is the presence record of a delivery agent: who they are, where they
// last reported themselves, and when. Presence is the only agent state the
// dispatch side cares about; profile data lives elsewhere.
//
// An agent is eligible for dispatch when they are online and their last
// heartbeat falls inside the staleness window. Eligibility is evaluated at
// query time rather than stored, so a stopped heartbeat degrades the agent
// without any write.
type Agent struct {
	// id uniquely identifies the agent
	id kernel.UUID
	// location is the last reported position
	location kernel.Location
	// lastSeenAt is when the location was last refreshed
	lastSeenAt time.Time
	// online is the agent's self-declared availability
	online bool
	// guard ensures the agent was properly constructed
	guard guard.ConstructorGuard
}

// NewAgent creates an online Agent from its first location report.
//
// Parameters:
//   - id: Unique identifier for the agent (must be valid UUID)
//   - location: Last reported position (must be valid)
//   - seenAt: Timestamp of the report (must be non-zero)
//
// Returns:
//   - *Agent: A fully initialized agent, online and freshly seen
//   - error: Validation error if any parameter is invalid
func NewAgent(id kernel.UUID, location kernel.Location, seenAt time.Time) (*Agent, error) {
	agent := &Agent{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		agent.setID(id),
		agent.setLocation(location),
		agent.setLastSeenAt(seenAt),
	); err != nil {
		return nil, err
	}

	agent.online = true
	return agent, nil
}

// RestoreAgent reconstructs an Agent from persistent storage, preserving its
// online flag. The restored agent behaves identically to one built through
// normal domain operations.
func RestoreAgent(id kernel.UUID, location kernel.Location, lastSeenAt time.Time, online bool) (*Agent, error) {
	agent, err := NewAgent(id, location, lastSeenAt)
	if err != nil {
		return nil, err
	}

	agent.online = online
	return agent, nil
}

// Validate checks if the Agent was properly constructed using the NewAgent
// constructor. The zero value of Agent is invalid and will fail this check.
func (a *Agent) Validate() error {
	if a == nil {
		return ErrAgentIsNotConstructed
	}
	return a.guard.Validate(ErrAgentIsNotConstructed)
}

// ID returns the unique identifier of the agent.
func (a *Agent) ID() kernel.UUID {
	return a.id
}

// Location returns the last reported position of the agent.
func (a *Agent) Location() kernel.Location {
	return a.location
}

// LastSeenAt returns when the agent's location was last refreshed.
func (a *Agent) LastSeenAt() time.Time {
	return a.lastSeenAt
}

// IsOnline reports the agent's self-declared availability.
func (a *Agent) IsOnline() bool {
	return a.online
}

// IsEqual compares two agents for equality based on their unique identifiers.
func (a *Agent) IsEqual(other *Agent) bool {
	if other == nil {
		return false
	}
	return a.id.IsEqual(other.id)
}

// Refresh records a new location report. The agent is marked online and the
// last-seen timestamp advances; a stale or offline agent comes back into
// dispatch eligibility through this path.
func (a *Agent) Refresh(location kernel.Location, seenAt time.Time) error {
	if err := errors.Join(
		a.setLocation(location),
		a.setLastSeenAt(seenAt),
	); err != nil {
		return err
	}

	a.online = true
	return nil
}

// GoOffline marks the agent unavailable for dispatch. The last reported
// location is kept; only eligibility changes.
func (a *Agent) GoOffline() {
	a.online = false
}

// IsEligible reports whether the agent can be offered orders at the given
// instant: online, with a heartbeat no older than the staleness window.
func (a *Agent) IsEligible(now time.Time, window time.Duration) bool {
	if !a.online {
		return false
	}
	return now.Sub(a.lastSeenAt) <= window
}

// setID sets the agent's unique identifier with validation.
func (a *Agent) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	a.id = id
	return nil
}

// setLocation sets the agent's last reported position with validation.
func (a *Agent) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}

	a.location = location
	return nil
}

// setLastSeenAt sets the heartbeat timestamp with validation.
func (a *Agent) setLastSeenAt(seenAt time.Time) error {
	if seenAt.IsZero() {
		return ErrLastSeenIsRequired
	}

	a.lastSeenAt = seenAt
	return nil
}
