package commands

import (
	"errors"
	"time"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrReleaseStaleAssignmentsCommandIsNotConstructed = errors.New(
	"ReleaseStaleAssignmentsCommand must be created via NewReleaseStaleAssignmentsCommand constructor",
)

// ReleaseStaleAssignmentsCommand represents the operations timeout policy for
// stuck assignments: every order still in ready status whose assignment was
// established before the cutoff is released back into the dispatch pool.
type ReleaseStaleAssignmentsCommand struct { //nolint:recvcheck //using for validation
	cutoff time.Time

	guard guard.ConstructorGuard
}

// NewReleaseStaleAssignmentsCommand creates a command with the given cutoff.
func NewReleaseStaleAssignmentsCommand(cutoff time.Time) (ReleaseStaleAssignmentsCommand, error) {
	command := ReleaseStaleAssignmentsCommand{
		guard: guard.NewConstructorGuard(),
	}

	if cutoff.IsZero() {
		return ReleaseStaleAssignmentsCommand{}, errs.NewValueIsRequiredError("cutoff")
	}

	command.cutoff = cutoff
	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c ReleaseStaleAssignmentsCommand) Validate() error {
	return c.guard.Validate(ErrReleaseStaleAssignmentsCommandIsNotConstructed)
}

// Cutoff returns the assignment-age threshold.
func (c ReleaseStaleAssignmentsCommand) Cutoff() time.Time {
	return c.cutoff
}
