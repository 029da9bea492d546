package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/ports"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	stuckAssignmentJob      *StuckAssignmentJob
	agentPresenceCleanupJob *AgentPresenceCleanupJob
}

// NewJobManager creates a job manager with all required jobs.
func NewJobManager(
	releaseStaleHandler commands.ReleaseStaleAssignmentsCommandHandler,
	index ports.DispatchIndex,
	assignmentTimeout time.Duration,
	presenceMaxAge time.Duration,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		stuckAssignmentJob:      NewStuckAssignmentJob(releaseStaleHandler, assignmentTimeout, logger),
		agentPresenceCleanupJob: NewAgentPresenceCleanupJob(index, presenceMaxAge, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.stuckAssignmentJob.Start(); err != nil {
		return fmt.Errorf("failed to start stuck assignment job: %w", err)
	}

	if err := jm.agentPresenceCleanupJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.stuckAssignmentJob.Stop()
		return fmt.Errorf("failed to start agent presence cleanup job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.stuckAssignmentJob.Stop()
	jm.agentPresenceCleanupJob.Stop()
}
