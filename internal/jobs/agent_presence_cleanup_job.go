package jobs

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// AgentPresenceCleanupJob prunes presence records of agents that went silent.
// A stale record already blocks dispatch through the liveness check; the
// cleanup keeps the index from accumulating dead entries. Runs every minute.
type AgentPresenceCleanupJob struct {
	index  ports.DispatchIndex
	maxAge time.Duration
	cron   *cron.Cron
	logger *slog.Logger
}

// NewAgentPresenceCleanupJob creates the cleanup job. Presence records older
// than maxAge are removed on each run.
func NewAgentPresenceCleanupJob(
	index ports.DispatchIndex,
	maxAge time.Duration,
	logger *slog.Logger,
) *AgentPresenceCleanupJob {
	return &AgentPresenceCleanupJob{
		index:  index,
		maxAge: maxAge,
		cron:   cron.New(cron.WithSeconds()),
		logger: logger.With("component", "agent_presence_cleanup_job"),
	}
}

// Start begins the cleanup on a one-minute schedule.
func (j *AgentPresenceCleanupJob) Start() error {
	_, err := j.cron.AddFunc("0 * * * * *", func() {
		ctx := context.Background()

		removed, err := j.index.RemoveAgentsInactiveSince(ctx, time.Now().Add(-j.maxAge))
		if err != nil {
			j.logger.ErrorContext(ctx, "agent presence cleanup failed", "error", err)
			return
		}

		if removed > 0 {
			j.logger.InfoContext(ctx, "pruned inactive agent presence records", "count", removed)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "agent presence cleanup job started",
		"max_age", j.maxAge.String())
	return nil
}

// Stop stops the cleanup.
func (j *AgentPresenceCleanupJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "agent presence cleanup job stopped")
}
