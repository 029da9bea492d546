package jobs

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// StuckAssignmentJob periodically releases assignments that never progressed
// to pickup, returning the orders to the dispatch pool. The sweep runs every
// 30 seconds; the assignment timeout itself is configuration.
type StuckAssignmentJob struct {
	handler commands.ReleaseStaleAssignmentsCommandHandler
	timeout time.Duration
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewStuckAssignmentJob creates the sweep job. Assignments older than the
// timeout are released on each run.
func NewStuckAssignmentJob(
	handler commands.ReleaseStaleAssignmentsCommandHandler,
	timeout time.Duration,
	logger *slog.Logger,
) *StuckAssignmentJob {
	return &StuckAssignmentJob{
		handler: handler,
		timeout: timeout,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "stuck_assignment_job"),
	}
}

// Start begins the sweep on a 30-second schedule.
func (j *StuckAssignmentJob) Start() error {
	_, err := j.cron.AddFunc("*/30 * * * * *", func() {
		ctx := context.Background()

		cmd, err := commands.NewReleaseStaleAssignmentsCommand(time.Now().Add(-j.timeout))
		if err != nil {
			j.logger.ErrorContext(ctx, "failed to build stuck assignment sweep command", "error", err)
			return
		}

		released, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "stuck assignment sweep failed", "error", err)
			return
		}

		if released > 0 {
			j.logger.InfoContext(ctx, "released stuck assignments", "count", released)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "stuck assignment job started",
		"timeout", j.timeout.String())
	return nil
}

// Stop stops the sweep.
func (j *StuckAssignmentJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "stuck assignment job stopped")
}
