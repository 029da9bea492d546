package commands

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ReleaseStaleAssignmentsCommandHandler implements the explicit timeout
// policy for assignments that never progressed to pickup. The core engine
// runs no timer of its own; a scheduled job drives this handler.
//
// Each stuck order is released through the same conditional write as a
// voluntary release, so an order that advances to pickup between the sweep's
// read and its write is skipped, never force-cleared.
type ReleaseStaleAssignmentsCommandHandler struct {
	uowFactory OrderUoWFactory
	index      ports.DispatchIndex
	logger     *slog.Logger
}

// NewReleaseStaleAssignmentsCommandHandler creates a handler for the
// stuck-assignment sweep.
func NewReleaseStaleAssignmentsCommandHandler(
	uowFactory OrderUoWFactory,
	index ports.DispatchIndex,
	logger *slog.Logger,
) ReleaseStaleAssignmentsCommandHandler {
	return ReleaseStaleAssignmentsCommandHandler{
		uowFactory: uowFactory,
		index:      index,
		logger:     logger.With("component", "release_stale_assignments_handler"),
	}
}

// Handle processes the sweep command and returns how many assignments were
// released.
func (h ReleaseStaleAssignmentsCommandHandler) Handle(
	ctx context.Context,
	command ReleaseStaleAssignmentsCommand,
) (int, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	stuck, err := repo.GetReadyAssignedBefore(ctx, command.Cutoff())
	if err != nil {
		return 0, err
	}

	released := make([]*order.Order, 0, len(stuck))
	for _, aggregate := range stuck {
		agentID := aggregate.AgentID()
		if agentID == nil {
			continue
		}

		if err = aggregate.Unassign(*agentID); err != nil {
			continue
		}

		err = repo.ReleaseOrder(ctx, aggregate.ID(), *agentID)
		if errors.Is(err, errs.ErrPreconditionFailed) {
			// The order moved on (picked up or re-released) since the read.
			continue
		}
		if err != nil {
			return 0, err
		}

		released = append(released, aggregate)
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	if len(released) == 0 {
		return 0, nil
	}

	// Republishes are rechecked the same way a voluntary release's republish
	// is: an accept committing between the sweep's commit and its publish must
	// not leave an assigned order in the pool.
	repo = uow.OrderRepository()
	for _, aggregate := range released {
		ready := ports.ReadyOrder{
			OrderID:        aggregate.ID(),
			VendorID:       aggregate.VendorID(),
			PickupLocation: aggregate.PickupLocation(),
			DropLocation:   aggregate.DropLocation(),
			PostedAt:       command.Cutoff(),
		}
		if readyAt := aggregate.ReadyAt(); readyAt != nil {
			ready.PostedAt = *readyAt
		}

		if err = h.index.PublishReady(ctx, ready); err != nil {
			h.logger.Error("failed to republish released order to dispatch pool",
				"order_id", aggregate.ID().String(), "error", err)
			continue
		}

		retractIfTaken(ctx, repo, h.index, aggregate.ID(), h.logger)
	}

	return len(released), nil
}
