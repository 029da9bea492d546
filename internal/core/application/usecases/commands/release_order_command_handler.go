package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// ReleaseOrderCommandHandler clears an assignment that never progressed to
// pickup and republishes the order to the dispatch pool. The repository write
// is conditional (still ready, still held by this agent), so a release racing
// a pickup loses cleanly with errs.ErrPreconditionFailed.
type ReleaseOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	index      ports.DispatchIndex
	logger     *slog.Logger
}

// NewReleaseOrderCommandHandler creates a handler for release operations.
func NewReleaseOrderCommandHandler(
	uowFactory OrderUoWFactory,
	index ports.DispatchIndex,
	logger *slog.Logger,
) ReleaseOrderCommandHandler {
	return ReleaseOrderCommandHandler{
		uowFactory: uowFactory,
		index:      index,
		logger:     logger.With("component", "release_order_handler"),
	}
}

// Handle processes the release command.
// After the conditional clear commits, the order goes back into the dispatch
// pool; a republish failure is logged only, because the pool is rebuilt from
// the repository at startup and the order remains acceptable through it. A
// successful republish is rechecked against the repository, so an accept that
// committed in between does not leave an assigned order in the pool.
func (h ReleaseOrderCommandHandler) Handle(ctx context.Context, command ReleaseOrderCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	aggregate, err := repo.Get(ctx, command.OrderID())
	if err != nil {
		return err
	}

	if err = aggregate.Unassign(command.AgentID()); err != nil {
		return err
	}

	if err = repo.ReleaseOrder(ctx, command.OrderID(), command.AgentID()); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	postedAt := time.Now()
	if readyAt := aggregate.ReadyAt(); readyAt != nil {
		postedAt = *readyAt
	}

	if err = h.index.PublishReady(ctx, ports.ReadyOrder{
		OrderID:        aggregate.ID(),
		VendorID:       aggregate.VendorID(),
		PickupLocation: aggregate.PickupLocation(),
		DropLocation:   aggregate.DropLocation(),
		PostedAt:       postedAt,
	}); err != nil {
		h.logger.Error("failed to republish released order to dispatch pool",
			"order_id", command.OrderID().String(), "error", err)
		return nil
	}

	retractIfTaken(ctx, uow.OrderRepository(), h.index, command.OrderID(), h.logger)

	return nil
}

// retractIfTaken re-reads a just-republished order and retracts it when it is
// no longer ready and unassigned. An accept can commit in the window between
// the release commit and the republish; its retraction then lands before the
// publish, which would otherwise resurrect the pool entry and keep serving an
// assigned order until the next retraction.
func retractIfTaken(
	ctx context.Context,
	repo ports.OrderRepository,
	index ports.DispatchIndex,
	orderID kernel.UUID,
	logger *slog.Logger,
) {
	current, err := repo.Get(ctx, orderID)
	if err != nil {
		logger.Error("failed to recheck republished order",
			"order_id", orderID.String(), "error", err)
		return
	}

	if current.Status() == order.Ready && current.AgentID() == nil {
		return
	}

	if err = index.Retract(ctx, orderID); err != nil {
		logger.Error("failed to retract republished order taken by another agent",
			"order_id", orderID.String(), "error", err)
	}
}
