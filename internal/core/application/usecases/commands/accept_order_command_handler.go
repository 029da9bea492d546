package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/ports"
)

// AcceptOrderCommandHandler serializes accept races: N agents claiming the
// same ready order produce exactly one winner. The mutual exclusion is a
// single conditional write in the repository (ready, unassigned, observed
// version), not a lock, so throughput scales with the number of distinct
// orders.
//
// Losers receive errs.ErrAlreadyAssigned and are expected to request a fresh
// nearby-orders list; the handler never retries an accept on their behalf.
type AcceptOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	index      ports.DispatchIndex
	logger     *slog.Logger
}

// NewAcceptOrderCommandHandler creates a handler for accept attempts.
func NewAcceptOrderCommandHandler(
	uowFactory OrderUoWFactory,
	index ports.DispatchIndex,
	logger *slog.Logger,
) AcceptOrderCommandHandler {
	return AcceptOrderCommandHandler{
		uowFactory: uowFactory,
		index:      index,
		logger:     logger.With("component", "accept_order_handler"),
	}
}

// Handle processes the accept command.
// Reads the order and applies the assignment to the aggregate first, so an
// order that was observed assigned fails with errs.ErrAlreadyAssigned and an
// order that is not ready fails with errs.ErrPreconditionFailed; only a race
// lost after this check surfaces ErrAlreadyAssigned from the conditional
// write. On success the order is retracted from the dispatch pool; a
// retraction failure is logged only, since losing acceptors are rejected by
// the conditional write regardless of pool contents.
func (h AcceptOrderCommandHandler) Handle(ctx context.Context, command AcceptOrderCommand) error {
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

	acceptedAt := time.Now()
	if err = aggregate.Assign(command.AgentID(), acceptedAt); err != nil {
		return err
	}

	if err = repo.AcceptOrder(ctx, command.OrderID(), command.AgentID(),
		aggregate.Version(), acceptedAt); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if err = h.index.Retract(ctx, command.OrderID()); err != nil {
		h.logger.Error("failed to retract accepted order from dispatch pool",
			"order_id", command.OrderID().String(), "error", err)
	}

	return nil
}
