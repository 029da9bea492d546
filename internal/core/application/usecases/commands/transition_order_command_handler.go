package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// TransitionOrderCommandHandler is the write path of the order lifecycle: it
// applies a validated transition, writes the one-time earnings split on
// terminal statuses, and runs the dispatch-pool and notification side effects
// after the transaction commits.
//
// Concurrency: the repository update is conditional on the version the
// aggregate was loaded with. A version conflict is retried exactly once with
// a fresh read; a second conflict surfaces errs.ErrVersionConflict to the
// caller.
//
// Idempotence: repeating a terminal transition whose split is already
// recorded is a no-op success, so client retries after a lost response do not
// duplicate history entries or ledger rows.
type TransitionOrderCommandHandler struct {
	uowFactory   UoWFactory
	vendorConfig ports.VendorConfig
	index        ports.DispatchIndex
	publisher    ports.TransitionPublisher
	logger       *slog.Logger
}

// NewTransitionOrderCommandHandler creates a handler for order transitions.
func NewTransitionOrderCommandHandler(
	uowFactory UoWFactory,
	vendorConfig ports.VendorConfig,
	index ports.DispatchIndex,
	publisher ports.TransitionPublisher,
	logger *slog.Logger,
) TransitionOrderCommandHandler {
	return TransitionOrderCommandHandler{
		uowFactory:   uowFactory,
		vendorConfig: vendorConfig,
		index:        index,
		publisher:    publisher,
		logger:       logger.With("component", "transition_order_handler"),
	}
}

// transitionResult carries what the side-effect phase needs from a committed
// transition.
type transitionResult struct {
	oldStatus  order.Status
	newStatus  order.Status
	occurredAt time.Time
	ready      *ports.ReadyOrder
	orderID    string
}

// Handle processes the transition command. The transactional phase runs at
// most twice (one internal retry on a version conflict); side effects run
// once, after a successful commit, and their failures are logged rather than
// returned because the transition is already durable.
func (h TransitionOrderCommandHandler) Handle(ctx context.Context, command TransitionOrderCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	result, err := h.apply(ctx, command)
	if errors.Is(err, errs.ErrVersionConflict) {
		result, err = h.apply(ctx, command)
	}
	if err != nil {
		return err
	}

	if result != nil {
		h.runSideEffects(ctx, command, result)
	}

	return nil
}

// apply runs one transactional attempt. A nil result with nil error means the
// transition was a recognized retry of an already-committed terminal
// transition and nothing was written.
func (h TransitionOrderCommandHandler) apply(
	ctx context.Context,
	command TransitionOrderCommand,
) (*transitionResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	aggregate, err := repo.Get(ctx, command.OrderID())
	if err != nil {
		return nil, err
	}

	// Client retry of a committed terminal transition: nothing to do.
	if aggregate.Status() == command.Target() &&
		command.Target().IsTerminal() &&
		aggregate.EarningsSplit() != nil {
		return nil, nil
	}

	oldStatus := aggregate.Status()
	now := time.Now()

	if err = aggregate.TransitionTo(command.Target(), command.ActorID(), command.Note(), now); err != nil {
		return nil, err
	}

	// Payment bookkeeping rides the terminal transitions: an outstanding
	// payment is captured at delivery, a captured payment is refunded on
	// cancellation.
	if command.Target() == order.Delivered && aggregate.PaymentStatus() == order.PaymentPending {
		aggregate.MarkPaid()
	}
	if command.Target() == order.Cancelled && aggregate.PaymentStatus() == order.PaymentPaid {
		aggregate.MarkRefunded()
	}

	if command.Target().IsTerminal() {
		split, splitErr := h.computeSplit(ctx, aggregate, command)
		if splitErr != nil {
			return nil, splitErr
		}

		if err = aggregate.SetEarningsSplit(split); err != nil {
			return nil, err
		}

		if err = uow.EarningsLedger().Record(ctx, ports.LedgerEntry{
			OrderID:    aggregate.ID(),
			Split:      split,
			RecordedAt: now,
		}); err != nil {
			return nil, err
		}
	}

	if err = repo.Update(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	result := &transitionResult{
		oldStatus:  oldStatus,
		newStatus:  command.Target(),
		occurredAt: now,
		orderID:    aggregate.ID().String(),
	}

	if command.Target() == order.Ready {
		result.ready = &ports.ReadyOrder{
			OrderID:        aggregate.ID(),
			VendorID:       aggregate.VendorID(),
			PickupLocation: aggregate.PickupLocation(),
			DropLocation:   aggregate.DropLocation(),
			PostedAt:       now,
		}
	}

	return result, nil
}

// computeSplit resolves the vendor's commercial configuration and computes
// the terminal split for the (already transitioned) aggregate.
func (h TransitionOrderCommandHandler) computeSplit(
	ctx context.Context,
	aggregate *order.Order,
	command TransitionOrderCommand,
) (order.EarningsSplit, error) {
	rate, err := h.vendorConfig.GetCommissionRate(ctx, aggregate.VendorID())
	if err != nil {
		return order.EarningsSplit{}, err
	}

	feeTable, err := h.vendorConfig.GetDeliveryFeeTable(ctx)
	if err != nil {
		return order.EarningsSplit{}, err
	}

	calculator, err := services.NewEarningsCalculator(feeTable)
	if err != nil {
		return order.EarningsSplit{}, err
	}

	if command.Target() == order.Delivered {
		return calculator.ComputeDelivered(aggregate, rate)
	}
	return calculator.ComputeCancelled(aggregate, rate, command.ActorRole())
}

// runSideEffects updates the dispatch pool and emits the transition event.
// The transition is already committed, so failures here are logged and
// swallowed; the pool is rebuilt at startup and consumers get at-least-once
// delivery, not exactly-once.
func (h TransitionOrderCommandHandler) runSideEffects(
	ctx context.Context,
	command TransitionOrderCommand,
	result *transitionResult,
) {
	switch result.newStatus {
	case order.Ready:
		if err := h.index.PublishReady(ctx, *result.ready); err != nil {
			h.logger.Error("failed to publish ready order to dispatch pool",
				"order_id", result.orderID, "error", err)
		}
	case order.PickedUp, order.Delivered, order.Cancelled:
		if err := h.index.Retract(ctx, command.OrderID()); err != nil {
			h.logger.Error("failed to retract order from dispatch pool",
				"order_id", result.orderID, "error", err)
		}
	}

	if err := h.publisher.Publish(ctx, ports.TransitionEvent{
		OrderID:    command.OrderID(),
		OldStatus:  result.oldStatus,
		NewStatus:  result.newStatus,
		OccurredAt: result.occurredAt,
	}); err != nil {
		h.logger.Error("failed to publish transition event",
			"order_id", result.orderID,
			"old_status", result.oldStatus.String(),
			"new_status", result.newStatus.String(),
			"error", err)
	}
}
