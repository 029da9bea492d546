package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/order"
)

// PlaceOrderCommandHandler handles order intake: creates the aggregate in
// pending status and persists it transactionally.
type PlaceOrderCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewPlaceOrderCommandHandler creates a handler for order intake operations.
// Requires an OrderUoWFactory for transactional persistence.
func NewPlaceOrderCommandHandler(uowFactory OrderUoWFactory) PlaceOrderCommandHandler {
	return PlaceOrderCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the place order command.
// Creates the order in pending status with its initial history entry and
// persists it, rolling back on any failure.
func (h PlaceOrderCommandHandler) Handle(ctx context.Context, command PlaceOrderCommand) error {
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

	aggregate, err := order.NewOrder(
		command.OrderID(),
		command.VendorID(),
		command.PickupLocation(),
		command.DropLocation(),
		command.Subtotal(),
		command.DeliveryFee(),
		command.Discount(),
		command.PaymentMethod(),
		time.Now(),
	)
	if err != nil {
		return err
	}

	if err = uow.OrderRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
