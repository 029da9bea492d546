package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

var ErrPlaceOrderCommandIsNotConstructed = errors.New(
	"PlaceOrderCommand must be created via NewPlaceOrderCommand constructor",
)

// PlaceOrderCommand represents a request to register a new order in pending
// status: vendor and destination coordinates plus the monetary breakdown.
//
// Example:
//
//	cmd, err := NewPlaceOrderCommand(orderID, vendorID, pickup, drop,
//	    2000, 500, 200, order.PaymentCard)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//	handler := NewPlaceOrderCommandHandler(uowFactory)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to place order: %w", err)
//	}
type PlaceOrderCommand struct { //nolint:recvcheck //using for validation
	orderID        kernel.UUID
	vendorID       kernel.UUID
	pickupLocation kernel.Location
	dropLocation   kernel.Location
	subtotal       kernel.Money
	deliveryFee    kernel.Money
	discount       kernel.Money
	paymentMethod  order.PaymentMethod

	guard guard.ConstructorGuard
}

// NewPlaceOrderCommand creates a command to place a new order.
// Validates identifiers, coordinates and the payment method; the monetary
// invariant itself is enforced by the order aggregate.
func NewPlaceOrderCommand(
	orderID kernel.UUID,
	vendorID kernel.UUID,
	pickupLocation kernel.Location,
	dropLocation kernel.Location,
	subtotal kernel.Money,
	deliveryFee kernel.Money,
	discount kernel.Money,
	paymentMethod order.PaymentMethod,
) (PlaceOrderCommand, error) {
	command := PlaceOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setVendorID(vendorID),
		command.setPickupLocation(pickupLocation),
		command.setDropLocation(dropLocation),
		command.setPaymentMethod(paymentMethod),
	); err != nil {
		return PlaceOrderCommand{}, err
	}

	command.subtotal = subtotal
	command.deliveryFee = deliveryFee
	command.discount = discount

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c PlaceOrderCommand) Validate() error {
	return c.guard.Validate(ErrPlaceOrderCommandIsNotConstructed)
}

// OrderID returns the unique identifier for the new order.
func (c PlaceOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// VendorID returns the fulfilling vendor's identifier.
func (c PlaceOrderCommand) VendorID() kernel.UUID {
	return c.vendorID
}

// PickupLocation returns the vendor pickup coordinates.
func (c PlaceOrderCommand) PickupLocation() kernel.Location {
	return c.pickupLocation
}

// DropLocation returns the delivery destination coordinates.
func (c PlaceOrderCommand) DropLocation() kernel.Location {
	return c.dropLocation
}

// Subtotal returns the order item subtotal in cents.
func (c PlaceOrderCommand) Subtotal() kernel.Money {
	return c.subtotal
}

// DeliveryFee returns the delivery fee charged to the customer in cents.
func (c PlaceOrderCommand) DeliveryFee() kernel.Money {
	return c.deliveryFee
}

// Discount returns the discount in cents.
func (c PlaceOrderCommand) Discount() kernel.Money {
	return c.discount
}

// PaymentMethod returns how the customer pays.
func (c PlaceOrderCommand) PaymentMethod() order.PaymentMethod {
	return c.paymentMethod
}

func (c *PlaceOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *PlaceOrderCommand) setVendorID(vendorID kernel.UUID) error {
	if err := vendorID.Validate(); err != nil {
		return err
	}

	c.vendorID = vendorID
	return nil
}

func (c *PlaceOrderCommand) setPickupLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}

	c.pickupLocation = location
	return nil
}

func (c *PlaceOrderCommand) setDropLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}

	c.dropLocation = location
	return nil
}

func (c *PlaceOrderCommand) setPaymentMethod(method order.PaymentMethod) error {
	if err := method.Validate(); err != nil {
		return err
	}

	c.paymentMethod = method
	return nil
}
