package commands_test

import (
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlaceOrderCommand(t *testing.T) {
	pickup := testLocation(t, 48.8566, 2.3522)
	drop := testLocation(t, 48.8606, 2.3376)

	t.Run("creates a valid command", func(t *testing.T) {
		orderID := kernel.NewUUID()
		vendorID := kernel.NewUUID()

		cmd, err := commands.NewPlaceOrderCommand(
			orderID, vendorID, pickup, drop, 2000, 500, 200, order.PaymentCard)

		require.NoError(t, err)
		require.NoError(t, cmd.Validate())
		assert.Equal(t, orderID, cmd.OrderID())
		assert.Equal(t, vendorID, cmd.VendorID())
		assert.Equal(t, int64(2000), cmd.Subtotal().Cents())
		assert.Equal(t, order.PaymentCard, cmd.PaymentMethod())
	})

	t.Run("rejects invalid identifiers", func(t *testing.T) {
		_, err := commands.NewPlaceOrderCommand(
			kernel.UUID{}, kernel.NewUUID(), pickup, drop, 2000, 500, 200, order.PaymentCard)

		require.Error(t, err)
	})

	t.Run("rejects an unknown payment method", func(t *testing.T) {
		_, err := commands.NewPlaceOrderCommand(
			kernel.NewUUID(), kernel.NewUUID(), pickup, drop,
			2000, 500, 200, order.PaymentMethod("barter"))

		require.Error(t, err)
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var cmd commands.PlaceOrderCommand

		require.ErrorIs(t, cmd.Validate(), commands.ErrPlaceOrderCommandIsNotConstructed)
	})
}
