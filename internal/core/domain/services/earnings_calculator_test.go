package services_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatFeeTable pays a fixed 600 cents regardless of distance, which keeps the
// expected splits independent of the haversine result.
func flatFeeTable() []services.FeeBand {
	return []services.FeeBand{{MinKm: 0, MaxKm: 0, BaseFee: 600, PerKmFee: 0}}
}

func newCalculator(t *testing.T, table []services.FeeBand) services.EarningsCalculator {
	t.Helper()
	calculator, err := services.NewEarningsCalculator(table)
	require.NoError(t, err)
	return calculator
}

// newTestOrder builds an order with subtotal 2000, delivery fee 500 and
// discount 200, so total is 2300 and the distributable amount is 2100.
func newTestOrder(t *testing.T) *order.Order {
	t.Helper()

	pickup, err := kernel.NewLocation(48.8566, 2.3522)
	require.NoError(t, err)
	drop, err := kernel.NewLocation(48.8606, 2.3376)
	require.NoError(t, err)

	o, err := order.NewOrder(
		kernel.NewUUID(), kernel.NewUUID(), pickup, drop,
		2000, 500, 200, order.PaymentCard, time.Now(),
	)
	require.NoError(t, err)
	return o
}

// advanceTo walks the order along the happy path up to target, assigning an
// agent before picked_up.
func advanceTo(t *testing.T, o *order.Order, target order.Status) kernel.UUID {
	t.Helper()

	agentID := kernel.NewUUID()
	path := []order.Status{
		order.Confirmed, order.Preparing, order.Ready,
		order.PickedUp, order.OnTheWay, order.Delivered,
	}

	for _, next := range path {
		if o.Status() == target {
			return agentID
		}
		actorID := "vendor-1"
		if next == order.PickedUp {
			require.NoError(t, o.Assign(agentID, time.Now()))
			actorID = agentID.String()
		}
		if next == order.OnTheWay || next == order.Delivered {
			actorID = agentID.String()
		}
		require.NoError(t, o.TransitionTo(next, actorID, "", time.Now()))
	}
	return agentID
}

func cancel(t *testing.T, o *order.Order, cause order.ActorRole) {
	t.Helper()
	require.NoError(t, o.TransitionTo(order.Cancelled, string(cause), "", time.Now()))
}

func assertSplit(t *testing.T, split order.EarningsSplit, vendor, delivery, platform int64) {
	t.Helper()
	assert.Equal(t, vendor, split.VendorEarnings().Cents(), "vendor earnings")
	assert.Equal(t, delivery, split.DeliveryEarnings().Cents(), "delivery earnings")
	assert.Equal(t, platform, split.PlatformEarnings().Cents(), "platform earnings")
}

func TestNewEarningsCalculator(t *testing.T) {
	t.Run("requires at least one fee band", func(t *testing.T) {
		_, err := services.NewEarningsCalculator(nil)

		require.ErrorIs(t, err, services.ErrFeeTableIsRequired)
	})
}

func TestEarningsCalculator_DeliveryFeeForDistance(t *testing.T) {
	table := []services.FeeBand{
		{MinKm: 0, MaxKm: 3, BaseFee: 3000, PerKmFee: 500},
		{MinKm: 3, MaxKm: 0, BaseFee: 4000, PerKmFee: 300},
	}
	calculator := newCalculator(t, table)

	t.Run("base fee plus per-km within a band", func(t *testing.T) {
		fee, err := calculator.DeliveryFeeForDistance(2.0)

		require.NoError(t, err)
		assert.Equal(t, int64(4000), fee.Cents())
	})

	t.Run("band upper bound is exclusive", func(t *testing.T) {
		fee, err := calculator.DeliveryFeeForDistance(3.0)

		require.NoError(t, err)
		assert.Equal(t, int64(4900), fee.Cents())
	})

	t.Run("open-ended band covers long distances", func(t *testing.T) {
		fee, err := calculator.DeliveryFeeForDistance(25.0)

		require.NoError(t, err)
		assert.Equal(t, int64(11500), fee.Cents())
	})

	t.Run("rounds the per-km component to the cent", func(t *testing.T) {
		fee, err := calculator.DeliveryFeeForDistance(1.333)

		require.NoError(t, err)
		assert.Equal(t, int64(3667), fee.Cents())
	})

	t.Run("rejects negative distance", func(t *testing.T) {
		_, err := calculator.DeliveryFeeForDistance(-1)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("fails when no band covers the distance", func(t *testing.T) {
		gapped := newCalculator(t, []services.FeeBand{
			{MinKm: 1, MaxKm: 3, BaseFee: 3000, PerKmFee: 0},
		})

		_, err := gapped.DeliveryFeeForDistance(0.5)

		require.ErrorIs(t, err, services.ErrFeeBandNotFound)
	})
}

func TestEarningsCalculator_ComputeDelivered(t *testing.T) {
	calculator := newCalculator(t, flatFeeTable())

	t.Run("splits the distributable total", func(t *testing.T) {
		o := newTestOrder(t)
		advanceTo(t, o, order.Delivered)

		split, err := calculator.ComputeDelivered(o, 0.10)

		require.NoError(t, err)
		// platform = round(2300 * 0.10) = 230, delivery = 600, vendor = remainder
		assertSplit(t, split, 1270, 600, 230)
		assert.Equal(t, int64(2100), split.Sum().Cents())
	})

	t.Run("split sums to total minus discount", func(t *testing.T) {
		o := newTestOrder(t)
		advanceTo(t, o, order.Delivered)

		split, err := calculator.ComputeDelivered(o, 0.33)

		require.NoError(t, err)
		distributable, err := o.DistributableTotal()
		require.NoError(t, err)
		assert.Equal(t, distributable.Cents(), split.Sum().Cents())
	})

	t.Run("vendor share floors at zero with platform absorbing the shortfall", func(t *testing.T) {
		pickup, err := kernel.NewLocation(48.8566, 2.3522)
		require.NoError(t, err)
		drop, err := kernel.NewLocation(48.8606, 2.3376)
		require.NoError(t, err)
		small, err := order.NewOrder(
			kernel.NewUUID(), kernel.NewUUID(), pickup, drop,
			100, 0, 0, order.PaymentCash, time.Now(),
		)
		require.NoError(t, err)
		advanceTo(t, small, order.Delivered)

		split, err := calculator.ComputeDelivered(small, 0.10)

		require.NoError(t, err)
		// Delivery fee 600 exceeds the distributable 100: delivery is capped,
		// platform and vendor take nothing.
		assertSplit(t, split, 0, 100, 0)
	})

	t.Run("rejects a commission rate outside [0,1]", func(t *testing.T) {
		o := newTestOrder(t)
		advanceTo(t, o, order.Delivered)

		_, err := calculator.ComputeDelivered(o, 1.5)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}

func TestEarningsCalculator_ComputeCancelled(t *testing.T) {
	calculator := newCalculator(t, flatFeeTable())

	t.Run("agent-caused cancellation forfeits delivery earnings", func(t *testing.T) {
		o := newTestOrder(t)
		advanceTo(t, o, order.OnTheWay)
		cancel(t, o, order.RoleAgent)

		split, err := calculator.ComputeCancelled(o, 0.10, order.RoleAgent)

		require.NoError(t, err)
		assertSplit(t, split, 1870, 0, 230)
	})

	t.Run("agent timeout counts as agent-caused", func(t *testing.T) {
		o := newTestOrder(t)
		advanceTo(t, o, order.OnTheWay)
		cancel(t, o, order.RoleAgentTimeout)

		split, err := calculator.ComputeCancelled(o, 0.10, order.RoleAgentTimeout)

		require.NoError(t, err)
		assert.Equal(t, int64(0), split.DeliveryEarnings().Cents())
	})

	t.Run("customer cancellation after pickup pays the full-leg fee", func(t *testing.T) {
		o := newTestOrder(t)
		advanceTo(t, o, order.OnTheWay)
		cancel(t, o, order.RoleCustomer)

		split, err := calculator.ComputeCancelled(o, 0.10, order.RoleCustomer)

		require.NoError(t, err)
		assertSplit(t, split, 1270, 600, 230)
	})

	t.Run("cancellation before pickup pays the agent nothing", func(t *testing.T) {
		o := newTestOrder(t)
		advanceTo(t, o, order.Confirmed)
		cancel(t, o, order.RoleCustomer)

		split, err := calculator.ComputeCancelled(o, 0.10, order.RoleCustomer)

		require.NoError(t, err)
		assertSplit(t, split, 1870, 0, 230)
	})

	t.Run("vendor cancellation before ready forfeits the vendor share", func(t *testing.T) {
		o := newTestOrder(t)
		advanceTo(t, o, order.Preparing)
		cancel(t, o, order.RoleVendor)

		split, err := calculator.ComputeCancelled(o, 0.10, order.RoleVendor)

		require.NoError(t, err)
		assertSplit(t, split, 0, 0, 2100)
	})

	t.Run("vendor cancellation after ready keeps the vendor share", func(t *testing.T) {
		o := newTestOrder(t)
		advanceTo(t, o, order.Ready)
		cancel(t, o, order.RoleVendor)

		split, err := calculator.ComputeCancelled(o, 0.10, order.RoleVendor)

		require.NoError(t, err)
		assertSplit(t, split, 1870, 0, 230)
	})

	t.Run("rejects an unknown cancelling role", func(t *testing.T) {
		o := newTestOrder(t)
		advanceTo(t, o, order.Confirmed)
		cancel(t, o, order.RoleCustomer)

		_, err := calculator.ComputeCancelled(o, 0.10, order.ActorRole("bystander"))

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}
