package order_test

import (
	"fmt"
	"testing"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Constants(t *testing.T) {
	t.Run("should have correct enum values", func(t *testing.T) {
		assert.Equal(t, 0, int(order.Unknown))
		assert.Equal(t, 1, int(order.Pending))
		assert.Equal(t, 2, int(order.Confirmed))
		assert.Equal(t, 3, int(order.Preparing))
		assert.Equal(t, 4, int(order.Ready))
		assert.Equal(t, 5, int(order.PickedUp))
		assert.Equal(t, 6, int(order.OnTheWay))
		assert.Equal(t, 7, int(order.Delivered))
		assert.Equal(t, 8, int(order.Cancelled))
	})
}

func TestStatus_Validate(t *testing.T) {
	t.Run("should validate lifecycle statuses", func(t *testing.T) {
		for _, status := range []order.Status{
			order.Pending, order.Confirmed, order.Preparing, order.Ready,
			order.PickedUp, order.OnTheWay, order.Delivered, order.Cancelled,
		} {
			t.Run(status.String(), func(t *testing.T) {
				require.NoError(t, status.Validate())
			})
		}
	})

	t.Run("should reject invalid status values", func(t *testing.T) {
		for _, status := range []order.Status{order.Unknown, order.Status(-1), order.Status(9), order.Status(100)} {
			t.Run(fmt.Sprintf("value %d", int(status)), func(t *testing.T) {
				err := status.Validate()

				require.Error(t, err)
				assert.IsType(t, &errs.ValueIsInvalidError{}, err)
				assert.Contains(t, err.Error(), fmt.Sprintf("%d is not a valid status", int(status)))
			})
		}
	})
}

func TestStatus_String(t *testing.T) {
	testCases := []struct {
		status   order.Status
		expected string
	}{
		{order.Pending, "pending"},
		{order.Confirmed, "confirmed"},
		{order.Preparing, "preparing"},
		{order.Ready, "ready"},
		{order.PickedUp, "picked_up"},
		{order.OnTheWay, "on_the_way"},
		{order.Delivered, "delivered"},
		{order.Cancelled, "cancelled"},
		{order.Unknown, "unknown"},
		{order.Status(42), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.status.String())
		})
	}
}

func TestStatusFromString(t *testing.T) {
	t.Run("parses wire names", func(t *testing.T) {
		status, err := order.StatusFromString("picked_up")

		require.NoError(t, err)
		assert.Equal(t, order.PickedUp, status)
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		_, err := order.StatusFromString("teleported")

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("rejects the unknown name itself", func(t *testing.T) {
		_, err := order.StatusFromString("unknown")

		require.Error(t, err)
	})
}

func TestStatus_TransitionTable(t *testing.T) {
	allowed := map[order.Status][]order.Status{
		order.Pending:   {order.Confirmed, order.Cancelled},
		order.Confirmed: {order.Preparing, order.Cancelled},
		order.Preparing: {order.Ready, order.Cancelled},
		order.Ready:     {order.PickedUp, order.Cancelled},
		order.PickedUp:  {order.OnTheWay, order.Cancelled},
		order.OnTheWay:  {order.Delivered, order.Cancelled},
		order.Delivered: {},
		order.Cancelled: {},
	}

	all := []order.Status{
		order.Pending, order.Confirmed, order.Preparing, order.Ready,
		order.PickedUp, order.OnTheWay, order.Delivered, order.Cancelled,
	}

	for from, targets := range allowed {
		t.Run(from.String(), func(t *testing.T) {
			assert.ElementsMatch(t, targets, from.AllowedTargets())

			allowedSet := make(map[order.Status]bool)
			for _, target := range targets {
				allowedSet[target] = true
			}

			for _, to := range all {
				assert.Equal(t, allowedSet[to], from.CanTransitionTo(to),
					"%s -> %s", from, to)
			}
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, order.Delivered.IsTerminal())
	assert.True(t, order.Cancelled.IsTerminal())

	for _, status := range []order.Status{
		order.Pending, order.Confirmed, order.Preparing,
		order.Ready, order.PickedUp, order.OnTheWay,
	} {
		assert.False(t, status.IsTerminal(), status.String())
	}
}
