package dispatchmem_test

import (
	"sync"
	"testing"
	"time"

	"dispatch/internal/adapters/out/dispatchmem"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const livenessWindow = 2 * time.Minute

func location(t *testing.T, lat, lng float64) kernel.Location {
	t.Helper()
	l, err := kernel.NewLocation(lat, lng)
	require.NoError(t, err)
	return l
}

// readyAt builds a pool entry whose pickup is offset north of the base point
// by roughly km kilometers (1 degree of latitude is ~111.19 km).
func readyAt(t *testing.T, km float64, postedAt time.Time) ports.ReadyOrder {
	t.Helper()
	return ports.ReadyOrder{
		OrderID:        kernel.NewUUID(),
		VendorID:       kernel.NewUUID(),
		PickupLocation: location(t, 48.8566+km/111.19, 2.3522),
		DropLocation:   location(t, 48.8606, 2.3376),
		PostedAt:       postedAt,
	}
}

func onlineAgent(t *testing.T, index *dispatchmem.Index) kernel.UUID {
	t.Helper()
	agentID := kernel.NewUUID()
	require.NoError(t, index.UpdateAgentLocation(
		t.Context(), agentID, location(t, 48.8566, 2.3522), time.Now()))
	return agentID
}

func TestIndex_NearbyOrders(t *testing.T) {
	t.Run("sorts by pickup distance then posting time", func(t *testing.T) {
		ctx := t.Context()
		index := dispatchmem.NewIndex(livenessWindow)
		agentID := onlineAgent(t, index)

		now := time.Now()
		far := readyAt(t, 3.0, now)
		near := readyAt(t, 1.0, now)
		mid := readyAt(t, 2.0, now)
		require.NoError(t, index.PublishReady(ctx, far))
		require.NoError(t, index.PublishReady(ctx, near))
		require.NoError(t, index.PublishReady(ctx, mid))

		candidates, err := index.NearbyOrders(ctx, agentID, 10, 0)

		require.NoError(t, err)
		require.Len(t, candidates, 3)
		assert.Equal(t, near.OrderID, candidates[0].OrderID)
		assert.Equal(t, mid.OrderID, candidates[1].OrderID)
		assert.Equal(t, far.OrderID, candidates[2].OrderID)
		assert.True(t, candidates[0].PickupDistanceKm <= candidates[1].PickupDistanceKm)
	})

	t.Run("breaks distance ties by posting time", func(t *testing.T) {
		ctx := t.Context()
		index := dispatchmem.NewIndex(livenessWindow)
		agentID := onlineAgent(t, index)

		older := readyAt(t, 1.0, time.Now().Add(-time.Hour))
		newer := readyAt(t, 1.0, time.Now())
		// Same offset means same pickup point, so distance ties exactly.
		require.NoError(t, index.PublishReady(ctx, newer))
		require.NoError(t, index.PublishReady(ctx, older))

		candidates, err := index.NearbyOrders(ctx, agentID, 10, 0)

		require.NoError(t, err)
		require.Len(t, candidates, 2)
		assert.Equal(t, older.OrderID, candidates[0].OrderID)
	})

	t.Run("never returns orders beyond the radius", func(t *testing.T) {
		ctx := t.Context()
		index := dispatchmem.NewIndex(livenessWindow)
		agentID := onlineAgent(t, index)

		inside := readyAt(t, 2.0, time.Now())
		outside := readyAt(t, 20.0, time.Now())
		require.NoError(t, index.PublishReady(ctx, inside))
		require.NoError(t, index.PublishReady(ctx, outside))

		candidates, err := index.NearbyOrders(ctx, agentID, 5, 0)

		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, inside.OrderID, candidates[0].OrderID)
	})

	t.Run("caps results at the limit", func(t *testing.T) {
		ctx := t.Context()
		index := dispatchmem.NewIndex(livenessWindow)
		agentID := onlineAgent(t, index)

		for km := 1; km <= 5; km++ {
			require.NoError(t, index.PublishReady(ctx, readyAt(t, float64(km), time.Now())))
		}

		candidates, err := index.NearbyOrders(ctx, agentID, 10, 2)

		require.NoError(t, err)
		assert.Len(t, candidates, 2)
	})

	t.Run("computes both legs of the candidate distances", func(t *testing.T) {
		ctx := t.Context()
		index := dispatchmem.NewIndex(livenessWindow)
		agentID := onlineAgent(t, index)
		ready := readyAt(t, 1.0, time.Now())
		require.NoError(t, index.PublishReady(ctx, ready))

		candidates, err := index.NearbyOrders(ctx, agentID, 10, 0)

		require.NoError(t, err)
		require.Len(t, candidates, 1)
		got := candidates[0]
		assert.InDelta(t, 1.0, got.PickupDistanceKm, 0.05)
		assert.Positive(t, got.DropDistanceKm)
		assert.InDelta(t, got.PickupDistanceKm+got.DropDistanceKm, got.TotalDistanceKm, 0.0001)
	})

	t.Run("rejects an agent that never pinged", func(t *testing.T) {
		index := dispatchmem.NewIndex(livenessWindow)

		_, err := index.NearbyOrders(t.Context(), kernel.NewUUID(), 10, 0)

		require.ErrorIs(t, err, ports.ErrAgentNotAvailable)
	})

	t.Run("rejects an agent with a stale heartbeat", func(t *testing.T) {
		ctx := t.Context()
		index := dispatchmem.NewIndex(livenessWindow)
		agentID := kernel.NewUUID()
		require.NoError(t, index.UpdateAgentLocation(
			ctx, agentID, location(t, 48.8566, 2.3522), time.Now().Add(-3*time.Minute)))

		_, err := index.NearbyOrders(ctx, agentID, 10, 0)

		require.ErrorIs(t, err, ports.ErrAgentNotAvailable)
	})

	t.Run("rejects an agent that went offline", func(t *testing.T) {
		ctx := t.Context()
		index := dispatchmem.NewIndex(livenessWindow)
		agentID := onlineAgent(t, index)
		require.NoError(t, index.MarkAgentOffline(ctx, agentID))

		_, err := index.NearbyOrders(ctx, agentID, 10, 0)

		require.ErrorIs(t, err, ports.ErrAgentNotAvailable)
	})

	t.Run("a fresh ping restores eligibility", func(t *testing.T) {
		ctx := t.Context()
		index := dispatchmem.NewIndex(livenessWindow)
		agentID := onlineAgent(t, index)
		require.NoError(t, index.MarkAgentOffline(ctx, agentID))
		require.NoError(t, index.UpdateAgentLocation(
			ctx, agentID, location(t, 48.8566, 2.3522), time.Now()))

		_, err := index.NearbyOrders(ctx, agentID, 10, 0)

		require.NoError(t, err)
	})
}

func TestIndex_PublishRetract(t *testing.T) {
	t.Run("publish is idempotent", func(t *testing.T) {
		ctx := t.Context()
		index := dispatchmem.NewIndex(livenessWindow)
		agentID := onlineAgent(t, index)
		ready := readyAt(t, 1.0, time.Now())

		require.NoError(t, index.PublishReady(ctx, ready))
		require.NoError(t, index.PublishReady(ctx, ready))

		candidates, err := index.NearbyOrders(ctx, agentID, 10, 0)
		require.NoError(t, err)
		assert.Len(t, candidates, 1)
	})

	t.Run("retract removes the order from every feed", func(t *testing.T) {
		ctx := t.Context()
		index := dispatchmem.NewIndex(livenessWindow)
		agentID := onlineAgent(t, index)
		ready := readyAt(t, 1.0, time.Now())
		require.NoError(t, index.PublishReady(ctx, ready))

		require.NoError(t, index.Retract(ctx, ready.OrderID))

		candidates, err := index.NearbyOrders(ctx, agentID, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("retracting an absent order is a no-op", func(t *testing.T) {
		index := dispatchmem.NewIndex(livenessWindow)

		require.NoError(t, index.Retract(t.Context(), kernel.NewUUID()))
	})

	t.Run("rejects a pool entry without an order id", func(t *testing.T) {
		index := dispatchmem.NewIndex(livenessWindow)

		err := index.PublishReady(t.Context(), ports.ReadyOrder{})

		require.Error(t, err)
	})
}

func TestIndex_RemoveAgentsInactiveSince(t *testing.T) {
	ctx := t.Context()
	index := dispatchmem.NewIndex(livenessWindow)

	fresh := kernel.NewUUID()
	stale := kernel.NewUUID()
	require.NoError(t, index.UpdateAgentLocation(
		ctx, fresh, location(t, 48.8566, 2.3522), time.Now()))
	require.NoError(t, index.UpdateAgentLocation(
		ctx, stale, location(t, 48.8566, 2.3522), time.Now().Add(-time.Hour)))

	removed, err := index.RemoveAgentsInactiveSince(ctx, time.Now().Add(-livenessWindow))

	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = index.NearbyOrders(ctx, fresh, 10, 0)
	require.NoError(t, err)
	_, err = index.NearbyOrders(ctx, stale, 10, 0)
	require.ErrorIs(t, err, ports.ErrAgentNotAvailable)
}

func TestIndex_ConcurrentAccess(t *testing.T) {
	ctx := t.Context()
	index := dispatchmem.NewIndex(livenessWindow)
	agentID := onlineAgent(t, index)

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 50; n++ {
				ready := readyAt(t, 1.0, time.Now())
				_ = index.PublishReady(ctx, ready)
				_, _ = index.NearbyOrders(ctx, agentID, 10, 5)
				_ = index.Retract(ctx, ready.OrderID)
				_ = index.UpdateAgentLocation(ctx, agentID, ready.PickupLocation, time.Now())
			}
		}()
	}
	wg.Wait()

	_, err := index.NearbyOrders(ctx, agentID, 10, 0)
	require.NoError(t, err)
}
