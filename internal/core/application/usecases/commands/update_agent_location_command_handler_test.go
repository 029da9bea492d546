package commands_test

import (
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewUpdateAgentLocationCommand(t *testing.T) {
	location := kernel.Location{}

	t.Run("rejects an invalid location", func(t *testing.T) {
		_, err := commands.NewUpdateAgentLocationCommand(kernel.NewUUID(), location, time.Now())

		require.Error(t, err)
	})

	t.Run("rejects a zero timestamp", func(t *testing.T) {
		_, err := commands.NewUpdateAgentLocationCommand(
			kernel.NewUUID(), testLocation(t, 48.85, 2.35), time.Time{})

		require.Error(t, err)
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var cmd commands.UpdateAgentLocationCommand

		require.ErrorIs(t, cmd.Validate(), commands.ErrUpdateAgentLocationCommandIsNotConstructed)
	})
}

func TestUpdateAgentLocationCommandHandler_Handle(t *testing.T) {
	ctx := t.Context()
	agentID := kernel.NewUUID()
	location := testLocation(t, 48.85, 2.35)
	seenAt := time.Now()

	cmd, err := commands.NewUpdateAgentLocationCommand(agentID, location, seenAt)
	require.NoError(t, err)

	index := new(MockDispatchIndex)
	index.On("UpdateAgentLocation", mock.Anything, agentID, location, seenAt).Return(nil).Once()

	h := commands.NewUpdateAgentLocationCommandHandler(index)
	err = h.Handle(ctx, cmd)

	require.NoError(t, err)
	index.AssertExpectations(t)
}

func TestAgentOfflineCommandHandler_Handle(t *testing.T) {
	ctx := t.Context()
	agentID := kernel.NewUUID()

	cmd, err := commands.NewAgentOfflineCommand(agentID)
	require.NoError(t, err)

	index := new(MockDispatchIndex)
	index.On("MarkAgentOffline", mock.Anything, agentID).Return(nil).Once()

	h := commands.NewAgentOfflineCommandHandler(index)
	err = h.Handle(ctx, cmd)

	require.NoError(t, err)
	index.AssertExpectations(t)
}
