package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/capability/fakeclient"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/domain"
)

func TestNew_RejectsNilStore(t *testing.T) {
	_, err := New(nil, 10)
	assert.Error(t, err)
}

func TestNew_ClampsWindow(t *testing.T) {
	store := fakeclient.NewMessageStore()

	zero, err := New(store, 0)
	require.NoError(t, err)
	assert.Equal(t, defaultWindow, zero.window)

	tooSmall, err := New(store, 1)
	require.NoError(t, err)
	assert.Equal(t, minWindow, tooSmall.window)

	tooBig, err := New(store, 1000)
	require.NoError(t, err)
	assert.Equal(t, maxWindow, tooBig.window)
}

func TestSessionMemory_AppendAndRecent(t *testing.T) {
	store := fakeclient.NewMessageStore()
	sm, err := New(store, 10)
	require.NoError(t, err)

	ctx := context.Background()
	sessionID := domain.SessionID("sess-1")

	require.NoError(t, sm.AppendUserTurn(ctx, sessionID, "question"))
	require.NoError(t, sm.AppendAssistantTurn(ctx, sessionID, "answer"))

	recent, err := sm.Recent(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, domain.RoleUser, recent[0].Role)
	assert.Equal(t, "question", recent[0].Content)
	assert.Equal(t, domain.RoleAssistant, recent[1].Role)
	assert.Equal(t, "answer", recent[1].Content)
}

func TestSessionMemory_RecentTruncatesToWindow(t *testing.T) {
	store := fakeclient.NewMessageStore()
	sm, err := New(store, 10)
	require.NoError(t, err)

	ctx := context.Background()
	sessionID := domain.SessionID("sess-2")
	for i := 0; i < 15; i++ {
		require.NoError(t, sm.AppendUserTurn(ctx, sessionID, "msg"))
	}

	recent, err := sm.Recent(ctx, sessionID)
	require.NoError(t, err)
	assert.Len(t, recent, 10)
}
