package progress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/capability"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/capability/fakeclient"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/domain"
)

func TestTracker_EnterExit_EmitsEventsAndRecordsDuration(t *testing.T) {
	sink := fakeclient.NewProgressSink()
	tr := New(sink, domain.SessionID("sess-1"))
	ctx := context.Background()

	tr.Enter(ctx, "plan", "질의 분석", "planner", capability.ProgressPlanning)
	tr.Exit(ctx, "plan", "질의 분석", "planner", capability.ProgressCompleted)

	require.Len(t, sink.Events, 2)
	assert.Equal(t, "plan", sink.Events[0].Step)
	assert.Equal(t, capability.ProgressPlanning, sink.Events[0].Status)
	assert.Equal(t, 25, sink.Events[1].Progress)

	durations := tr.Durations()
	_, ok := durations["plan"]
	assert.True(t, ok)
}

func TestTracker_Exit_FailedForcesProgressTo100(t *testing.T) {
	sink := fakeclient.NewProgressSink()
	tr := New(sink, domain.SessionID("sess-2"))
	ctx := context.Background()

	tr.Enter(ctx, "execute", "팀 실행", "supervisor", capability.ProgressPlanning)
	tr.Exit(ctx, "execute", "팀 실행", "supervisor", capability.ProgressFailed)

	require.Len(t, sink.Events, 2)
	assert.Equal(t, 100, sink.Events[1].Progress)
}

func TestTracker_NilSinkIsNoOp(t *testing.T) {
	tr := New(nil, domain.SessionID("sess-3"))
	assert.NotPanics(t, func() {
		tr.Enter(context.Background(), "plan", "l", "a", capability.ProgressPlanning)
		tr.Exit(context.Background(), "plan", "l", "a", capability.ProgressCompleted)
	})
}

func TestCheckpointer_MarkAndLast(t *testing.T) {
	cp := NewCheckpointer()
	sessionID := domain.SessionID("sess-4")

	_, ok := cp.Last(sessionID)
	assert.False(t, ok)

	cp.Mark(sessionID, "plan", domain.StatusRunning)
	last, ok := cp.Last(sessionID)
	require.True(t, ok)
	assert.Equal(t, "plan", last.Step)
	assert.Equal(t, domain.StatusRunning, last.Status)

	cp.Mark(sessionID, "synthesize", domain.StatusCompleted)
	last, ok = cp.Last(sessionID)
	require.True(t, ok)
	assert.Equal(t, "synthesize", last.Step)
}
