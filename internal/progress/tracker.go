// Package progress implements the progress/checkpoint hooks named in
// spec.md §2 item 9: step-level event emission, per-step duration
// recording, and coarse per-session checkpoints. Grounded on the teacher's
// preference for a thin struct wrapping an out-of-band sink rather than a
// full event bus, matching ai/observability's emit-and-forget style.
package progress

import (
	"context"
	"sync"
	"time"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/capability"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/domain"
)

// stepProgress is the closed 0-100 mapping for each Supervisor node,
// matching the 8-node cycle in spec.md §4.7.
var stepProgress = map[string]int{
	"initialize":          5,
	"persist_user_turn":   10,
	"plan":                25,
	"route":               30,
	"execute":             70,
	"aggregate":           80,
	"synthesize":          95,
	"persist_assistant_turn": 100,
}

// Tracker emits best-effort progress events and records per-step wall-clock
// durations for one turn. A nil Sink is valid: Emit becomes a no-op, which
// lets callers (and tests) construct a Tracker without a host transport.
type Tracker struct {
	sink      capability.ProgressSink
	sessionID domain.SessionID
	turnStart time.Time

	mu        sync.Mutex
	durations map[string]time.Duration
	stepStart map[string]time.Time
}

// New builds a Tracker for one turn.
func New(sink capability.ProgressSink, sessionID domain.SessionID) *Tracker {
	return &Tracker{
		sink:      sink,
		sessionID: sessionID,
		turnStart: time.Now(),
		durations: make(map[string]time.Duration),
		stepStart: make(map[string]time.Time),
	}
}

// Enter marks a step as started and emits its entry event.
func (t *Tracker) Enter(ctx context.Context, step, label, agent string, status capability.ProgressEventStatus) {
	t.mu.Lock()
	t.stepStart[step] = time.Now()
	t.mu.Unlock()
	t.emit(ctx, step, label, agent, status)
}

// Exit marks a step as finished, records its duration, and emits its exit
// event. If status is ProgressFailed, progress is forced to 100.
func (t *Tracker) Exit(ctx context.Context, step, label, agent string, status capability.ProgressEventStatus) {
	t.mu.Lock()
	if start, ok := t.stepStart[step]; ok {
		t.durations[step] = time.Since(start)
	}
	t.mu.Unlock()
	t.emit(ctx, step, label, agent, status)
}

func (t *Tracker) emit(ctx context.Context, step, label, agent string, status capability.ProgressEventStatus) {
	if t.sink == nil {
		return
	}
	progress := stepProgress[step]
	if status == capability.ProgressFailed {
		progress = 100
	}
	t.sink.Emit(ctx, t.sessionID, capability.ProgressEvent{
		Step:      step,
		Label:     label,
		Agent:     agent,
		Status:    status,
		Progress:  progress,
		ElapsedMS: time.Since(t.turnStart).Milliseconds(),
	})
}

// Durations returns a snapshot of every step's recorded duration so far.
func (t *Tracker) Durations() map[string]time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]time.Duration, len(t.durations))
	for k, v := range t.durations {
		out[k] = v
	}
	return out
}
