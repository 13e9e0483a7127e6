package progress

import (
	"sync"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/domain"
)

// Checkpoint is a coarse, resumable marker for one session's furthest
// completed Supervisor step. It exists so a host can answer "what stage is
// this turn at" without replaying SupervisorState, and so a crashed process
// can report the last safely-completed step on restart.
type Checkpoint struct {
	Step   string
	Status domain.SupervisorStatus
}

// Checkpointer persists the latest Checkpoint per session in memory. A real
// deployment would back this with the same MessageStore-adjacent storage
// used for sessions; the in-memory map here is the capability's reference
// implementation, exercised directly by the Supervisor in this module.
type Checkpointer struct {
	mu    sync.RWMutex
	marks map[domain.SessionID]Checkpoint
}

// NewCheckpointer builds an empty, concurrency-safe Checkpointer.
func NewCheckpointer() *Checkpointer {
	return &Checkpointer{marks: make(map[domain.SessionID]Checkpoint)}
}

// Mark records the furthest step reached for sessionID.
func (c *Checkpointer) Mark(sessionID domain.SessionID, step string, status domain.SupervisorStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.marks[sessionID] = Checkpoint{Step: step, Status: status}
}

// Last returns the last recorded Checkpoint for sessionID, if any.
func (c *Checkpointer) Last(sessionID domain.SessionID) (Checkpoint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cp, ok := c.marks[sessionID]
	return cp, ok
}
