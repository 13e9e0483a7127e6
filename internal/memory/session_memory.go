// Package memory implements the SessionMemory adapter (spec.md §4.8): a
// thin capability over MessageStore that loads recent messages for
// PlanningAgent coreference context and persists user/assistant turns.
// Directly adapted from the teacher's ai/memory.MessageWindowStore sliding
// window strategy, generalized from an in-process window over a fixed
// Store to one backed by the MessageStore capability.
package memory

import (
	"context"
	"fmt"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/capability"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/domain"
)

const (
	minWindow     = 10
	maxWindow     = 100
	defaultWindow = 10
)

// SessionMemory wraps a MessageStore with the sliding-window recall window
// the Supervisor's initialize node uses (K=10 per spec.md §4.7).
type SessionMemory struct {
	store  capability.MessageStore
	window int
}

// New builds a SessionMemory. window is clamped to [10, 100]; 0 defaults to
// 10, matching the teacher's MessageWindowStore clamp.
func New(store capability.MessageStore, window int) (*SessionMemory, error) {
	if store == nil {
		return nil, fmt.Errorf("memory: message store is required")
	}
	if window == 0 {
		window = defaultWindow
	}
	if window < minWindow {
		window = minWindow
	}
	if window > maxWindow {
		window = maxWindow
	}
	return &SessionMemory{store: store, window: window}, nil
}

// Recent returns up to the configured window of recent messages for
// sessionID, oldest first.
func (m *SessionMemory) Recent(ctx context.Context, sessionID domain.SessionID) ([]capability.StoredMessage, error) {
	all, err := m.store.Recent(ctx, sessionID, m.window)
	if err != nil {
		return nil, fmt.Errorf("memory: recent(%s): %w", sessionID, err)
	}
	return all, nil
}

// AppendUserTurn persists the user's message. The Supervisor calls this
// immediately after initialize, before any heavy work, guaranteeing
// durability even if planning or execution later fails (spec.md §4.7
// persist_user_turn).
func (m *SessionMemory) AppendUserTurn(ctx context.Context, sessionID domain.SessionID, content string) error {
	_, err := m.store.Append(ctx, sessionID, domain.RoleUser, content)
	if err != nil {
		return fmt.Errorf("memory: append user turn: %w", err)
	}
	return nil
}

// AppendAssistantTurn persists the assistant's final response.
func (m *SessionMemory) AppendAssistantTurn(ctx context.Context, sessionID domain.SessionID, content string) error {
	_, err := m.store.Append(ctx, sessionID, domain.RoleAssistant, content)
	if err != nil {
		return fmt.Errorf("memory: append assistant turn: %w", err)
	}
	return nil
}
