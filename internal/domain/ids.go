// Package domain holds the core entities and invariants shared across the
// supervisor, team, planning and search packages. Types here are treated as
// immutable once constructed, except SupervisorState, which the Supervisor
// updates in place (for example through MarkCompleted) as a turn proceeds.
package domain

import "github.com/google/uuid"

// SessionID is the single opaque session identifier used throughout the
// engine. The source this spec was distilled from mixed string and integer
// representations for session/user ids; this package fixes one
// representation and normalizes at the boundary.
type SessionID string

// UserID is an optional integer identifier for the session owner.
type UserID = int64

// RequestID uniquely identifies one Supervisor turn for tracing/logging.
type RequestID string

// NewRequestID mints a fresh RequestID.
func NewRequestID() RequestID {
	return RequestID(uuid.NewString())
}
