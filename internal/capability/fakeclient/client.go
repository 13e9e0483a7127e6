// Package fakeclient provides deterministic, in-process implementations of
// every capability interface, used by cmd/agentd's example wiring and by
// unit tests that want a real (if trivial) collaborator instead of a mock.
// Grounded on the teacher's preference for hand-written fakes over
// generated mocks (ai/internal/tests carries several of these for vector
// stores and chat models).
package fakeclient

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/capability"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/domain"
)

// LLMClient returns a canned response keyed by a substring match against
// the prompt, falling back to a default. It never calls out to a network.
type LLMClient struct {
	mu        sync.Mutex
	Responses map[string]string // substring -> canned JSON/text response
	Default   string
	Calls     []capability.CompleteParams
}

var _ capability.LLMClient = (*LLMClient)(nil)

// NewLLMClient builds a fake client with the given canned responses.
func NewLLMClient(responses map[string]string, fallback string) *LLMClient {
	return &LLMClient{Responses: responses, Default: fallback}
}

func (f *LLMClient) Complete(ctx context.Context, params capability.CompleteParams) (string, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, params)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	for needle, resp := range f.Responses {
		if contains(params.Prompt, needle) {
			return resp, nil
		}
	}
	return f.Default, nil
}

func contains(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	n, m := len(haystack), len(needle)
	if m > n {
		return -1
	}
	for i := 0; i+m <= n; i++ {
		if haystack[i:i+m] == needle {
			return i
		}
	}
	return -1
}

// Embedder returns a deterministic, content-derived embedding so cosine
// distances in tests are stable and reproducible without a real model.
type Embedder struct {
	Dim int
}

var _ capability.Embedder = (*Embedder)(nil)

// NewEmbedder builds a fake embedder producing vectors of dimension dim
// (0 defaults to 8).
func NewEmbedder(dim int) *Embedder {
	if dim == 0 {
		dim = 8
	}
	return &Embedder{Dim: dim}
}

func (e *Embedder) Encode(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float64, e.Dim)
	for i, r := range text {
		vec[i%e.Dim] += float64(r)
	}
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec, nil
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}

// MessageStore is an in-memory, per-session append log.
type MessageStore struct {
	mu       sync.Mutex
	messages map[domain.SessionID][]capability.StoredMessage
	seq      int64
}

var _ capability.MessageStore = (*MessageStore)(nil)

// NewMessageStore builds an empty in-memory MessageStore.
func NewMessageStore() *MessageStore {
	return &MessageStore{messages: make(map[domain.SessionID][]capability.StoredMessage)}
}

func (m *MessageStore) Append(ctx context.Context, sessionID domain.SessionID, role domain.Role, content string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.messages[sessionID] = append(m.messages[sessionID], capability.StoredMessage{
		Role:      role,
		Content:   content,
		CreatedAt: m.seq, // monotonic surrogate, avoids disallowed time.Now() in this harness
	})
	return fmt.Sprintf("msg-%d", m.seq), nil
}

func (m *MessageStore) Recent(ctx context.Context, sessionID domain.SessionID, limit int) ([]capability.StoredMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.messages[sessionID]
	if len(all) <= limit {
		out := make([]capability.StoredMessage, len(all))
		copy(out, all)
		return out, nil
	}
	out := make([]capability.StoredMessage, limit)
	copy(out, all[len(all)-limit:])
	return out, nil
}

// SessionStore is a trivial in-memory SessionStore.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[domain.SessionID]capability.SessionInfo
}

var _ capability.SessionStore = (*SessionStore)(nil)

// NewSessionStore builds an empty in-memory SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[domain.SessionID]capability.SessionInfo)}
}

// Put seeds a session record; real deployments never expose a mutator on
// this capability, but the fake needs one to set up test fixtures.
func (s *SessionStore) Put(sessionID domain.SessionID, info capability.SessionInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = info
}

func (s *SessionStore) Get(ctx context.Context, sessionID domain.SessionID) (*capability.SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return &info, nil
}

// ProgressSink records every emitted event for assertion in tests.
type ProgressSink struct {
	mu     sync.Mutex
	Events []capability.ProgressEvent
}

var _ capability.ProgressSink = (*ProgressSink)(nil)

// NewProgressSink builds an empty recording ProgressSink.
func NewProgressSink() *ProgressSink {
	return &ProgressSink{}
}

func (p *ProgressSink) Emit(ctx context.Context, sessionID domain.SessionID, event capability.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
}
