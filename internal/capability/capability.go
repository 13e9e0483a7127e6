// Package capability declares the external collaborator contracts the
// engine consumes: LLMClient, Embedder, VectorIndex, MetadataCatalog,
// MessageStore, SessionStore and ProgressSink. None of these are
// implemented by the host transport here — only the capability surface the
// core depends on is defined, per spec.md §6.
package capability

import (
	"context"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/domain"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/filterexpr"
)

// ResponseFormat selects whether LLMClient.Complete should be instructed to
// return strict JSON or free-form text.
type ResponseFormat string

const (
	ResponseFormatJSON ResponseFormat = "json"
	ResponseFormatText ResponseFormat = "text"
)

// CompleteParams bundles one LLM completion request.
type CompleteParams struct {
	Prompt         string
	System         string
	Temperature    float64
	MaxTokens      int
	ResponseFormat ResponseFormat
}

// LLMClient is the single LLM capability the engine depends on. A
// malformed JSON response triggers one retry then a rule-based fallback,
// per spec.md §6 — that retry policy lives in internal/llmjson, not here.
type LLMClient interface {
	Complete(ctx context.Context, params CompleteParams) (string, error)
}

// Embedder turns text into a fixed-dimension embedding vector. Thread-safe;
// CPU-bound implementations are allowed to block the calling goroutine.
type Embedder interface {
	Encode(ctx context.Context, text string) ([]float64, error)
}

// VectorMatch is one result row from VectorIndex.Query or VectorIndex.Get.
type VectorMatch struct {
	DocID    string
	Content  string
	Metadata map[string]any
	Distance float64
}

// VectorIndex performs nearest-neighbor search with server-side predicate
// filtering (§4.2). Predicate conjunction MUST be applied before scoring.
type VectorIndex interface {
	Query(ctx context.Context, embedding []float64, predicate filterexpr.Expression, k int) ([]VectorMatch, error)
	Get(ctx context.Context, ids []string) ([]VectorMatch, error)
}

// LawInfo is the enrichment/law-metadata record returned by law_info.
type LawInfo struct {
	TotalArticles   int
	LastArticle     string
	LawNumber       string
	EnforcementDate string
	Category        string
}

// FilterParams mirrors the optional predicate inputs build_filter accepts.
type FilterParams struct {
	DocType            *string
	Category           *string
	LawTitle           *string
	IsTenantProtection *bool
	IsTaxRelated       *bool
	ExcludeDeleted     bool
}

// MetadataCatalog answers structured, exact-match questions about the legal
// corpus (§4.1). Implementations must be safe for concurrent reads.
type MetadataCatalog interface {
	LawExists(ctx context.Context, title string) (bool, error)
	ArticleChunkIDs(ctx context.Context, title string, articleNumber string) ([]string, error)
	LawInfo(ctx context.Context, title string) (*LawInfo, error)
	BuildFilter(ctx context.Context, params FilterParams) (filterexpr.Expression, error)
}

// StoredMessage is one row returned by MessageStore.Recent.
type StoredMessage struct {
	Role      domain.Role
	Content   string
	CreatedAt int64 // unix nanos, monotonic within a session
}

// MessageStore is the chat persistence capability (out of scope for this
// core beyond this contract — see spec.md §1).
type MessageStore interface {
	Append(ctx context.Context, sessionID domain.SessionID, role domain.Role, content string) (string, error)
	Recent(ctx context.Context, sessionID domain.SessionID, limit int) ([]StoredMessage, error)
}

// SessionInfo is the read-only session metadata the engine may consult.
type SessionInfo struct {
	UserID    *domain.UserID
	CreatedAt int64
	TTL       int64
}

// SessionStore is read-only from the engine's perspective; it never
// mutates a session beyond what the host already manages.
type SessionStore interface {
	Get(ctx context.Context, sessionID domain.SessionID) (*SessionInfo, error)
}

// ProgressEventStatus mirrors the closed status set emitted with every
// progress event.
type ProgressEventStatus string

const (
	ProgressPlanning  ProgressEventStatus = "planning"
	ProgressSearching ProgressEventStatus = "searching"
	ProgressAnalyzing ProgressEventStatus = "analyzing"
	ProgressGenerating ProgressEventStatus = "generating"
	ProgressCompleted ProgressEventStatus = "completed"
	ProgressFailed    ProgressEventStatus = "failed"
)

// ProgressEvent is emitted after every Supervisor node entry/exit.
type ProgressEvent struct {
	Step       string
	Label      string
	Agent      string
	Status     ProgressEventStatus
	Progress   int // 0-100
	ElapsedMS  int64
}

// ProgressSink is a best-effort out-of-band channel; a failed Emit must
// never abort a turn.
type ProgressSink interface {
	Emit(ctx context.Context, sessionID domain.SessionID, event ProgressEvent)
}
