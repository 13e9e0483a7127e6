// Package vectorindex implements capability.VectorIndex. MemoryIndex is a
// brute-force reference implementation used by tests and the example
// process; QdrantIndex wires the teacher's qdrant/go-client dependency into
// a real ANN backend (the DOMAIN STACK dependency this repo gives a home).
package vectorindex

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/capability"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/filterexpr"
)

// Chunk is one embedded document chunk stored in MemoryIndex.
type Chunk struct {
	DocID     string
	Content   string
	Metadata  map[string]any
	Embedding []float64
}

// MemoryIndex is a brute-force nearest-neighbor scan over Chunks held in
// memory, filtered by evaluating each predicate against chunk metadata
// before scoring — matching the "filter before scoring" requirement in
// spec.md §4.2 trivially, since every candidate is filtered up front.
type MemoryIndex struct {
	chunks []Chunk
}

var _ capability.VectorIndex = (*MemoryIndex)(nil)

// NewMemoryIndex builds a MemoryIndex over the given chunks.
func NewMemoryIndex(chunks []Chunk) *MemoryIndex {
	return &MemoryIndex{chunks: chunks}
}

// matches evaluates a filterexpr.Expression against chunk metadata. Only
// the conjunctive `field = value` shapes BuildFilter produces are
// supported, which is all this repo's MetadataCatalog ever emits.
func matches(metadata map[string]any, predicate filterexpr.Expression) bool {
	if predicate == nil {
		return true
	}
	switch e := predicate.(type) {
	case *filterexpr.Condition:
		switch e.Operator {
		case filterexpr.AND:
			return matches(metadata, e.Left) && matchesGroup(metadata, e.Right)
		case filterexpr.EQ:
			field, ok := e.Left.(*filterexpr.Field)
			if !ok {
				return true
			}
			value, ok := e.Right.(*filterexpr.Value)
			if !ok {
				return true
			}
			return equalLoose(metadata[field.Name()], value.Raw())
		}
	case *filterexpr.Group:
		return matches(metadata, e.Inner)
	}
	return true
}

func matchesGroup(metadata map[string]any, e filterexpr.Expression) bool {
	if g, ok := e.(*filterexpr.Group); ok {
		return matches(metadata, g.Inner)
	}
	return matches(metadata, e)
}

func equalLoose(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	return toComparable(a) == toComparable(b)
}

func toComparable(v any) any {
	switch t := v.(type) {
	case string:
		return strings.ToLower(t)
	default:
		return v
	}
}

// Query runs a brute-force cosine-distance nearest-neighbor scan over
// chunks passing predicate, returning up to k matches sorted by ascending
// distance (ties broken by DocID, per spec.md §4.3's determinism rule).
func (m *MemoryIndex) Query(_ context.Context, embedding []float64, predicate filterexpr.Expression, k int) ([]capability.VectorMatch, error) {
	candidates := make([]capability.VectorMatch, 0, len(m.chunks))
	for _, c := range m.chunks {
		if !matches(c.Metadata, predicate) {
			continue
		}
		candidates = append(candidates, capability.VectorMatch{
			DocID:    c.DocID,
			Content:  c.Content,
			Metadata: c.Metadata,
			Distance: cosineDistance(embedding, c.Embedding),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Distance != candidates[j].Distance {
			return candidates[i].Distance < candidates[j].Distance
		}
		return candidates[i].DocID < candidates[j].DocID
	})
	if k > 0 && k < len(candidates) {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// Get fetches chunks by id directly, bypassing similarity scoring.
func (m *MemoryIndex) Get(_ context.Context, ids []string) ([]capability.VectorMatch, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]capability.VectorMatch, 0, len(ids))
	for _, c := range m.chunks {
		if _, ok := want[c.DocID]; ok {
			out = append(out, capability.VectorMatch{DocID: c.DocID, Content: c.Content, Metadata: c.Metadata})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocID < out[j].DocID })
	return out, nil
}

func cosineDistance(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 1.0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 1.0
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if cos > 1 {
		cos = 1
	}
	if cos < -1 {
		cos = -1
	}
	return 1 - cos
}
