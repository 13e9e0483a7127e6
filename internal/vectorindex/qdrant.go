package vectorindex

import (
	"context"
	"fmt"

	qdrantclient "github.com/qdrant/go-client/qdrant"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/capability"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/filterexpr"
)

// QdrantConfig configures a QdrantIndex. Adapted from the teacher's
// ai/providers/vectorstores/qdrant.VectorStoreConfig, trimmed to the
// read-path fields this engine needs (embedding is always supplied
// pre-computed by the Embedder capability, so no embedding model is
// threaded through here).
type QdrantConfig struct {
	// Client is the Qdrant client instance. Required.
	Client *qdrantclient.Client
	// CollectionName is the Qdrant collection legal chunks are stored in. Required.
	CollectionName string
}

func (c *QdrantConfig) validate() error {
	if c == nil || c.Client == nil {
		return fmt.Errorf("vectorindex: qdrant client is required")
	}
	if c.CollectionName == "" {
		return fmt.Errorf("vectorindex: qdrant collection name is required")
	}
	return nil
}

// payloadContentKey is the payload field legal chunk text is stored under,
// mirroring the teacher's payloadDocumentContentKey convention.
const payloadContentKey = "__chunk_content__"

// QdrantIndex wires github.com/qdrant/go-client into capability.VectorIndex.
type QdrantIndex struct {
	client     *qdrantclient.Client
	collection string
}

var _ capability.VectorIndex = (*QdrantIndex)(nil)

// NewQdrantIndex validates cfg and returns a ready QdrantIndex.
func NewQdrantIndex(cfg *QdrantConfig) (*QdrantIndex, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &QdrantIndex{client: cfg.Client, collection: cfg.CollectionName}, nil
}

// toQdrantFilter translates a filterexpr.Expression into a Qdrant filter.
// Only the conjunctive `field = value` shapes MetadataCatalog.BuildFilter
// produces are supported.
func toQdrantFilter(expr filterexpr.Expression) (*qdrantclient.Filter, error) {
	if expr == nil {
		return nil, nil
	}
	conds, err := collectEqConditions(expr, nil)
	if err != nil {
		return nil, err
	}
	must := make([]*qdrantclient.Condition, 0, len(conds))
	for field, value := range conds {
		must = append(must, matchCondition(field, value))
	}
	return &qdrantclient.Filter{Must: must}, nil
}

func collectEqConditions(expr filterexpr.Expression, into map[string]any) (map[string]any, error) {
	if into == nil {
		into = map[string]any{}
	}
	switch e := expr.(type) {
	case *filterexpr.Group:
		return collectEqConditions(e.Inner, into)
	case *filterexpr.Condition:
		switch e.Operator {
		case filterexpr.AND:
			if _, err := collectEqConditions(e.Left, into); err != nil {
				return nil, err
			}
			return collectEqConditions(e.Right, into)
		case filterexpr.EQ:
			field, ok := e.Left.(*filterexpr.Field)
			if !ok {
				return nil, fmt.Errorf("vectorindex: unsupported filter left operand %T", e.Left)
			}
			value, ok := e.Right.(*filterexpr.Value)
			if !ok {
				return nil, fmt.Errorf("vectorindex: unsupported filter right operand %T", e.Right)
			}
			into[field.Name()] = value.Raw()
			return into, nil
		default:
			return nil, fmt.Errorf("vectorindex: unsupported operator %q", e.Operator)
		}
	default:
		return nil, fmt.Errorf("vectorindex: unsupported expression %T", expr)
	}
}

func matchCondition(field string, value any) *qdrantclient.Condition {
	switch v := value.(type) {
	case bool:
		return qdrantclient.NewMatchBool(field, v)
	case string:
		return qdrantclient.NewMatch(field, v)
	default:
		return qdrantclient.NewMatch(field, fmt.Sprintf("%v", v))
	}
}

// Query issues a Qdrant similarity search, converting the generic float64
// embedding to the float32 vectors Qdrant expects.
func (q *QdrantIndex) Query(ctx context.Context, embedding []float64, predicate filterexpr.Expression, k int) ([]capability.VectorMatch, error) {
	filter, err := toQdrantFilter(predicate)
	if err != nil {
		return nil, err
	}
	vector := make([]float32, len(embedding))
	for i, v := range embedding {
		vector[i] = float32(v)
	}

	limit := uint64(k)
	points, err := q.client.Query(ctx, &qdrantclient.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrantclient.NewQuery(vector...),
		Filter:         filter,
		Limit:          &limit,
		WithPayload:    qdrantclient.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("vectorindex: qdrant query on %s: %w", q.collection, err)
	}

	matches := make([]capability.VectorMatch, 0, len(points))
	for _, p := range points {
		content, metadata := splitPayload(p.GetPayload())
		matches = append(matches, capability.VectorMatch{
			DocID:    p.GetId().GetUuid(),
			Content:  content,
			Metadata: metadata,
			Distance: 1 - float64(p.GetScore()),
		})
	}
	return matches, nil
}

// Get fetches points by id directly, bypassing similarity scoring, via
// Qdrant's Retrieve RPC.
func (q *QdrantIndex) Get(ctx context.Context, ids []string) ([]capability.VectorMatch, error) {
	pointIDs := make([]*qdrantclient.PointId, 0, len(ids))
	for _, id := range ids {
		pointIDs = append(pointIDs, qdrantclient.NewID(id))
	}
	points, err := q.client.Get(ctx, &qdrantclient.GetPoints{
		CollectionName: q.collection,
		Ids:            pointIDs,
		WithPayload:    qdrantclient.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("vectorindex: qdrant get from %s: %w", q.collection, err)
	}
	matches := make([]capability.VectorMatch, 0, len(points))
	for _, p := range points {
		content, metadata := splitPayload(p.GetPayload())
		matches = append(matches, capability.VectorMatch{
			DocID:    p.GetId().GetUuid(),
			Content:  content,
			Metadata: metadata,
		})
	}
	return matches, nil
}

func splitPayload(payload map[string]*qdrantclient.Value) (content string, metadata map[string]any) {
	if payload == nil {
		return "", nil
	}
	metadata = make(map[string]any, len(payload))
	for k, v := range payload {
		if k == payloadContentKey {
			content = v.GetStringValue()
			continue
		}
		metadata[k] = qdrantValueToAny(v)
	}
	return content, metadata
}

func qdrantValueToAny(v *qdrantclient.Value) any {
	if v == nil {
		return nil
	}
	switch kind := v.Kind.(type) {
	case *qdrantclient.Value_StringValue:
		return kind.StringValue
	case *qdrantclient.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrantclient.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrantclient.Value_BoolValue:
		return kind.BoolValue
	default:
		return nil
	}
}
