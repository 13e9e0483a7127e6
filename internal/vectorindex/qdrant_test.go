package vectorindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/filterexpr"
)

func TestQdrantConfig_Validate(t *testing.T) {
	err := (&QdrantConfig{}).validate()
	assert.Error(t, err)

	err = (&QdrantConfig{Client: nil, CollectionName: "chunks"}).validate()
	assert.Error(t, err)
}

func TestNewQdrantIndex_RejectsNilConfig(t *testing.T) {
	_, err := NewQdrantIndex(nil)
	assert.Error(t, err)
}

func TestToQdrantFilter_NilExpressionYieldsNilFilter(t *testing.T) {
	filter, err := toQdrantFilter(nil)
	require.NoError(t, err)
	assert.Nil(t, filter)
}

func TestToQdrantFilter_SingleEqCondition(t *testing.T) {
	expr := filterexpr.NewExprBuilder().Eq("category", "임대차").Build()
	filter, err := toQdrantFilter(expr)
	require.NoError(t, err)
	require.Len(t, filter.Must, 1)
}

func TestToQdrantFilter_ConjunctionOfMultipleConditions(t *testing.T) {
	expr := filterexpr.NewExprBuilder().
		Eq("category", "임대차").
		Eq("is_deleted", false).
		Build()

	filter, err := toQdrantFilter(expr)
	require.NoError(t, err)
	assert.Len(t, filter.Must, 2)
}

func TestCollectEqConditions_FlattensConjunction(t *testing.T) {
	expr := filterexpr.NewExprBuilder().
		Eq("category", "임대차").
		Eq("is_deleted", false).
		Build()

	conds, err := collectEqConditions(expr, nil)
	require.NoError(t, err)
	assert.Equal(t, "임대차", conds["category"])
	assert.Equal(t, false, conds["is_deleted"])
}

func TestCollectEqConditions_RejectsUnsupportedOperator(t *testing.T) {
	expr := filterexpr.Or(filterexpr.Eq("a", 1), filterexpr.Eq("b", 2))
	_, err := collectEqConditions(expr, nil)
	assert.Error(t, err)
}

func TestQdrantValueToAny(t *testing.T) {
	assert.Nil(t, qdrantValueToAny(nil))
}
