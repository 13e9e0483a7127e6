package toolregistry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct{ name string }

func (s *stubTool) Name() string { return s.name }
func (s *stubTool) Execute(ctx context.Context, query string, params map[string]any) (Output, error) {
	return Output{Status: "success", ToolName: s.name}, nil
}

func TestRegistry_GetAndNames(t *testing.T) {
	r := New(&stubTool{name: "a"}, &stubTool{name: "b"})

	tool, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", tool.Name())

	_, ok = r.Get("missing")
	assert.False(t, ok)

	names := r.Names()
	assert.ElementsMatch(t, []string{"a", "b"}, names)
}

func TestRegistry_MustGet(t *testing.T) {
	r := New(&stubTool{name: "a"})

	tool, err := r.MustGet("a")
	require.NoError(t, err)
	assert.Equal(t, "a", tool.Name())

	_, err = r.MustGet("missing")
	assert.Error(t, err)
}
