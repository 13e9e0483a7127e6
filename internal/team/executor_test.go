package team

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/capability/fakeclient"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/domain"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/toolregistry"
)

type fakeTool struct {
	name    string
	records []map[string]any
	err     error
}

func (f *fakeTool) Name() string { return f.name }
func (f *fakeTool) Execute(ctx context.Context, query string, params map[string]any) (toolregistry.Output, error) {
	if f.err != nil {
		return toolregistry.Output{}, f.err
	}
	return toolregistry.Output{Status: "success", Data: f.records, Count: len(f.records), ToolName: f.name}, nil
}

func TestExecutor_Execute_SuccessWhenEnoughRecords(t *testing.T) {
	records := make([]map[string]any, 6)
	for i := range records {
		records[i] = map[string]any{"doc_id": i}
	}
	registry := toolregistry.New(&fakeTool{name: "legal_search", records: records})
	llm := fakeclient.NewLLMClient(nil, `{"selected_tools":["legal_search"],"tool_parameters":{},"search_strategy":"default"}`)

	exec := NewSearchExecutor(registry, llm)
	result := exec.Execute(context.Background(), "제7조", nil)

	assert.Equal(t, domain.TeamStatusSuccess, result.Status)
	assert.Equal(t, 6, result.TotalRecords())
}

func TestExecutor_Execute_FailedWhenZeroRecords(t *testing.T) {
	registry := toolregistry.New(&fakeTool{name: "legal_search", records: nil})
	llm := fakeclient.NewLLMClient(nil, `{"selected_tools":["legal_search"],"tool_parameters":{},"search_strategy":"default"}`)

	exec := NewSearchExecutor(registry, llm)
	result := exec.Execute(context.Background(), "제7조", nil)

	assert.Equal(t, domain.TeamStatusFailed, result.Status)
	require.Error(t, result.Error)
}

func TestExecutor_Execute_PartialWhenFewRecords(t *testing.T) {
	registry := toolregistry.New(&fakeTool{name: "legal_search", records: []map[string]any{{"doc_id": 1}}})
	llm := fakeclient.NewLLMClient(nil, `{"selected_tools":["legal_search"],"tool_parameters":{},"search_strategy":"default"}`)

	exec := NewSearchExecutor(registry, llm)
	result := exec.Execute(context.Background(), "제7조", nil)

	assert.Equal(t, domain.TeamStatusPartial, result.Status)
}

func TestExecutor_Execute_ToolFailureDoesNotAbortOtherTools(t *testing.T) {
	registry := toolregistry.New(
		&fakeTool{name: "ok_tool", records: []map[string]any{{"a": 1}, {"a": 2}, {"a": 3}, {"a": 4}, {"a": 5}}},
		&fakeTool{name: "bad_tool", err: assert.AnError},
	)
	llm := fakeclient.NewLLMClient(nil, `{"selected_tools":["ok_tool","bad_tool"],"tool_parameters":{},"search_strategy":"default"}`)

	exec := NewSearchExecutor(registry, llm)
	result := exec.Execute(context.Background(), "query", nil)

	assert.Equal(t, domain.TeamStatusSuccess, result.Status)
	_, hasBadTool := result.CollectedData["bad_tool"]
	assert.False(t, hasBadTool)
	assert.Len(t, result.CollectedData["ok_tool"], 5)
}

// TestExecutor_Execute_AmbiguousMixDefersToLLM covers spec.md §4.5's "defer
// to LLM only when the tool mix is ambiguous": one tool returns data,
// another fails, landing total records in the partial range with a split
// success/failure mix, so DECIDE's Branch routes to defer_to_llm instead
// of accepting the rule-based partial status outright.
func TestExecutor_Execute_AmbiguousMixDefersToLLM(t *testing.T) {
	registry := toolregistry.New(
		&fakeTool{name: "tool_ok", records: []map[string]any{{"a": 1}, {"a": 2}}},
		&fakeTool{name: "tool_bad", err: assert.AnError},
	)
	llm := fakeclient.NewLLMClient(map[string]string{
		"Available tools:": `{"selected_tools":["tool_ok","tool_bad"],"tool_parameters":{},"search_strategy":"default"}`,
		"Tool runs:":        `{"status":"success","reason":"manual override"}`,
	}, `{}`)

	exec := NewSearchExecutor(registry, llm)
	result := exec.Execute(context.Background(), "query", nil)

	assert.Equal(t, domain.TeamStatusSuccess, result.Status)
	assert.Contains(t, result.Summary, "manual override")
}

func TestStubExecutor_ReturnsSkippedStatus(t *testing.T) {
	stub := NewStubExecutor(domain.TeamAnalysis, "not implemented")
	result := stub.Execute(context.Background(), "q", nil)
	assert.Equal(t, domain.TeamStatusSkipped, result.Status)
	assert.Equal(t, "not implemented", result.Summary)
}

func TestStubExecutor_HonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stub := NewStubExecutor(domain.TeamDocument, "n/a")
	result := stub.Execute(ctx, "q", nil)
	assert.Equal(t, domain.TeamStatusFailed, result.Status)
}
