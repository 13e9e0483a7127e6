// Package team implements TeamExecutor (spec.md §4.5): the internal
// PLAN→EXECUTE→PROCESS→DECIDE state machine every team runs. The Search
// team is the concrete exemplar; Analysis, Document and Review are stub
// adapters that satisfy the same contract (spec.md explicitly leaves their
// internals out of scope). Grounded on the teacher's flow-based pipeline
// construction (flow/flow.go) for the 4-node sequence and on
// ai/rag/pipeline.go's retrieveByQuery for the bounded errgroup tool
// fan-out.
package team

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/capability"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/domain"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/flowgraph"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/llmjson"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/toolregistry"
)

const (
	maxConcurrentTools = 3
	perToolTimeout     = 30 * time.Second
	decideMinRecords   = 5
)

// Executor is the Search team's concrete TeamExecutor. The other teams'
// StubExecutor satisfies the same TeamExecutor interface without wrapping it.
type Executor struct {
	team     domain.TeamName
	registry *toolregistry.Registry
	llm      capability.LLMClient
	pipeline *flowgraph.Sequence
}

// planOutput is the strict JSON schema PLAN decodes.
type planOutput struct {
	SelectedTools  []string                  `json:"selected_tools"`
	ToolParameters map[string]map[string]any `json:"tool_parameters"`
	SearchStrategy string                    `json:"search_strategy"`
}

// toolExecution is one tool's EXECUTE outcome.
type toolExecution struct {
	toolName string
	output   toolregistry.Output
	err      error
}

// state threads through the 4 nodes as the flowgraph.Node `any` payload.
type state struct {
	subquery  string
	keywords  []string
	plan      planOutput
	runs      []toolExecution
	result    domain.TeamResult
	ambiguous bool
}

// NewSearchExecutor builds the Search team's TeamExecutor over the given
// tool registry and LLM, grounded on spec.md §4.5's exemplar. DECIDE is a
// flowgraph.Branch: the rule-based gate decides outright for the clear
// cases (≥5 records, 0 records) and only routes to the "defer_to_llm"
// branch when multiple tools ran with a split success/failure mix in the
// partial range — spec.md §4.5's "defer to LLM only when the tool mix is
// ambiguous".
func NewSearchExecutor(registry *toolregistry.Registry, llm capability.LLMClient) *Executor {
	e := &Executor{team: domain.TeamSearch, registry: registry, llm: llm}

	decideBranch, err := flowgraph.NewBranch("DECIDE",
		flowgraph.NewNode("decide_rule", e.decideRule),
		e.decideResolver,
		map[string]flowgraph.Node{
			"accept":       flowgraph.NewNode("accept", passthrough),
			"defer_to_llm": flowgraph.NewNode("defer_to_llm", e.decideWithLLM),
		},
	)
	if err != nil {
		// decideRule is never nil; this would only fire on a programming
		// error in the wiring above.
		panic(fmt.Sprintf("team: build DECIDE branch: %v", err))
	}

	e.pipeline = flowgraph.NewSequence("search_team",
		flowgraph.NewNode("PLAN", e.plan),
		flowgraph.NewNode("EXECUTE", e.execute),
		flowgraph.NewNode("PROCESS", e.process),
		decideBranch,
	)
	return e
}

func passthrough(ctx context.Context, input any) (any, error) { return input, nil }

// Execute runs the 4-node cycle for one subquery and never returns an
// error for downstream-recoverable failures — a failing tool, an LLM
// hiccup, or zero results all surface as a TeamResult with the appropriate
// status, per spec.md §4.5's "guarantees" clause.
func (e *Executor) Execute(ctx context.Context, subquery string, keywords []string) domain.TeamResult {
	start := time.Now()
	out, err := e.pipeline.Run(ctx, &state{subquery: subquery, keywords: keywords})
	if err != nil {
		result := domain.NewTimedTeamResult(e.team, domain.TeamStatusFailed, start)
		result.Error = fmt.Errorf("team %s: %w", e.team, err)
		return result
	}
	s := out.(*state)
	s.result.DurationMS = time.Since(start).Milliseconds()
	return s.result
}

func (e *Executor) plan(ctx context.Context, input any) (any, error) {
	s := input.(*state)

	decoder := llmjson.Decoder[planOutput]{LLM: e.llm}
	prompt := fmt.Sprintf(
		"Available tools: %v\nSubquery: %s\nKeywords: %v\n"+
			"Never set doc_type to a vague catch-all like \"기타\"; only set filters you are certain apply.",
		e.registry.Names(), s.subquery, s.keywords)

	payload, _ := decoder.Decode(ctx,
		capability.CompleteParams{
			System:         planSystemPrompt,
			Prompt:         prompt,
			Temperature:    0.0,
			MaxTokens:      400,
			ResponseFormat: capability.ResponseFormatJSON,
		},
		capability.CompleteParams{
			System:         planSystemPrompt,
			Prompt:         fmt.Sprintf("Select tools for: %s. Respond with strict JSON only.", s.subquery),
			Temperature:    0.0,
			MaxTokens:      400,
			ResponseFormat: capability.ResponseFormatJSON,
		},
		func() planOutput { return defaultPlan(e.registry.Names()) },
	)
	s.plan = payload
	return s, nil
}

const planSystemPrompt = `Select which registered tools to run for this subquery and their
parameters. Respond with strict JSON matching:
{"selected_tools": [string], "tool_parameters": {toolName: object}, "search_strategy": string}`

func defaultPlan(toolNames []string) planOutput {
	return planOutput{SelectedTools: toolNames, ToolParameters: map[string]map[string]any{}, SearchStrategy: "default"}
}

// execute invokes every selected tool concurrently, bounded to 3 in-flight
// at once via errgroup, with a per-tool 30s timeout. A failing tool is
// recorded, never aborts siblings.
func (e *Executor) execute(ctx context.Context, input any) (any, error) {
	s := input.(*state)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentTools)

	runs := make([]toolExecution, len(s.plan.SelectedTools))
	for i, name := range s.plan.SelectedTools {
		i, name := i, name
		g.Go(func() error {
			tool, ok := e.registry.Get(name)
			if !ok {
				runs[i] = toolExecution{toolName: name, err: fmt.Errorf("unknown tool %q", name)}
				return nil
			}
			toolCtx, cancel := context.WithTimeout(gctx, perToolTimeout)
			defer cancel()
			params := s.plan.ToolParameters[name]
			out, err := tool.Execute(toolCtx, s.subquery, params)
			runs[i] = toolExecution{toolName: name, output: out, err: err}
			return nil
		})
	}
	_ = g.Wait() // per-tool errors are captured in runs, never propagated

	s.runs = runs
	return s, nil
}

// process normalizes tool outputs into collected_data keyed by tool name.
func (e *Executor) process(ctx context.Context, input any) (any, error) {
	s := input.(*state)

	collected := make(map[string][]map[string]any, len(s.runs))
	toolsWithData := 0
	for _, run := range s.runs {
		if run.err != nil {
			continue
		}
		collected[run.toolName] = run.output.Data
		if len(run.output.Data) > 0 {
			toolsWithData++
		}
	}

	result := domain.TeamResult{Team: e.team, CollectedData: collected}
	if len(s.runs) > 0 {
		result.Summary = fmt.Sprintf("%d/%d tools returned data (quality %.2f)",
			toolsWithData, len(s.runs), float64(toolsWithData)/float64(len(s.runs)))
	}
	s.result = result
	return s, nil
}

// decideRule is DECIDE's rule-based main node (spec.md §4.5): it settles
// the two clear-cut cases outright and, for the partial range, flags
// whether the tool mix is ambiguous enough to defer to the LLM — this
// keeps the ~80% common case free of any LLM call, per §4.6's rationale
// for avoiding a per-turn call whenever the rules already suffice.
func (e *Executor) decideRule(ctx context.Context, input any) (any, error) {
	s := input.(*state)

	total := s.result.TotalRecords()
	switch {
	case total >= decideMinRecords:
		s.result.Status = domain.TeamStatusSuccess
		s.ambiguous = false
	case total == 0:
		s.result.Status = domain.TeamStatusFailed
		if s.result.Error == nil {
			s.result.Error = fmt.Errorf("team %s: no records collected", e.team)
		}
		s.ambiguous = false
	default:
		s.result.Status = domain.TeamStatusPartial
		s.ambiguous = toolMixAmbiguous(s.runs)
	}
	return s, nil
}

// toolMixAmbiguous reports whether more than one tool ran and they
// disagree (some returned data, some failed or returned nothing) — the
// "ambiguous tool mix" spec.md §4.5 reserves the LLM escalation for. A
// single tool's outcome is never ambiguous; there is no mix to resolve.
func toolMixAmbiguous(runs []toolExecution) bool {
	if len(runs) < 2 {
		return false
	}
	succeeded, failed := 0, 0
	for _, r := range runs {
		if r.err != nil || len(r.output.Data) == 0 {
			failed++
		} else {
			succeeded++
		}
	}
	return succeeded > 0 && failed > 0
}

// decideResolver picks DECIDE's successor branch: "defer_to_llm" when
// decideRule flagged the tool mix as ambiguous, "accept" otherwise.
func (e *Executor) decideResolver(ctx context.Context, _ any, output any) (string, error) {
	s := output.(*state)
	if s.ambiguous {
		return "defer_to_llm", nil
	}
	return "accept", nil
}

// decideOutput is the strict JSON schema the defer_to_llm branch decodes.
type decideOutput struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

const decideSystemPrompt = `Given a mixed set of tool results for a real-estate legal search
subquery (some tools returned data, others failed or returned nothing), decide the team's
final status. Respond with strict JSON matching:
{"status": "success"|"partial"|"failed", "reason": string}`

// decideWithLLM is DECIDE's defer_to_llm branch: called only when
// decideRule flags the tool mix as ambiguous (spec.md §4.5's "defer to LLM
// only when the tool mix is ambiguous").
func (e *Executor) decideWithLLM(ctx context.Context, input any) (any, error) {
	s := input.(*state)

	decoder := llmjson.Decoder[decideOutput]{LLM: e.llm}
	prompt := fmt.Sprintf("Subquery: %s\nTool runs: %d, total records: %d\nPer-tool outcomes: %+v",
		s.subquery, len(s.runs), s.result.TotalRecords(), s.runs)

	payload, _ := decoder.Decode(ctx,
		capability.CompleteParams{
			System:         decideSystemPrompt,
			Prompt:         prompt,
			Temperature:    0.0,
			MaxTokens:      200,
			ResponseFormat: capability.ResponseFormatJSON,
		},
		capability.CompleteParams{
			System:         decideSystemPrompt,
			Prompt:         fmt.Sprintf("Mixed tool results for: %s. Respond with strict JSON only.", s.subquery),
			Temperature:    0.0,
			MaxTokens:      200,
			ResponseFormat: capability.ResponseFormatJSON,
		},
		func() decideOutput {
			return decideOutput{Status: string(domain.TeamStatusPartial), Reason: "ambiguous tool mix, defaulting to partial"}
		},
	)

	if status := domain.TeamStatus(payload.Status); status != "" {
		s.result.Status = status
	}
	if payload.Reason != "" {
		s.result.Summary = strings.TrimSpace(s.result.Summary + " (" + payload.Reason + ")")
	}
	return s, nil
}
