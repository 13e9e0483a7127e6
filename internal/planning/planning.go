// Package planning implements PlanningAgent (spec.md §4.6): a two-stage LLM
// classifier with a fast-path early exit for out-of-scope or trivial
// inputs. Grounded on the teacher's two-stage agent pattern in
// ai/agent/planner.go and on internal/llmjson for the strict-JSON,
// one-retry-then-fallback decode contract stage 1 and stage 2 share.
package planning

import (
	"context"
	"fmt"
	"strings"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/capability"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/domain"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/llmjson"
)

const (
	stage1Temperature = 0.0
	stage1MaxTokens   = 500
	stage2Temperature = 0.0
	stage2MaxTokens   = 800
)

// intentPayload is the strict stage-1 JSON schema.
type intentPayload struct {
	IntentType string            `json:"intent_type"`
	Confidence float64           `json:"confidence"`
	Entities   map[string]string `json:"entities"`
	Keywords   []string          `json:"keywords"`
	InScope    bool              `json:"is_in_scope"`
}

// planStepPayload is one step within the stage-2 JSON schema.
type planStepPayload struct {
	Team      string   `json:"team"`
	Subquery  string   `json:"subquery"`
	DependsOn []string `json:"depends_on"`
}

// planPayload is the strict stage-2 JSON schema.
type planPayload struct {
	SelectedTeams []string          `json:"selected_teams"`
	ExecutionMode string            `json:"execution_mode"`
	Steps         []planStepPayload `json:"steps"`
}

// Agent runs the two-stage classify-then-plan pipeline.
type Agent struct {
	llm capability.LLMClient
}

// New builds a PlanningAgent over the given LLMClient.
func New(llm capability.LLMClient) *Agent {
	return &Agent{llm: llm}
}

// Plan runs stage 1, the fast-path gate, and (if not gated) stage 2,
// returning the Intent and ExecutionPlan together since route() consumes
// both per spec.md §4.7 step 4.
func (a *Agent) Plan(ctx context.Context, query string, history []capability.StoredMessage) (domain.Intent, domain.ExecutionPlan, error) {
	intent, err := a.classifyIntent(ctx, query, history)
	if err != nil {
		return domain.Intent{}, domain.ExecutionPlan{}, fmt.Errorf("planning: stage1 classify: %w", err)
	}

	if intent.Type.IsFastPath() {
		return intent, domain.ExecutionPlan{SkipExecution: true}, nil
	}

	plan, err := a.selectTeams(ctx, query, intent)
	if err != nil {
		return domain.Intent{}, domain.ExecutionPlan{}, fmt.Errorf("planning: stage2 select_teams: %w", err)
	}
	return intent, plan, nil
}

func historyTranscript(history []capability.StoredMessage) string {
	var b strings.Builder
	for _, m := range history {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	return b.String()
}

func (a *Agent) classifyIntent(ctx context.Context, query string, history []capability.StoredMessage) (domain.Intent, error) {
	system := intentSystemPrompt
	prompt := fmt.Sprintf("Recent conversation:\n%s\nCurrent query: %s", historyTranscript(history), query)

	decoder := llmjson.Decoder[intentPayload]{
		LLM: a.llm,
		Validate: func(p intentPayload) error {
			if p.IntentType == "" {
				return fmt.Errorf("missing intent_type")
			}
			return nil
		},
	}

	payload, err := decoder.Decode(ctx,
		capability.CompleteParams{
			System:         system,
			Prompt:         prompt,
			Temperature:    stage1Temperature,
			MaxTokens:      stage1MaxTokens,
			ResponseFormat: capability.ResponseFormatJSON,
		},
		capability.CompleteParams{
			System:         system,
			Prompt:         fmt.Sprintf("Classify this query into one of: LEGAL_CONSULT, MARKET_INQUIRY, CONTRACT_REVIEW, COMPREHENSIVE, IRRELEVANT, UNCLEAR, GREETING. Query: %s. Respond with strict JSON only.", query),
			Temperature:    stage1Temperature,
			MaxTokens:      stage1MaxTokens,
			ResponseFormat: capability.ResponseFormatJSON,
		},
		func() intentPayload { return ruleBasedIntent(query) },
	)
	if err != nil {
		// decode already applied the rule-based fallback; the error is
		// informational for the caller's logs, not fatal.
		_ = err
	}

	return domain.Intent{
		Type:       domain.IntentType(payload.IntentType),
		Confidence: payload.Confidence,
		Entities:   payload.Entities,
		Keywords:   payload.Keywords,
		InScope:    payload.InScope,
	}, nil
}

func (a *Agent) selectTeams(ctx context.Context, query string, intent domain.Intent) (domain.ExecutionPlan, error) {
	system := teamSelectionSystemPrompt
	prompt := fmt.Sprintf("Intent: %s (keywords: %v). Query: %s", intent.Type, intent.Keywords, query)

	decoder := llmjson.Decoder[planPayload]{
		LLM: a.llm,
		Validate: func(p planPayload) error {
			if len(p.SelectedTeams) == 0 {
				return fmt.Errorf("no teams selected")
			}
			return nil
		},
	}

	payload, _ := decoder.Decode(ctx,
		capability.CompleteParams{
			System:         system,
			Prompt:         prompt,
			Temperature:    stage2Temperature,
			MaxTokens:      stage2MaxTokens,
			ResponseFormat: capability.ResponseFormatJSON,
		},
		capability.CompleteParams{
			System:         system,
			Prompt:         fmt.Sprintf("Select teams (search, analysis, document, review) for: %s. Respond with strict JSON only.", query),
			Temperature:    stage2Temperature,
			MaxTokens:      stage2MaxTokens,
			ResponseFormat: capability.ResponseFormatJSON,
		},
		func() planPayload { return ruleBasedPlan(query, intent) },
	)

	return toExecutionPlan(payload), nil
}

func toExecutionPlan(p planPayload) domain.ExecutionPlan {
	steps := make([]domain.PlanStep, 0, len(p.Steps))
	for _, s := range p.Steps {
		deps := make([]domain.TeamName, 0, len(s.DependsOn))
		for _, d := range s.DependsOn {
			deps = append(deps, domain.TeamName(d))
		}
		steps = append(steps, domain.PlanStep{
			Team:      domain.TeamName(s.Team),
			Subquery:  s.Subquery,
			DependsOn: deps,
		})
	}
	mode := domain.ExecutionMode(p.ExecutionMode)
	if mode == "" {
		mode = domain.ExecutionSequential
	}
	return domain.ExecutionPlan{Steps: steps, ExecutionMode: mode}
}

const intentSystemPrompt = `You classify a Korean real-estate legal assistant's incoming query into
exactly one of: LEGAL_CONSULT, MARKET_INQUIRY, CONTRACT_REVIEW, COMPREHENSIVE,
IRRELEVANT, UNCLEAR, GREETING. Respond with strict JSON matching:
{"intent_type": string, "confidence": number, "entities": object, "keywords": [string], "is_in_scope": bool}
No prose, no markdown fences unless wrapping the JSON.`

const teamSelectionSystemPrompt = `Given a classified intent and query, select which teams
(search, analysis, document, review) should run and how to decompose the query.
Respond with strict JSON matching:
{"selected_teams": [string], "execution_mode": "sequential"|"parallel"|"mixed",
 "steps": [{"team": string, "subquery": string, "depends_on": [string]}]}`
