// Package supervisor implements the top-level 8-node state machine
// (spec.md §4.7): initialize, persist_user_turn, plan, route, execute,
// aggregate, synthesize, persist_assistant_turn. Node-to-node transitions
// are an explicit []nodeStep table iterated in one loop, with a per-step
// skip check, rather than a flowgraph.Sequence — recorded as an Open Question resolution in
// DESIGN.md — because route()'s branching and execute()'s mode-dependent
// fan-out don't benefit from the generic flow DSL the way TeamExecutor's
// fixed 4-node cycle does. Per-session serialization uses a lazily created
// mutex per session, mirroring the teacher's per-key locking idiom in
// pkg/sync.
package supervisor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/capability"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/concurrency"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/config"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/domain"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/flowgraph"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/llmjson"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/memory"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/planning"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/progress"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/team"
)

// Supervisor owns one turn's SupervisorState end to end.
type Supervisor struct {
	cfg       config.Config
	planner   *planning.Agent
	sessions  *memory.SessionMemory
	sink      capability.ProgressSink
	checkpts  *progress.Checkpointer
	llm       capability.LLMClient
	teams     map[domain.TeamName]team.TeamExecutor
	pool      concurrency.Pool

	turnMu sync.Mutex
	locks  map[domain.SessionID]*sync.Mutex
}

// turn carries the per-turn scratch data (recalled history) that doesn't
// belong on domain.SupervisorState but that later steps (plan) still need.
// Keeping it local to ProcessQuery's call stack, rather than a Supervisor
// field, is what makes concurrent turns for different sessions race-free.
type turn struct {
	state   *domain.SupervisorState
	history []capability.StoredMessage
}

// New builds a Supervisor wired to its collaborators. teams should contain
// an entry for every TeamName the planner can select; a missing team is
// treated as unavailable and its plan step fails closed. The team-level
// fan-out pool is bounded to cfg.MaxParallelTeams concurrent teams per
// spec.md §5's N_TEAMS_PARALLEL = 3 invariant, backed by an ants.Pool per
// DESIGN.md's internal/supervisor entry.
func New(cfg config.Config, planner *planning.Agent, sessions *memory.SessionMemory, llm capability.LLMClient, sink capability.ProgressSink, teams map[domain.TeamName]team.TeamExecutor) (*Supervisor, error) {
	size := cfg.MaxParallelTeams
	if size <= 0 {
		size = 1
	}
	antsPool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("supervisor: build team fan-out pool (size %d): %w", size, err)
	}
	return &Supervisor{
		cfg:      cfg,
		planner:  planner,
		sessions: sessions,
		sink:     sink,
		checkpts: progress.NewCheckpointer(),
		llm:      llm,
		teams:    teams,
		pool:     concurrency.OfAnts(antsPool),
		locks:    make(map[domain.SessionID]*sync.Mutex),
	}, nil
}

// synthesisOutput is the strict JSON schema the synthesize node decodes.
type synthesisOutput struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// maxQueryLength bounds RawText per spec.md §7's InputRejected kind
// ("query fails input validation (empty, too long)").
const maxQueryLength = 4000

// validateQuery implements spec.md §7's InputRejected check: an empty or
// over-length query is rejected before anything else runs — no
// MessageStore write, no LLM call, per E2E scenario 5.
func validateQuery(q domain.Query) error {
	trimmed := strings.TrimSpace(q.RawText)
	if trimmed == "" {
		return fmt.Errorf("%w: query is empty", domain.ErrInputRejected)
	}
	if len(q.RawText) > maxQueryLength {
		return fmt.Errorf("%w: query exceeds %d characters", domain.ErrInputRejected, maxQueryLength)
	}
	return nil
}

// ProcessQuery runs the full 8-node cycle for one turn and returns the
// final SupervisorState. Per-session turns are serialized: a turn for
// session S blocks until any earlier in-flight turn for S has completed,
// per spec.md §5's "per-session turns are serialized" guarantee.
func (s *Supervisor) ProcessQuery(ctx context.Context, q domain.Query) (*domain.SupervisorState, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	unlock := s.lockSession(q.SessionID)
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.PerTurnTimeout)
	defer cancel()

	t := &turn{state: domain.NewSupervisorState(q)}
	tracker := progress.New(s.sink, q.SessionID)

	for _, step := range s.steps() {
		if (step.name == "execute" || step.name == "aggregate") && t.state.Plan.SkipExecution {
			continue // route→synthesize directly per spec.md §4.7 step 4
		}

		if err := ctx.Err(); err != nil {
			t.state.Status = domain.StatusCancelled
			s.checkpts.Mark(q.SessionID, step.name, t.state.Status)
			return t.state, fmt.Errorf("supervisor: %w", domain.ErrCancelled)
		}

		tracker.Enter(ctx, step.name, step.label, step.agent, step.enterStatus)
		if err := step.run(ctx, t); err != nil {
			t.state.ErrorLog = append(t.state.ErrorLog, fmt.Sprintf("%s: %v", step.name, err))
			t.state.Status = domain.StatusFailed
			tracker.Exit(ctx, step.name, step.label, step.agent, capability.ProgressFailed)
			s.checkpts.Mark(q.SessionID, step.name, t.state.Status)
			return t.state, fmt.Errorf("supervisor: step %s: %w", step.name, err)
		}
		tracker.Exit(ctx, step.name, step.label, step.agent, step.exitStatus)
		s.checkpts.Mark(q.SessionID, step.name, t.state.Status)
	}

	t.state.EndTime = time.Now()
	if t.state.Status == domain.StatusRunning {
		t.state.Status = finalStatus(t.state)
	}
	return t.state, nil
}

func finalStatus(state *domain.SupervisorState) domain.SupervisorStatus {
	if state.FinalResponse == "" {
		return domain.StatusFailed
	}
	if state.AllTeamsFailed() && len(state.TeamResults) > 0 {
		return domain.StatusFailed
	}
	if len(state.FailedTeams) > 0 {
		return domain.StatusPartial
	}
	return domain.StatusCompleted
}

func (s *Supervisor) lockSession(sessionID domain.SessionID) func() {
	s.turnMu.Lock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	s.turnMu.Unlock()

	lock.Lock()
	return lock.Unlock
}

type nodeStep struct {
	name        string
	label       string
	agent       string
	enterStatus capability.ProgressEventStatus
	exitStatus  capability.ProgressEventStatus
	run         func(ctx context.Context, t *turn) error
}

func (s *Supervisor) steps() []nodeStep {
	return []nodeStep{
		{"initialize", "세션 초기화", "supervisor", capability.ProgressPlanning, capability.ProgressPlanning, s.initialize},
		{"persist_user_turn", "사용자 메시지 저장", "supervisor", capability.ProgressPlanning, capability.ProgressPlanning, s.persistUserTurn},
		{"plan", "질의 분석", "planning_agent", capability.ProgressPlanning, capability.ProgressPlanning, s.plan},
		{"route", "실행 경로 결정", "supervisor", capability.ProgressPlanning, capability.ProgressPlanning, s.route},
		{"execute", "팀 실행", "supervisor", capability.ProgressSearching, capability.ProgressSearching, s.execute},
		{"aggregate", "결과 취합", "supervisor", capability.ProgressAnalyzing, capability.ProgressAnalyzing, s.aggregate},
		{"synthesize", "답변 생성", "supervisor", capability.ProgressGenerating, capability.ProgressCompleted, s.synthesize},
		{"persist_assistant_turn", "응답 저장", "supervisor", capability.ProgressCompleted, capability.ProgressCompleted, s.persistAssistantTurn},
	}
}

// initialize loads the last K messages from SessionMemory for PlanningAgent
// coreference context; the Supervisor doesn't otherwise touch Session.
func (s *Supervisor) initialize(ctx context.Context, t *turn) error {
	history, err := s.sessions.Recent(ctx, t.state.SessionID)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	t.history = history
	return nil
}

func (s *Supervisor) persistUserTurn(ctx context.Context, t *turn) error {
	return s.sessions.AppendUserTurn(ctx, t.state.SessionID, t.state.Query.RawText)
}

func (s *Supervisor) plan(ctx context.Context, t *turn) error {
	intent, execPlan, err := s.planner.Plan(ctx, t.state.Query.RawText, t.history)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPlanningFailed, err)
	}
	t.state.Intent = intent
	t.state.Plan = execPlan
	return nil
}

// route is a pure function of intent and plan. It sets ActiveTeams from the
// plan, or marks the plan SkipExecution when it already skips or has no steps.
func (s *Supervisor) route(ctx context.Context, t *turn) error {
	state := t.state
	if state.Plan.SkipExecution || len(state.Plan.Steps) == 0 {
		state.Plan.SkipExecution = true
		return nil
	}
	state.ActiveTeams = state.Plan.Teams()
	return nil
}

func (s *Supervisor) execute(ctx context.Context, t *turn) error {
	state := t.state
	switch state.Plan.ExecutionMode {
	case domain.ExecutionParallel:
		return s.executeParallel(ctx, state, state.Plan.Steps)
	case domain.ExecutionMixed:
		return s.executeMixed(ctx, state)
	default:
		return s.executeSequential(ctx, state)
	}
}

func (s *Supervisor) runStep(ctx context.Context, state *domain.SupervisorState, step domain.PlanStep) domain.TeamResult {
	teamCtx, cancel := context.WithTimeout(ctx, s.cfg.PerTeamTimeout)
	defer cancel()

	executor, ok := s.teams[step.Team]
	if !ok {
		result := domain.NewTimedTeamResult(step.Team, domain.TeamStatusFailed, time.Now())
		result.Error = fmt.Errorf("%w: no executor registered for team %q", domain.ErrTeamFailed, step.Team)
		return result
	}
	return executor.Execute(teamCtx, step.Subquery, state.Intent.Keywords)
}

func (s *Supervisor) executeSequential(ctx context.Context, state *domain.SupervisorState) error {
	for _, step := range state.Plan.Steps {
		result := s.runStep(ctx, state, step)
		state.MarkCompleted(step.Team, result)
	}
	return nil
}

func (s *Supervisor) executeParallel(ctx context.Context, state *domain.SupervisorState, steps []domain.PlanStep) error {
	branches := make(map[string]flowgraph.Node, len(steps))
	for _, step := range steps {
		step := step
		branches[string(step.Team)] = flowgraph.NewNode(string(step.Team), func(ctx context.Context, _ any) (any, error) {
			return s.runStep(ctx, state, step), nil
		})
	}

	node, err := flowgraph.NewParallel(flowgraph.ParallelConfig{
		Name:            "execute_teams",
		Branches:        branches,
		Pool:            s.pool,
		ContinueOnError: true,
		Aggregator: func(ctx context.Context, outputs map[string]any, errs map[string]error) (any, error) {
			return outputs, nil
		},
	})
	if err != nil {
		return err
	}

	out, err := node.Run(ctx, nil)
	if err != nil {
		return err
	}
	outputs := out.(map[string]any)
	for _, step := range steps {
		raw, ok := outputs[string(step.Team)]
		if !ok {
			continue
		}
		state.MarkCompleted(step.Team, raw.(domain.TeamResult))
	}
	return nil
}

// executeMixed runs steps in topological order on DependsOn, running each
// dependency level's steps in parallel.
func (s *Supervisor) executeMixed(ctx context.Context, state *domain.SupervisorState) error {
	levels, err := topologicalLevels(state.Plan.Steps)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTeamFailed, err)
	}
	for _, level := range levels {
		if err := s.executeParallel(ctx, state, level); err != nil {
			return err
		}
	}
	return nil
}

func topologicalLevels(steps []domain.PlanStep) ([][]domain.PlanStep, error) {
	done := make(map[domain.TeamName]bool, len(steps))
	var levels [][]domain.PlanStep
	remaining := len(steps)
	for remaining > 0 {
		var level []domain.PlanStep
		for _, st := range steps {
			if done[st.Team] {
				continue
			}
			ready := true
			for _, dep := range st.DependsOn {
				if !done[dep] {
					ready = false
					break
				}
			}
			if ready {
				level = append(level, st)
			}
		}
		if len(level) == 0 {
			return nil, fmt.Errorf("cyclic or unresolved depends_on among %d remaining steps", remaining)
		}
		sort.Slice(level, func(i, j int) bool { return level[i].Team < level[j].Team })
		for _, st := range level {
			done[st.Team] = true
		}
		remaining -= len(level)
		levels = append(levels, level)
	}
	return levels, nil
}

// aggregate merges TeamResults preserving per-team provenance and computes
// citation strings from any SearchRecord-shaped records it finds.
func (s *Supervisor) aggregate(ctx context.Context, t *turn) error {
	state := t.state
	state.AggregatedResults = domain.AggregatedResults{
		ByTeam:  state.TeamResults,
		Sources: collectSources(state.TeamResults),
	}
	return nil
}

func collectSources(results map[domain.TeamName]domain.TeamResult) []string {
	seen := make(map[string]bool)
	var sources []string
	for _, result := range results {
		for _, records := range result.CollectedData {
			for _, rec := range records {
				title, _ := rec["law_title"].(string)
				if title == "" {
					continue
				}
				cite := title
				if num, ok := rec["article_number"].(string); ok && num != "" {
					cite = title + " " + num
				}
				if !seen[cite] {
					seen[cite] = true
					sources = append(sources, cite)
				}
			}
		}
	}
	sort.Strings(sources)
	return sources
}

const guidanceTemplate = "질문을 이해하지 못했습니다. 부동산 법률, 시세, 계약서 검토와 관련된 질문을 구체적으로 말씀해 주세요."

// synthesize calls the LLM with the aggregated results, or returns a fixed
// guidance template without an LLM call whenever the plan skipped execution
// (IRRELEVANT, UNCLEAR and GREETING intents, or a plan with no steps).
func (s *Supervisor) synthesize(ctx context.Context, t *turn) error {
	state := t.state
	if state.Plan.SkipExecution {
		state.FinalResponse = guidanceTemplate
		return nil
	}

	decoder := llmjson.Decoder[synthesisOutput]{LLM: s.llm}
	prompt := fmt.Sprintf("Query: %s\nAggregated results: %+v\nSources: %v",
		state.Query.RawText, state.AggregatedResults.ByTeam, state.AggregatedResults.Sources)

	out, err := decoder.Decode(ctx,
		capability.CompleteParams{
			System:         synthesisSystemPrompt,
			Prompt:         prompt,
			Temperature:    0.2,
			MaxTokens:      1200,
			ResponseFormat: capability.ResponseFormatJSON,
		},
		capability.CompleteParams{
			System:         synthesisSystemPrompt,
			Prompt:         fmt.Sprintf("Summarize findings for: %s. Respond with strict JSON only.", state.Query.RawText),
			Temperature:    0.2,
			MaxTokens:      1200,
			ResponseFormat: capability.ResponseFormatJSON,
		},
		func() synthesisOutput {
			return synthesisOutput{Answer: deterministicSummary(state), Sources: state.AggregatedResults.Sources}
		},
	)
	if err != nil && out.Answer == "" {
		return fmt.Errorf("%w: %v", domain.ErrSynthesisFailed, err)
	}

	state.FinalResponse = out.Answer
	if len(out.Sources) > 0 {
		state.AggregatedResults.Sources = out.Sources
	}
	return nil
}

const synthesisSystemPrompt = `You are a Korean real-estate legal assistant. Given a user query and
aggregated team results, write a final, user-facing answer citing sources.
Respond with strict JSON matching: {"answer": string, "sources": [string]}`

func deterministicSummary(state *domain.SupervisorState) string {
	total := 0
	for _, r := range state.TeamResults {
		total += r.TotalRecords()
	}
	return fmt.Sprintf("%d건의 관련 자료를 찾았습니다. 자세한 내용은 출처를 참고해 주세요.", total)
}

func (s *Supervisor) persistAssistantTurn(ctx context.Context, t *turn) error {
	return s.sessions.AppendAssistantTurn(ctx, t.state.SessionID, t.state.FinalResponse)
}
