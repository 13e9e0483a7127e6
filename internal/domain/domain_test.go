package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntentType_IsFastPath(t *testing.T) {
	fastPath := []IntentType{IntentIrrelevant, IntentUnclear, IntentGreeting}
	for _, it := range fastPath {
		assert.True(t, it.IsFastPath(), "%s should be fast path", it)
	}

	notFastPath := []IntentType{IntentLegalConsult, IntentMarketInquiry, IntentContractReview, IntentComprehensive}
	for _, it := range notFastPath {
		assert.False(t, it.IsFastPath(), "%s should not be fast path", it)
	}
}

func TestExecutionPlan_TeamsAndStepFor(t *testing.T) {
	plan := ExecutionPlan{Steps: []PlanStep{
		{Team: TeamSearch, Subquery: "q1"},
		{Team: TeamAnalysis, Subquery: "q2"},
	}}

	assert.Equal(t, []TeamName{TeamSearch, TeamAnalysis}, plan.Teams())

	step, ok := plan.StepFor(TeamAnalysis)
	assert.True(t, ok)
	assert.Equal(t, "q2", step.Subquery)

	_, ok = plan.StepFor(TeamReview)
	assert.False(t, ok)
}

func TestTeamResult_TotalRecords(t *testing.T) {
	r := TeamResult{CollectedData: map[string][]map[string]any{
		"tool_a": {{"x": 1}, {"x": 2}},
		"tool_b": {{"x": 3}},
	}}
	assert.Equal(t, 3, r.TotalRecords())
}

func TestSupervisorState_MarkCompleted_SplitsByStatus(t *testing.T) {
	state := NewSupervisorState(Query{SessionID: SessionID("s1")})

	state.MarkCompleted(TeamSearch, TeamResult{Status: TeamStatusSuccess})
	state.MarkCompleted(TeamReview, TeamResult{Status: TeamStatusFailed})

	assert.Contains(t, state.CompletedTeams, TeamSearch)
	assert.Contains(t, state.FailedTeams, TeamReview)
	assert.NotContains(t, state.CompletedTeams, TeamReview)
}

func TestSupervisorState_AllTeamsFailed(t *testing.T) {
	state := NewSupervisorState(Query{})
	assert.False(t, state.AllTeamsFailed(), "no teams ran yet")

	state.MarkCompleted(TeamSearch, TeamResult{Status: TeamStatusFailed})
	assert.True(t, state.AllTeamsFailed())

	state.MarkCompleted(TeamAnalysis, TeamResult{Status: TeamStatusSuccess})
	assert.False(t, state.AllTeamsFailed())
}
