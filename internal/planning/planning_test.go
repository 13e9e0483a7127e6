package planning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/capability/fakeclient"
	"github.com/gobokuku82/holmesnyangz-sub001/internal/domain"
)

func TestAgent_Plan_FastPathGateSkipsStage2(t *testing.T) {
	llm := fakeclient.NewLLMClient(map[string]string{
		"Current query": `{"intent_type":"GREETING","confidence":0.9,"is_in_scope":true}`,
	}, `{}`)
	agent := New(llm)

	intent, plan, err := agent.Plan(context.Background(), "안녕하세요", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.IntentGreeting, intent.Type)
	assert.True(t, plan.SkipExecution)
	assert.Empty(t, plan.Steps)
	// Stage 1 succeeded on its first attempt; stage 2 was never invoked.
	assert.Len(t, llm.Calls, 1)
}

func TestAgent_Plan_RunsStage2WhenInScope(t *testing.T) {
	llm := fakeclient.NewLLMClient(map[string]string{
		"Current query": `{"intent_type":"LEGAL_CONSULT","confidence":0.8,"is_in_scope":true}`,
		"Intent:":       `{"selected_teams":["search"],"execution_mode":"sequential","steps":[{"team":"search","subquery":"제7조","depends_on":[]}]}`,
	}, `{}`)
	agent := New(llm)

	intent, plan, err := agent.Plan(context.Background(), "주택임대차보호법 제7조가 뭐야?", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.IntentLegalConsult, intent.Type)
	assert.False(t, plan.SkipExecution)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, domain.TeamSearch, plan.Steps[0].Team)
}

func TestRuleBasedIntent_EmptyQueryIsUnclear(t *testing.T) {
	got := ruleBasedIntent("")
	assert.Equal(t, string(domain.IntentUnclear), got.IntentType)
}

func TestRuleBasedIntent_GreetingDetected(t *testing.T) {
	got := ruleBasedIntent("안녕하세요!")
	assert.Equal(t, string(domain.IntentGreeting), got.IntentType)
}

func TestRuleBasedPlan_KeywordMapsToTeam(t *testing.T) {
	plan := ruleBasedPlan("계약서 검토해주세요", domain.Intent{})
	assert.Contains(t, plan.SelectedTeams, "document")
	assert.Contains(t, plan.SelectedTeams, "review")
}

func TestRuleBasedPlan_DefaultsToSearch(t *testing.T) {
	plan := ruleBasedPlan("xyz", domain.Intent{})
	assert.Equal(t, []string{"search"}, plan.SelectedTeams)
}
