package planning

import (
	"strings"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/domain"
)

// keywordTeams maps a trigger keyword to the team it implies. Checked in
// order; the first several matches win so a query can select multiple
// teams. This is the rule-based fallback spec.md §4.6 requires when both
// LLM decode attempts fail.
var keywordTeams = []struct {
	keyword string
	team    string
}{
	{"계약서", "document"},
	{"검토", "review"},
	{"시세", "analysis"},
	{"분석", "analysis"},
	{"법", "search"},
	{"조항", "search"},
	{"임대차", "search"},
}

// ruleBasedIntent classifies without an LLM: greetings and very short
// queries are routed to the fast-path gate, everything else defaults to a
// generic legal-consult classification with low confidence.
func ruleBasedIntent(query string) intentPayload {
	trimmed := strings.TrimSpace(query)
	lower := strings.ToLower(trimmed)

	switch {
	case trimmed == "":
		return intentPayload{IntentType: string(domain.IntentUnclear), Confidence: 0.3}
	case isGreeting(lower):
		return intentPayload{IntentType: string(domain.IntentGreeting), Confidence: 0.6, InScope: true}
	case len([]rune(trimmed)) < 4:
		return intentPayload{IntentType: string(domain.IntentUnclear), Confidence: 0.3}
	default:
		return intentPayload{
			IntentType: string(domain.IntentLegalConsult),
			Confidence: 0.4,
			InScope:    true,
			Keywords:   extractKeywords(trimmed),
		}
	}
}

var greetingWords = []string{"안녕", "hello", "hi", "thanks", "감사"}

func isGreeting(lower string) bool {
	for _, w := range greetingWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func extractKeywords(query string) []string {
	var hits []string
	for _, kt := range keywordTeams {
		if strings.Contains(query, kt.keyword) {
			hits = append(hits, kt.keyword)
		}
	}
	return hits
}

// ruleBasedPlan maps keywords present in the query to teams, defaulting to
// a single "search" step when nothing matches, since search is the always-
// available baseline capability.
func ruleBasedPlan(query string, intent domain.Intent) planPayload {
	seen := make(map[string]bool)
	var teams []string
	for _, kt := range keywordTeams {
		if strings.Contains(query, kt.keyword) && !seen[kt.team] {
			seen[kt.team] = true
			teams = append(teams, kt.team)
		}
	}
	if len(teams) == 0 {
		teams = []string{"search"}
	}

	steps := make([]planStepPayload, 0, len(teams))
	for _, t := range teams {
		steps = append(steps, planStepPayload{Team: t, Subquery: query})
	}

	mode := "sequential"
	if len(teams) > 1 {
		mode = "parallel"
	}

	return planPayload{SelectedTeams: teams, ExecutionMode: mode, Steps: steps}
}
