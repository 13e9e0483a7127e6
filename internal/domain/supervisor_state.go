package domain

import "time"

// SupervisorStatus is the closed outcome set for one turn.
type SupervisorStatus string

const (
	StatusRunning   SupervisorStatus = "running"
	StatusCompleted SupervisorStatus = "completed"
	StatusPartial   SupervisorStatus = "partial"
	StatusFailed    SupervisorStatus = "failed"
	StatusCancelled SupervisorStatus = "cancelled"
)

// SupervisorState is the single source of truth passed between Supervisor
// nodes for the duration of one turn. The Supervisor exclusively owns this
// value; team executors receive only their step's subquery and the intent
// keywords, and return their own TeamResult for the Supervisor to record.
type SupervisorState struct {
	Query     Query
	SessionID SessionID
	Intent    Intent
	Plan      ExecutionPlan

	ActiveTeams    []TeamName
	CompletedTeams []TeamName
	FailedTeams    []TeamName

	TeamResults       map[TeamName]TeamResult
	AggregatedResults AggregatedResults

	FinalResponse string

	StartTime time.Time
	EndTime   time.Time

	ErrorLog []string
	Status   SupervisorStatus
}

// AggregatedResults is the post-aggregation view consumed by synthesis.
type AggregatedResults struct {
	ByTeam  map[TeamName]TeamResult
	Sources []string
}

// NewSupervisorState seeds a fresh state for one turn.
func NewSupervisorState(q Query) *SupervisorState {
	return &SupervisorState{
		Query:       q,
		SessionID:   q.SessionID,
		TeamResults: make(map[TeamName]TeamResult),
		StartTime:   time.Now(),
		Status:      StatusRunning,
	}
}

// MarkCompleted records a team as done, disjointly from FailedTeams per the
// spec invariant completed_teams ∪ failed_teams ⊆ plan.steps.team.
func (s *SupervisorState) MarkCompleted(team TeamName, result TeamResult) {
	s.TeamResults[team] = result
	switch result.Status {
	case TeamStatusFailed:
		s.FailedTeams = append(s.FailedTeams, team)
	default:
		s.CompletedTeams = append(s.CompletedTeams, team)
	}
}

// AllTeamsFailed reports whether every team that ran ended in TeamStatusFailed.
func (s *SupervisorState) AllTeamsFailed() bool {
	if len(s.TeamResults) == 0 {
		return false
	}
	for _, r := range s.TeamResults {
		if r.Status != TeamStatusFailed {
			return false
		}
	}
	return true
}
