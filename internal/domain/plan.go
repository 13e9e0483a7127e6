package domain

// ExecutionMode controls how Supervisor.execute runs the plan's steps.
type ExecutionMode string

const (
	ExecutionSequential ExecutionMode = "sequential"
	ExecutionParallel   ExecutionMode = "parallel"
	ExecutionMixed      ExecutionMode = "mixed"
)

// TeamName identifies a pluggable execution team.
type TeamName string

const (
	TeamSearch   TeamName = "search"
	TeamAnalysis TeamName = "analysis"
	TeamDocument TeamName = "document"
	TeamReview   TeamName = "review"
)

// PlanStep is one unit of work within an ExecutionPlan.
type PlanStep struct {
	Team       TeamName
	Subquery   string
	DependsOn  []TeamName
}

// ExecutionPlan is produced by PlanningAgent and consumed, immutably, by the
// Supervisor.
type ExecutionPlan struct {
	Steps         []PlanStep
	ExecutionMode ExecutionMode
	SkipExecution bool
}

// Teams returns the ordered list of team names referenced by this plan.
func (p *ExecutionPlan) Teams() []TeamName {
	out := make([]TeamName, 0, len(p.Steps))
	for _, s := range p.Steps {
		out = append(out, s.Team)
	}
	return out
}

// StepFor returns the PlanStep for a given team, if present.
func (p *ExecutionPlan) StepFor(team TeamName) (PlanStep, bool) {
	for _, s := range p.Steps {
		if s.Team == team {
			return s, true
		}
	}
	return PlanStep{}, false
}
