package team

import (
	"context"
	"time"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/domain"
)

// TeamExecutor is the contract the Supervisor drives teams through. Both
// the Search team's full Executor and the minimal stub teams below satisfy
// it, so the Supervisor treats every team polymorphically per spec.md §4.5's
// closing paragraph.
type TeamExecutor interface {
	Execute(ctx context.Context, subquery string, keywords []string) domain.TeamResult
}

var (
	_ TeamExecutor = (*Executor)(nil)
	_ TeamExecutor = (*StubExecutor)(nil)
)

// StubExecutor is a minimal adapter for Analysis, Document and Review
// teams, whose internals spec.md declares explicitly out of scope. It
// still honors the public contract (never raises; always returns a
// TeamResult), so the Supervisor's routing, aggregation and progress
// streaming logic exercises all four teams identically rather than only
// the Search team.
type StubExecutor struct {
	team domain.TeamName
	note string
}

// NewStubExecutor builds a stub TeamExecutor that reports a fixed
// placeholder summary instead of running real tools.
func NewStubExecutor(team domain.TeamName, note string) *StubExecutor {
	return &StubExecutor{team: team, note: note}
}

func (s *StubExecutor) Execute(ctx context.Context, subquery string, keywords []string) domain.TeamResult {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		result := domain.NewTimedTeamResult(s.team, domain.TeamStatusFailed, start)
		result.Error = err
		return result
	}
	result := domain.NewTimedTeamResult(s.team, domain.TeamStatusSkipped, start)
	result.Summary = s.note
	return result
}
