package domain

import "errors"

// Error taxonomy (§7). These are sentinel kinds, not concrete error types;
// wrap them with fmt.Errorf("...: %w", ErrXxx) to attach detail and check
// with errors.Is.
var (
	// ErrInputRejected: query fails input validation (empty, too long).
	// Surfaced to the caller; nothing is persisted.
	ErrInputRejected = errors.New("input rejected")

	// ErrPlanningFailed: the planner returned an error. The Supervisor's
	// plan step wraps it and the turn ends with StatusFailed. Two failed LLM
	// parses do not produce it: the planner then falls back to its
	// rule-based intent and plan.
	ErrPlanningFailed = errors.New("planning failed")

	// ErrToolFailed: a single tool errored (timeout, adapter failure).
	// Recorded in TeamResult; does not abort the owning team.
	ErrToolFailed = errors.New("tool failed")

	// ErrTeamFailed: every tool in a team failed, or the team timed out.
	// Recorded; does not abort the turn unless every team failed.
	ErrTeamFailed = errors.New("team failed")

	// ErrSynthesisFailed: LLM synthesis errored after successful
	// aggregation. The Supervisor degrades to a deterministic summary.
	ErrSynthesisFailed = errors.New("synthesis failed")

	// ErrCancelled: external cancellation. The turn returns partial results.
	ErrCancelled = errors.New("cancelled")

	// ErrFatal: unrecoverable, e.g. a required capability is missing.
	ErrFatal = errors.New("fatal")
)
