package domain

// IntentType is the closed set of query classifications PlanningAgent stage 1
// can produce.
type IntentType string

const (
	IntentLegalConsult  IntentType = "LEGAL_CONSULT"
	IntentMarketInquiry IntentType = "MARKET_INQUIRY"
	IntentContractReview IntentType = "CONTRACT_REVIEW"
	IntentComprehensive IntentType = "COMPREHENSIVE"
	IntentIrrelevant    IntentType = "IRRELEVANT"
	IntentUnclear       IntentType = "UNCLEAR"
	IntentGreeting      IntentType = "GREETING"
)

// IsFastPath reports whether this intent must skip team execution entirely
// (spec invariant: ExecutionPlan.skip_execution = true iff Intent.Type is one
// of these three).
func (t IntentType) IsFastPath() bool {
	switch t {
	case IntentIrrelevant, IntentUnclear, IntentGreeting:
		return true
	default:
		return false
	}
}

// Intent is produced once by PlanningAgent and is immutable downstream.
type Intent struct {
	Type       IntentType
	Confidence float64
	Entities   map[string]string
	Keywords   []string
	InScope    bool
}
