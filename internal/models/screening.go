package models

import "time"

// SymbolState represents the lifecycle state of a symbol in the
// screening pipeline.
type SymbolState string

const (
	StatePending    SymbolState = "PENDING"
	StateFetching   SymbolState = "FETCHING"
	StateEvaluating SymbolState = "EVALUATING"
	StateMatched    SymbolState = "MATCHED"
	StateNoMatch    SymbolState = "NO_MATCH"
	StateFailed     SymbolState = "FAILED"
)

// Terminal reports whether the state is a terminal pipeline state.
func (s SymbolState) Terminal() bool {
	return s == StateMatched || s == StateNoMatch || s == StateFailed
}

// ScreeningResult is the outcome of screening a single symbol against a
// strategy. It is immutable once produced.
type ScreeningResult struct {
	Symbol           string
	Timestamp        time.Time
	State            SymbolState
	Matches          bool
	SignalStrength   float64 // in [0, 1]
	ConditionsMet    []string
	ConditionsMissed []string
	Quote            *Quote
	Indicators       *Indicators
	Option           *OptionOpportunity // nil unless a candidate cleared the yield bar
	Error            string             // set only for Failed outcomes
}

// ScreeningStats aggregates the outcome of a screening batch.
type ScreeningStats struct {
	Strategy  string
	Attempted int
	Matched   int
	Failed    int
	StartTime time.Time
	Duration  time.Duration
}
