// Package strategy defines trading strategies as ordered lists of
// weighted conditions and evaluates them against computed indicators.
package strategy

import (
	apperrors "orion-screener/internal/errors"
)

// ConditionKind is the closed set of condition kinds a strategy may use.
type ConditionKind string

const (
	KindTrend    ConditionKind = "trend"
	KindOversold ConditionKind = "oversold"
	KindBounce   ConditionKind = "bounce"
)

// knownKinds is the dispatch table guard for strategy validation.
var knownKinds = map[ConditionKind]struct{}{
	KindTrend:    {},
	KindOversold: {},
	KindBounce:   {},
}

// Condition is a single weighted screening condition. The Rule string is
// interpreted only by the handler for its kind; Params carries kind-
// specific numeric parameters.
type Condition struct {
	Kind   ConditionKind
	Rule   string
	Params map[string]float64
	Weight float64
}

// Param returns the named parameter or the given default.
func (c Condition) Param(name string, def float64) float64 {
	if v, ok := c.Params[name]; ok {
		return v
	}
	return def
}

// OptionCriteria holds the option-selection thresholds of a strategy.
type OptionCriteria struct {
	MinYield        float64
	MinVolume       int64
	MinOpenInterest int64
	StrikeTolerance float64
}

// Strategy is a named, versioned list of conditions plus the option
// selection thresholds applied to matched symbols.
type Strategy struct {
	Name       string
	Version    string
	Conditions []Condition
	Options    OptionCriteria
}

// Validate checks the strategy for configuration defects: it must carry
// at least one condition, every kind must be known, and weights must be
// non-negative. Unknown kinds are caught here, at load time, rather than
// mid-screening.
func (s *Strategy) Validate() error {
	if len(s.Conditions) == 0 {
		return apperrors.NewValidationError("conditions", 0, "strategy must have at least one condition")
	}
	for i, c := range s.Conditions {
		if _, ok := knownKinds[c.Kind]; !ok {
			return apperrors.Wrapf(apperrors.ErrUnknownCondition, "condition %d: %q", i, c.Kind)
		}
		if c.Weight < 0 {
			return apperrors.NewValidationError("weight", c.Weight, "condition weight must be non-negative")
		}
	}
	return nil
}
