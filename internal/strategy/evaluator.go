package strategy

import (
	"fmt"
	"strings"

	"orion-screener/internal/analysis/indicators"
	"orion-screener/internal/analysis/patterns"
	apperrors "orion-screener/internal/errors"
	"orion-screener/internal/models"
)

// Evaluation is the outcome of evaluating a strategy for one symbol.
// SignalStrength is the weight-fraction of satisfied conditions and is
// reported even when Matches is false.
type Evaluation struct {
	Matches          bool
	ConditionsMet    []string
	ConditionsMissed []string
	SignalStrength   float64
}

// Evaluator evaluates a strategy's conditions. It is stateless: the same
// inputs always produce the same evaluation.
type Evaluator struct {
	strategy *Strategy
}

// NewEvaluator creates an evaluator for the given strategy. The strategy
// is validated so that configuration defects (unknown kinds, negative
// weights) surface at load time.
func NewEvaluator(s *Strategy) (*Evaluator, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{strategy: s}, nil
}

// Strategy returns the strategy this evaluator was built from.
func (e *Evaluator) Strategy() *Strategy {
	return e.strategy
}

// Evaluate checks every condition of the strategy. Matches is true iff
// all conditions hold; weights never relax the conjunction, they only
// scale the signal strength.
func (e *Evaluator) Evaluate(symbol string, quote *models.Quote, candles []models.Candle, ind *models.Indicators) (*Evaluation, error) {
	eval := &Evaluation{
		Matches:          true,
		ConditionsMet:    make([]string, 0, len(e.strategy.Conditions)),
		ConditionsMissed: make([]string, 0),
	}

	var totalWeight, metWeight float64

	for _, cond := range e.strategy.Conditions {
		ok, err := e.check(cond, quote, candles, ind)
		if err != nil {
			return nil, err
		}

		totalWeight += cond.Weight
		if ok {
			metWeight += cond.Weight
			eval.ConditionsMet = append(eval.ConditionsMet, string(cond.Kind))
		} else {
			eval.Matches = false
			eval.ConditionsMissed = append(eval.ConditionsMissed, string(cond.Kind))
		}
	}

	if totalWeight > 0 {
		eval.SignalStrength = metWeight / totalWeight
	}

	return eval, nil
}

// check dispatches a condition to the handler for its kind.
func (e *Evaluator) check(cond Condition, quote *models.Quote, candles []models.Candle, ind *models.Indicators) (bool, error) {
	switch cond.Kind {
	case KindTrend:
		return e.checkTrend(cond, quote, ind)
	case KindOversold:
		return e.checkOversold(cond, candles)
	case KindBounce:
		return e.checkBounce(cond, candles)
	default:
		return false, apperrors.Wrapf(apperrors.ErrUnknownCondition, "%q", cond.Kind)
	}
}

// checkTrend compares two named values per the rule string, e.g.
// "sma_20 > sma_60". A comparison involving an unavailable indicator is
// false, not an error: missing history is not a configuration defect.
func (e *Evaluator) checkTrend(cond Condition, quote *models.Quote, ind *models.Indicators) (bool, error) {
	fields := strings.Fields(cond.Rule)
	if len(fields) != 3 {
		return false, apperrors.NewValidationError("rule", cond.Rule, "trend rule must be '<name> <op> <name>'")
	}

	left, available := resolveOperand(fields[0], quote, ind)
	if !available {
		return false, nil
	}
	right, available := resolveOperand(fields[2], quote, ind)
	if !available {
		return false, nil
	}

	switch fields[1] {
	case ">":
		return left > right, nil
	case "<":
		return left < right, nil
	case ">=":
		return left >= right, nil
	case "<=":
		return left <= right, nil
	default:
		return false, apperrors.NewValidationError("rule", cond.Rule, fmt.Sprintf("unsupported operator %q", fields[1]))
	}
}

// resolveOperand maps a rule operand name to its current value. The
// second return is false when the indicator could not be computed.
func resolveOperand(name string, quote *models.Quote, ind *models.Indicators) (float64, bool) {
	switch name {
	case "sma_20":
		if ind == nil || ind.SMA20 == nil {
			return 0, false
		}
		return *ind.SMA20, true
	case "sma_60":
		if ind == nil || ind.SMA60 == nil {
			return 0, false
		}
		return *ind.SMA60, true
	case "rsi_14":
		if ind == nil || ind.RSI14 == nil {
			return 0, false
		}
		return *ind.RSI14, true
	case "price":
		if quote == nil {
			return 0, false
		}
		return quote.Price, true
	default:
		return 0, false
	}
}

// checkOversold is true when the current RSI is below the threshold, or
// when any RSI value over the trailing lookback window fell below it.
func (e *Evaluator) checkOversold(cond Condition, candles []models.Candle) (bool, error) {
	threshold := cond.Param("threshold", 30)
	lookback := int(cond.Param("lookback", 5))
	period := int(cond.Param("period", indicators.RSIPeriod))

	rsi := indicators.NewRSI(period)
	values, err := rsi.Calculate(candles)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrInsufficientData) {
			return false, nil
		}
		return false, err
	}

	start := len(values) - 1 - lookback
	if start < period {
		start = period
	}
	for i := start; i < len(values); i++ {
		if values[i] < threshold {
			return true, nil
		}
	}
	return false, nil
}

// checkBounce detects the higher-high/higher-low recovery pattern,
// optionally requiring a volume-spike confirmation.
func (e *Evaluator) checkBounce(cond Condition, candles []models.Candle) (bool, error) {
	lookback := int(cond.Param("lookback", patterns.DefaultLookback))

	if !patterns.HigherHighHigherLow(candles, lookback) {
		return false, nil
	}

	if cond.Param("confirm_volume", 0) != 0 {
		threshold := cond.Param("volume_threshold", patterns.DefaultVolumeThreshold)
		return patterns.VolumeIncrease(candles, threshold), nil
	}

	return true, nil
}
