package indicators

import (
	"fmt"

	"orion-screener/internal/models"
)

// RSI calculates the Relative Strength Index over a rolling window of
// bar-to-bar deltas. For each index the average gain and average loss
// are the simple means over the last `period` deltas; RS = avgGain/avgLoss
// and RSI = 100 - 100/(1+RS). A window with zero average loss yields
// exactly 100, never NaN.
type RSI struct {
	period int
}

// NewRSI creates a new RSI indicator.
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

func (r *RSI) Name() string {
	return fmt.Sprintf("RSI_%d", r.period)
}

func (r *RSI) Period() int {
	return r.period
}

// Calculate returns the full RSI series. result[i] is defined for
// i >= period; earlier indexes are zero.
func (r *RSI) Calculate(candles []models.Candle) ([]float64, error) {
	if r.period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) < r.period+1 {
		return nil, ErrInsufficientData
	}

	n := len(candles)
	result := make([]float64, n)
	closes := closePrices(candles)

	gains := make([]float64, n)
	losses := make([]float64, n)

	for i := 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	for i := r.period; i < n; i++ {
		avgGain := mean(gains[i-r.period+1 : i+1])
		avgLoss := mean(losses[i-r.period+1 : i+1])

		if avgLoss == 0 {
			result[i] = 100
		} else {
			rs := avgGain / avgLoss
			result[i] = 100 - (100 / (1 + rs))
		}
	}

	return result, nil
}

// Latest returns the RSI over the most recent window.
func (r *RSI) Latest(candles []models.Candle) (float64, error) {
	values, err := r.Calculate(candles)
	if err != nil {
		return 0, err
	}
	return lastValue(values), nil
}
