package indicators

import (
	"fmt"

	"orion-screener/internal/models"
)

// SMA calculates the Simple Moving Average of closing prices.
type SMA struct {
	period int
}

// NewSMA creates a new SMA indicator.
func NewSMA(period int) *SMA {
	return &SMA{period: period}
}

func (s *SMA) Name() string {
	return fmt.Sprintf("SMA_%d", s.period)
}

func (s *SMA) Period() int {
	return s.period
}

// Calculate returns the full SMA series. result[i] is the mean of the
// closes in the window ending at i; indexes before period-1 are zero.
func (s *SMA) Calculate(candles []models.Candle) ([]float64, error) {
	if s.period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) < s.period {
		return nil, ErrInsufficientData
	}

	n := len(candles)
	result := make([]float64, n)
	closes := closePrices(candles)

	for i := s.period - 1; i < n; i++ {
		result[i] = mean(closes[i-s.period+1 : i+1])
	}

	return result, nil
}

// Latest returns the SMA over the most recent window.
func (s *SMA) Latest(candles []models.Candle) (float64, error) {
	values, err := s.Calculate(candles)
	if err != nil {
		return 0, err
	}
	return lastValue(values), nil
}
