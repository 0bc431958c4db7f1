// Package indicators provides technical indicator calculations over
// ordered OHLCV series. All calculations are pure: deterministic for a
// given series, with no hidden state.
package indicators

import (
	"time"

	"orion-screener/internal/models"
)

// Standard periods used by the screening pipeline.
const (
	ShortSMAPeriod  = 20
	LongSMAPeriod   = 60
	RSIPeriod       = 14
	AvgVolumePeriod = 20
)

// MinBars is the minimum history required to compute the core indicator
// set (RSI needs period+1 bars).
const MinBars = RSIPeriod + 1

// Calculator computes the indicator snapshot used by rule evaluation.
type Calculator struct {
	shortSMA *SMA
	longSMA  *SMA
	rsi      *RSI
	avgVol   *VolumeAverage
}

// NewCalculator creates a Calculator with the standard screening periods.
func NewCalculator() *Calculator {
	return &Calculator{
		shortSMA: NewSMA(ShortSMAPeriod),
		longSMA:  NewSMA(LongSMAPeriod),
		rsi:      NewRSI(RSIPeriod),
		avgVol:   NewVolumeAverage(AvgVolumePeriod),
	}
}

// Compute builds the indicator snapshot for a symbol as of the last bar.
// A series shorter than MinBars fails with ErrInsufficientData; beyond
// that, indicators needing a longer window than the series provides are
// left unavailable (nil) rather than failing the symbol.
func (c *Calculator) Compute(symbol string, candles []models.Candle, asOf time.Time) (*models.Indicators, error) {
	if len(candles) < MinBars {
		return nil, ErrInsufficientData
	}

	ind := &models.Indicators{
		Symbol:    symbol,
		Timestamp: asOf,
	}

	if v, err := c.shortSMA.Latest(candles); err == nil {
		ind.SMA20 = models.Float64Ptr(v)
	}
	if v, err := c.longSMA.Latest(candles); err == nil {
		ind.SMA60 = models.Float64Ptr(v)
	}
	if v, err := c.rsi.Latest(candles); err == nil {
		ind.RSI14 = models.Float64Ptr(v)
	}
	if v, err := c.avgVol.Latest(candles); err == nil {
		ind.AvgVolume = models.Float64Ptr(v)
	}

	return ind, nil
}
