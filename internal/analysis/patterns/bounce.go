// Package patterns provides boolean pattern recognizers over OHLCV series.
package patterns

import (
	"orion-screener/internal/models"
)

// Default parameters for bounce detection.
const (
	DefaultLookback        = 5
	DefaultVolumeThreshold = 1.2
	volumeBaselinePeriod   = 20
)

// HigherHighHigherLow detects a bounce within the last lookback bars:
// after the bar with the minimum low, some bar must print a strictly
// higher high than that bar's high, and the most recent bar's low must
// hold strictly above that bar's low. Returns false when the minimum-low
// bar is the most recent one (no recovery yet) or when the series is
// shorter than lookback+2 bars.
func HigherHighHigherLow(candles []models.Candle, lookback int) bool {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	if len(candles) < lookback+2 {
		return false
	}

	window := candles[len(candles)-lookback:]

	lowIdx := 0
	for i, c := range window {
		if c.Low < window[lowIdx].Low {
			lowIdx = i
		}
	}

	// The trough is the latest bar: the recovery leg has not formed.
	if lowIdx == len(window)-1 {
		return false
	}

	trough := window[lowIdx]

	higherHigh := false
	for _, c := range window[lowIdx+1:] {
		if c.High > trough.High {
			higherHigh = true
			break
		}
	}

	higherLow := window[len(window)-1].Low > trough.Low

	return higherHigh && higherLow
}

// VolumeIncrease reports whether the most recent bar's volume is at
// least threshold times the mean volume of the preceding 20 bars (the
// current bar excluded from the baseline). Requires at least 21 bars.
func VolumeIncrease(candles []models.Candle, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultVolumeThreshold
	}
	n := len(candles)
	if n < volumeBaselinePeriod+1 {
		return false
	}

	var avg float64
	for _, c := range candles[n-volumeBaselinePeriod-1 : n-1] {
		avg += float64(c.Volume)
	}
	avg /= float64(volumeBaselinePeriod)

	return float64(candles[n-1].Volume) >= threshold*avg
}
