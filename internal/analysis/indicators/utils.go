package indicators

import (
	"errors"

	apperrors "orion-screener/internal/errors"
	"orion-screener/internal/models"
)

var (
	// ErrInsufficientData is returned when there's not enough data for calculation.
	// Aliased to the application sentinel so errors.Is works across packages.
	ErrInsufficientData = apperrors.ErrInsufficientData
	// ErrInvalidPeriod is returned when the period is invalid.
	ErrInvalidPeriod = errors.New("invalid period")
)

// sum calculates the sum of a slice of float64.
func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// mean calculates the arithmetic mean of a slice of float64.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

// closePrices extracts close prices from candles.
func closePrices(candles []models.Candle) []float64 {
	prices := make([]float64, len(candles))
	for i, c := range candles {
		prices[i] = c.Close
	}
	return prices
}

// volumeValues extracts volumes from candles as float64.
func volumeValues(candles []models.Candle) []float64 {
	vols := make([]float64, len(candles))
	for i, c := range candles {
		vols[i] = float64(c.Volume)
	}
	return vols
}

// lastValue returns the final value of a computed series.
func lastValue(values []float64) float64 {
	return values[len(values)-1]
}
