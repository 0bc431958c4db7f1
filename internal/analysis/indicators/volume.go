package indicators

import (
	"fmt"

	"orion-screener/internal/models"
)

// VolumeAverage calculates the mean volume over a fixed window.
type VolumeAverage struct {
	period int
}

// NewVolumeAverage creates a new VolumeAverage indicator.
func NewVolumeAverage(period int) *VolumeAverage {
	return &VolumeAverage{period: period}
}

func (v *VolumeAverage) Name() string {
	return fmt.Sprintf("VolumeAverage_%d", v.period)
}

func (v *VolumeAverage) Period() int {
	return v.period
}

// Calculate returns the full average-volume series. result[i] is the mean
// volume of the window ending at i; indexes before period-1 are zero.
func (v *VolumeAverage) Calculate(candles []models.Candle) ([]float64, error) {
	if v.period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) < v.period {
		return nil, ErrInsufficientData
	}

	n := len(candles)
	result := make([]float64, n)
	vols := volumeValues(candles)

	for i := v.period - 1; i < n; i++ {
		result[i] = mean(vols[i-v.period+1 : i+1])
	}

	return result, nil
}

// Latest returns the average volume over the most recent window.
func (v *VolumeAverage) Latest(candles []models.Candle) (float64, error) {
	values, err := v.Calculate(candles)
	if err != nil {
		return 0, err
	}
	return lastValue(values), nil
}
