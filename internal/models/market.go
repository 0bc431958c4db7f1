// Package models provides domain models for the screening application.
package models

import (
	"time"
)

// Candle represents OHLCV data for a single time period.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Quote represents a market quote for a symbol.
type Quote struct {
	Symbol        string
	Price         float64
	Open          float64
	High          float64
	Low           float64
	PrevClose     float64
	Volume        int64
	Change        float64
	ChangePercent float64
	Timestamp     time.Time
}

// Indicators holds the technical indicators computed for a symbol at a
// point in time. Fields are pointers: nil means the indicator could not
// be computed from the available history.
type Indicators struct {
	Symbol    string
	Timestamp time.Time
	SMA20     *float64
	SMA60     *float64
	RSI14     *float64
	AvgVolume *float64 // 20-period average volume
}

// Float64Ptr returns a pointer to v. Convenience for building Indicators.
func Float64Ptr(v float64) *float64 {
	return &v
}
