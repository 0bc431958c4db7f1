// Package provider defines the market data provider capability and a
// cache-backed decorator around it. Concrete API clients implement
// DataProvider; their retry and rate-limit policy is their own concern.
package provider

import (
	"context"
	"time"

	"orion-screener/internal/models"
)

// DataProvider is the market data capability consumed by the screener.
// Every call either resolves with domain models or fails; the screening
// pipeline treats any failure as a single-symbol failure.
type DataProvider interface {
	Name() string
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
	// GetOptionChain returns the chain for the given expiry; a zero
	// expiry selects the nearest available one.
	GetOptionChain(ctx context.Context, symbol string, expiry time.Time) (*models.OptionChain, error)
	GetHistoricalPrices(ctx context.Context, symbol string, start, end time.Time) ([]models.Candle, error)
	GetAvailableExpirations(ctx context.Context, symbol string) ([]time.Time, error)
}
