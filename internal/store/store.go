// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"orion-screener/internal/models"
)

// ResultStore defines the interface for screening result persistence.
type ResultStore interface {
	// Runs & results
	SaveRun(ctx context.Context, stats models.ScreeningStats) (int64, error)
	SaveResult(ctx context.Context, runID int64, result models.ScreeningResult) error
	SaveResults(ctx context.Context, runID int64, results []models.ScreeningResult) error

	// History queries
	GetResultsBySymbol(ctx context.Context, symbol string, days int) ([]HistoryEntry, error)
	GetRecentMatches(ctx context.Context, days, limit int) ([]HistoryEntry, error)
	GetRunSummaries(ctx context.Context, limit int) ([]RunSummary, error)

	// Lifecycle
	Close() error
}

// HistoryEntry is one persisted screening result joined with its run.
type HistoryEntry struct {
	RunID            int64
	Strategy         string
	Symbol           string
	Timestamp        time.Time
	Matches          bool
	SignalStrength   float64
	ConditionsMet    []string
	ConditionsMissed []string
	Error            string
}

// RunSummary is one persisted screening run.
type RunSummary struct {
	ID        int64
	Timestamp time.Time
	Strategy  string
	Symbols   int
	Matches   int
	Duration  time.Duration
}
