// Package screener orchestrates the per-symbol screening pipeline and
// fans it out across a bounded worker pool.
package screener

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"orion-screener/internal/analysis/indicators"
	"orion-screener/internal/logging"
	"orion-screener/internal/models"
	"orion-screener/internal/options"
	"orion-screener/internal/provider"
	"orion-screener/internal/strategy"
)

// DefaultMaxConcurrent bounds the number of symbols screened at once.
const DefaultMaxConcurrent = 5

// historicalDays is the lookback window fetched for indicator input.
const historicalDays = 365

// Screener runs the screening pipeline: fetch quote and history, compute
// indicators, evaluate the strategy, and select an option opportunity
// for matches. Symbols are screened independently; no state is shared
// across concurrent symbol tasks beyond the cache tiers.
type Screener struct {
	provider  provider.DataProvider
	evaluator *strategy.Evaluator
	calc      *indicators.Calculator
	logger    zerolog.Logger
	permits   chan struct{}
	now       func() time.Time
}

// New creates a Screener. The provider is expected to be cache-wrapped.
func New(p provider.DataProvider, eval *strategy.Evaluator, logger zerolog.Logger, maxConcurrent int) *Screener {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Screener{
		provider:  p,
		evaluator: eval,
		calc:      indicators.NewCalculator(),
		logger:    logger,
		permits:   make(chan struct{}, maxConcurrent),
		now:       time.Now,
	}
}

// ScreenSymbol screens a single symbol under one concurrency permit.
// The permit is released on every exit path.
func (s *Screener) ScreenSymbol(ctx context.Context, symbol string) (*models.ScreeningResult, error) {
	select {
	case s.permits <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.permits }()

	return s.screen(ctx, symbol)
}

// screen runs the pipeline state machine for one symbol. The caller
// must already hold a permit.
func (s *Screener) screen(ctx context.Context, symbol string) (*models.ScreeningResult, error) {
	logger := logging.WithSymbol(s.logger, symbol)
	state := models.StatePending
	asOf := s.now()

	transition := func(next models.SymbolState) {
		logger.Debug().
			Str("from", string(state)).
			Str("to", string(next)).
			Msg("Pipeline state transition")
		state = next
	}

	transition(models.StateFetching)

	quote, err := s.provider.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	candles, err := s.provider.GetHistoricalPrices(ctx, symbol, asOf.AddDate(0, 0, -historicalDays), asOf)
	if err != nil {
		return nil, err
	}

	transition(models.StateEvaluating)

	ind, err := s.calc.Compute(symbol, candles, asOf)
	if err != nil {
		return nil, err
	}

	eval, err := s.evaluator.Evaluate(symbol, quote, candles, ind)
	if err != nil {
		return nil, err
	}

	result := &models.ScreeningResult{
		Symbol:           symbol,
		Timestamp:        asOf,
		Matches:          eval.Matches,
		SignalStrength:   eval.SignalStrength,
		ConditionsMet:    eval.ConditionsMet,
		ConditionsMissed: eval.ConditionsMissed,
		Quote:            quote,
		Indicators:       ind,
	}

	if !eval.Matches {
		transition(models.StateNoMatch)
		result.State = state
		return result, nil
	}

	chain, err := s.provider.GetOptionChain(ctx, symbol, time.Time{})
	if err != nil {
		return nil, err
	}

	result.Option = options.FindBestOpportunity(chain, s.evaluator.Strategy().Options, asOf)

	transition(models.StateMatched)
	result.State = state
	logging.LogMatch(logger, symbol, result.SignalStrength, result.ConditionsMet)

	return result, nil
}

// ScreenStream launches one screening task per symbol and returns a
// channel yielding results in completion order, plus a tracker whose
// stats are final once the channel closes. Per-symbol failures are
// logged, counted, and excluded from the stream; they never abort
// sibling tasks. Cancelling ctx cancels in-flight tasks and discards
// their partial results.
func (s *Screener) ScreenStream(ctx context.Context, symbols []string) (<-chan models.ScreeningResult, *BatchTracker) {
	tracker := &BatchTracker{
		strategy:  s.evaluator.Strategy().Name,
		attempted: int64(len(symbols)),
		start:     s.now(),
		now:       s.now,
	}

	results := make(chan models.ScreeningResult, len(symbols))

	logging.LogScreeningStarted(s.logger, tracker.strategy, len(symbols), cap(s.permits))

	var wg sync.WaitGroup
	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()

			result, err := s.ScreenSymbol(ctx, symbol)
			if err != nil {
				tracker.failed.Add(1)
				tracker.recordFailure(models.ScreeningResult{
					Symbol:    symbol,
					Timestamp: s.now(),
					State:     models.StateFailed,
					Error:     err.Error(),
				})
				logging.LogSymbolFailed(s.logger, symbol, err)
				return
			}
			if result.Matches {
				tracker.matched.Add(1)
			}

			select {
			case results <- *result:
			case <-ctx.Done():
			}
		}(symbol)
	}

	go func() {
		wg.Wait()
		tracker.finish()
		close(results)
	}()

	return results, tracker
}

// ScreenBatch screens all symbols and collects the completed results in
// completion order. The batch always finishes: failures are reported in
// the stats and returned as Failed records for persistence, never
// raised and never mixed into the evaluated results.
func (s *Screener) ScreenBatch(ctx context.Context, symbols []string) ([]models.ScreeningResult, []models.ScreeningResult, models.ScreeningStats) {
	stream, tracker := s.ScreenStream(ctx, symbols)

	results := make([]models.ScreeningResult, 0, len(symbols))
	for result := range stream {
		results = append(results, result)
	}

	stats := tracker.Stats()
	logging.LogScreeningFinished(s.logger, stats.Strategy, stats.Attempted, stats.Matched, stats.Failed, stats.Duration)

	return results, tracker.FailedResults(), stats
}

// BatchTracker tracks aggregate statistics for one screening batch,
// plus the Failed records of symbols that never produced an evaluated
// result.
type BatchTracker struct {
	strategy  string
	attempted int64
	matched   atomic.Int64
	failed    atomic.Int64
	start     time.Time
	duration  atomic.Int64 // nanoseconds, set once the batch finishes
	now       func() time.Time

	mu       sync.Mutex
	failures []models.ScreeningResult
}

func (t *BatchTracker) finish() {
	t.duration.Store(int64(t.now().Sub(t.start)))
}

func (t *BatchTracker) recordFailure(result models.ScreeningResult) {
	t.mu.Lock()
	t.failures = append(t.failures, result)
	t.mu.Unlock()
}

// FailedResults returns the Failed records of the batch, one per failed
// symbol, for persistence alongside the evaluated results. Final once
// the result stream has closed.
func (t *BatchTracker) FailedResults() []models.ScreeningResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.ScreeningResult(nil), t.failures...)
}

// Stats returns the batch statistics. Values are final once the result
// stream has closed.
func (t *BatchTracker) Stats() models.ScreeningStats {
	return models.ScreeningStats{
		Strategy:  t.strategy,
		Attempted: int(t.attempted),
		Matched:   int(t.matched.Load()),
		Failed:    int(t.failed.Load()),
		StartTime: t.start,
		Duration:  time.Duration(t.duration.Load()),
	}
}
