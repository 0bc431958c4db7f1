package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "orion-screener/internal/errors"
	"orion-screener/internal/models"
)

// SQLiteStore implements ResultStore and the durable cache tier using
// SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based store. The parent directory
// is created if missing.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Screening runs
	CREATE TABLE IF NOT EXISTS screening_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		strategy_name TEXT NOT NULL,
		symbols_count INTEGER NOT NULL,
		matches_count INTEGER NOT NULL,
		duration_seconds REAL NOT NULL
	);

	-- Per-symbol screening results
	CREATE TABLE IF NOT EXISTS screening_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		matches BOOLEAN NOT NULL,
		signal_strength REAL NOT NULL,
		conditions_met TEXT,
		conditions_missed TEXT,
		quote_data TEXT,
		indicators_data TEXT,
		option_recommendation TEXT,
		error_message TEXT,
		FOREIGN KEY (run_id) REFERENCES screening_runs(id) ON DELETE CASCADE
	);

	-- Durable cache tier
	CREATE TABLE IF NOT EXISTS cache_entries (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		expiry DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_results_run_id ON screening_results(run_id);
	CREATE INDEX IF NOT EXISTS idx_results_symbol ON screening_results(symbol);
	CREATE INDEX IF NOT EXISTS idx_results_timestamp ON screening_results(timestamp);
	CREATE INDEX IF NOT EXISTS idx_results_matches ON screening_results(matches);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON screening_runs(timestamp);
	CREATE INDEX IF NOT EXISTS idx_cache_expiry ON cache_entries(expiry);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveRun inserts a screening run record and returns its ID.
func (s *SQLiteStore) SaveRun(ctx context.Context, stats models.ScreeningStats) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO screening_runs (timestamp, strategy_name, symbols_count, matches_count, duration_seconds)
		VALUES (?, ?, ?, ?, ?)`,
		stats.StartTime.UTC().Format(time.RFC3339),
		stats.Strategy,
		stats.Attempted,
		stats.Matched,
		stats.Duration.Seconds(),
	)
	if err != nil {
		return 0, apperrors.WrapDatabase(err, "saving screening run")
	}
	return result.LastInsertId()
}

// SaveResult inserts a screening result record.
func (s *SQLiteStore) SaveResult(ctx context.Context, runID int64, result models.ScreeningResult) error {
	conditionsMet, _ := json.Marshal(result.ConditionsMet)
	conditionsMissed, _ := json.Marshal(result.ConditionsMissed)

	quoteData := marshalOrNull(result.Quote)
	indicatorsData := marshalOrNull(result.Indicators)
	optionData := marshalOrNull(result.Option)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO screening_results
		(run_id, symbol, timestamp, matches, signal_strength, conditions_met,
		 conditions_missed, quote_data, indicators_data, option_recommendation, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		result.Symbol,
		result.Timestamp.UTC().Format(time.RFC3339),
		result.Matches,
		result.SignalStrength,
		string(conditionsMet),
		string(conditionsMissed),
		quoteData,
		indicatorsData,
		optionData,
		nullIfEmpty(result.Error),
	)
	if err != nil {
		return apperrors.WrapDatabase(err, fmt.Sprintf("saving result for %s", result.Symbol))
	}
	return nil
}

// SaveResults inserts multiple screening results in one transaction.
func (s *SQLiteStore) SaveResults(ctx context.Context, runID int64, results []models.ScreeningResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.WrapDatabase(err, "beginning results transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO screening_results
		(run_id, symbol, timestamp, matches, signal_strength, conditions_met,
		 conditions_missed, quote_data, indicators_data, option_recommendation, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return apperrors.WrapDatabase(err, "preparing results insert")
	}
	defer stmt.Close()

	for _, result := range results {
		conditionsMet, _ := json.Marshal(result.ConditionsMet)
		conditionsMissed, _ := json.Marshal(result.ConditionsMissed)

		if _, err := stmt.ExecContext(ctx,
			runID,
			result.Symbol,
			result.Timestamp.UTC().Format(time.RFC3339),
			result.Matches,
			result.SignalStrength,
			string(conditionsMet),
			string(conditionsMissed),
			marshalOrNull(result.Quote),
			marshalOrNull(result.Indicators),
			marshalOrNull(result.Option),
			nullIfEmpty(result.Error),
		); err != nil {
			return apperrors.WrapDatabase(err, fmt.Sprintf("saving result for %s", result.Symbol))
		}
	}

	return apperrors.WrapDatabase(tx.Commit(), "committing results")
}

// GetResultsBySymbol returns results for a symbol over the lookback window.
func (s *SQLiteStore) GetResultsBySymbol(ctx context.Context, symbol string, days int) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sr.run_id, r.strategy_name, sr.symbol, sr.timestamp, sr.matches,
		       sr.signal_strength, sr.conditions_met, sr.conditions_missed, sr.error_message
		FROM screening_results sr
		JOIN screening_runs r ON sr.run_id = r.id
		WHERE sr.symbol = ?
		AND datetime(sr.timestamp) >= datetime('now', '-' || ? || ' days')
		ORDER BY sr.timestamp DESC`,
		symbol, days,
	)
	if err != nil {
		return nil, apperrors.WrapDatabase(err, fmt.Sprintf("querying results for %s", symbol))
	}
	defer rows.Close()

	return scanHistory(rows)
}

// GetRecentMatches returns recent matching results across all symbols.
func (s *SQLiteStore) GetRecentMatches(ctx context.Context, days, limit int) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sr.run_id, r.strategy_name, sr.symbol, sr.timestamp, sr.matches,
		       sr.signal_strength, sr.conditions_met, sr.conditions_missed, sr.error_message
		FROM screening_results sr
		JOIN screening_runs r ON sr.run_id = r.id
		WHERE sr.matches = 1
		AND datetime(sr.timestamp) >= datetime('now', '-' || ? || ' days')
		ORDER BY sr.timestamp DESC
		LIMIT ?`,
		days, limit,
	)
	if err != nil {
		return nil, apperrors.WrapDatabase(err, "querying recent matches")
	}
	defer rows.Close()

	return scanHistory(rows)
}

// GetRunSummaries returns the most recent screening runs.
func (s *SQLiteStore) GetRunSummaries(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, strategy_name, symbols_count, matches_count, duration_seconds
		FROM screening_runs
		ORDER BY timestamp DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, apperrors.WrapDatabase(err, "querying run summaries")
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		var ts string
		var durationSeconds float64
		if err := rows.Scan(&run.ID, &ts, &run.Strategy, &run.Symbols, &run.Matches, &durationSeconds); err != nil {
			return nil, apperrors.WrapDatabase(err, "scanning run summary")
		}
		run.Timestamp = parseTimestamp(ts)
		run.Duration = time.Duration(durationSeconds * float64(time.Second))
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get implements the durable cache tier read.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, time.Time, error) {
	var value []byte
	var expiryStr string
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expiry FROM cache_entries WHERE key = ?`, key,
	).Scan(&value, &expiryStr)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, apperrors.ErrDataNotFound
	}
	if err != nil {
		return nil, time.Time{}, apperrors.WrapDatabase(err, fmt.Sprintf("reading cache entry %s", key))
	}
	return value, parseTimestamp(expiryStr), nil
}

// Set implements the durable cache tier write. Existing entries are
// replaced; expired rows are pruned opportunistically.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte, expiry time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value, expiry) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expiry = excluded.expiry`,
		key, value, expiry.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return apperrors.WrapDatabase(err, fmt.Sprintf("writing cache entry %s", key))
	}

	// Best-effort prune of dead entries; failures are irrelevant here.
	s.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE datetime(expiry) < datetime(?)`,
		time.Now().UTC().Format(time.RFC3339),
	)

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanHistory(rows *sql.Rows) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var ts string
		var conditionsMet, conditionsMissed, errMsg sql.NullString
		if err := rows.Scan(&e.RunID, &e.Strategy, &e.Symbol, &ts, &e.Matches,
			&e.SignalStrength, &conditionsMet, &conditionsMissed, &errMsg); err != nil {
			return nil, apperrors.WrapDatabase(err, "scanning history entry")
		}
		e.Timestamp = parseTimestamp(ts)
		if conditionsMet.Valid {
			json.Unmarshal([]byte(conditionsMet.String), &e.ConditionsMet)
		}
		if conditionsMissed.Valid {
			json.Unmarshal([]byte(conditionsMissed.String), &e.ConditionsMissed)
		}
		if errMsg.Valid {
			e.Error = errMsg.String
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}

func marshalOrNull(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil || string(data) == "null" {
		return nil
	}
	return string(data)
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
