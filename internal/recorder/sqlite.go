package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"InsiderWatch/internal/model"
	"InsiderWatch/internal/observability"
)

const defaultLimit = 20

// SQLiteRecorder persists classification runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." && !strings.HasPrefix(dbPath, ":memory:") {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS enrich_runs (
			run_id     TEXT PRIMARY KEY,
			timestamp  INTEGER NOT NULL,
			triggered_by TEXT NOT NULL,
			as_of      TEXT NOT NULL,
			tickers    INTEGER NOT NULL,
			failed     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON enrich_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS ticker_results (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT NOT NULL REFERENCES enrich_runs(run_id),
			ticker        TEXT NOT NULL,
			as_of         TEXT NOT NULL,
			primary_type  TEXT,
			events_json   TEXT NOT NULL,
			error         TEXT,
			classified_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_ticker ON ticker_results(ticker, classified_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun writes the run header and one row per ticker in a single transaction.
func (r *SQLiteRecorder) RecordRun(run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	err := r.recordRun(run)
	observability.RecordDBQuery("sqlite", "record_run", time.Since(start).Seconds(), err)
	return err
}

func (r *SQLiteRecorder) recordRun(run *Run) error {
	failed := 0
	for _, rep := range run.Reports {
		if rep.Error != "" {
			failed++
		}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO enrich_runs
		(run_id, timestamp, triggered_by, as_of, tickers, failed)
		VALUES (?,?,?,?,?,?)`,
		run.ID, run.StartedAt.Unix(), run.Trigger, run.AsOf.String(), len(run.Reports), failed,
	); err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	for _, rep := range run.Reports {
		events, err := json.Marshal(rep.Events)
		if err != nil {
			return fmt.Errorf("encode events %s: %w", rep.Ticker, err)
		}
		var primary string
		if rep.Primary != nil {
			primary = string(rep.Primary.Type)
		}
		if _, err := tx.Exec(`INSERT INTO ticker_results
			(run_id, ticker, as_of, primary_type, events_json, error, classified_at)
			VALUES (?,?,?,?,?,?,?)`,
			run.ID, rep.Ticker, rep.AsOf.String(), primary, string(events), rep.Error, rep.ClassifiedAt.Unix(),
		); err != nil {
			return fmt.Errorf("insert result %s: %w", rep.Ticker, err)
		}
	}
	return tx.Commit()
}

// LatestRuns returns the most recent runs, newest first.
func (r *SQLiteRecorder) LatestRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := r.db.Query(`SELECT run_id, timestamp, triggered_by, as_of, tickers, failed
		FROM enrich_runs ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		var (
			s    RunSummary
			ts   int64
			asOf string
		)
		if err := rows.Scan(&s.ID, &ts, &s.Trigger, &asOf, &s.Tickers, &s.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.StartedAt = time.Unix(ts, 0).UTC()
		if s.AsOf, err = model.ParseDate(asOf); err != nil {
			return nil, err
		}
		runs = append(runs, s)
	}
	return runs, rows.Err()
}

// TickerHistory returns stored results for one ticker, newest first.
func (r *SQLiteRecorder) TickerHistory(ticker string, limit int) ([]TickerResult, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := r.db.Query(`SELECT run_id, ticker, as_of, COALESCE(primary_type, ''), events_json,
			COALESCE(error, ''), classified_at
		FROM ticker_results WHERE ticker = ?
		ORDER BY classified_at DESC, id DESC LIMIT ?`, strings.ToUpper(ticker), limit)
	if err != nil {
		return nil, fmt.Errorf("query ticker history: %w", err)
	}
	defer rows.Close()

	results := []TickerResult{}
	for rows.Next() {
		var (
			res          TickerResult
			asOf, events string
			primary      string
			classifiedAt int64
		)
		if err := rows.Scan(&res.RunID, &res.Ticker, &asOf, &primary, &events, &res.Error, &classifiedAt); err != nil {
			return nil, fmt.Errorf("scan ticker result: %w", err)
		}
		if res.AsOf, err = model.ParseDate(asOf); err != nil {
			return nil, err
		}
		if primary != "" {
			if res.Primary, err = model.ParseEventType(primary); err != nil {
				return nil, err
			}
		}
		// older rows may carry renamed event names; UnmarshalText accepts both
		if err := json.Unmarshal([]byte(events), &res.Events); err != nil {
			return nil, fmt.Errorf("decode events for %s: %w", res.Ticker, err)
		}
		res.ClassifiedAt = time.Unix(classifiedAt, 0).UTC()
		results = append(results, res)
	}
	return results, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
