package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"SignalDesk/internal/model"
)

// SQLiteRecorder persists signal history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	log zerolog.Logger
	mu  sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signal_history (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded  INTEGER NOT NULL,
			bar_time  INTEGER NOT NULL,
			symbol    TEXT NOT NULL,
			timeframe TEXT NOT NULL,
			close     REAL,
			stoch_k   REAL,
			stoch_d   REAL,
			cci       REAL,
			plus_di   REAL,
			minus_di  REAL,
			adx       REAL,
			slope_k   REAL,
			slope_d   REAL,
			signal    TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_symbol ON signal_history(symbol, timeframe, bar_time)`,
		`CREATE INDEX IF NOT EXISTS idx_history_recorded ON signal_history(recorded)`,

		`CREATE TABLE IF NOT EXISTS refresh_runs (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded        INTEGER NOT NULL,
			timeframe       TEXT NOT NULL,
			symbols_scanned INTEGER,
			failed          INTEGER,
			actionable      INTEGER,
			duration_ms     INTEGER,
			error           TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_recorded ON refresh_runs(recorded)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordBatch inserts all classified rows of one refresh, including None
// signals, so the full decision history stays queryable.
func (r *SQLiteRecorder) RecordBatch(records []model.SignalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO signal_history
		(recorded, bar_time, symbol, timeframe, close,
		 stoch_k, stoch_d, cci, plus_di, minus_di, adx, slope_k, slope_d, signal)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, rec := range records {
		row := rec.Row
		if _, err := stmt.Exec(now, row.Timestamp.Unix(), row.Symbol, string(row.Timeframe),
			row.Close, row.StochK, row.StochD, row.CCI,
			row.PlusDI, row.MinusDI, row.ADX, row.SlopeK, row.SlopeD,
			string(rec.Signal)); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert history: %w", err)
		}
	}
	return tx.Commit()
}

// RecordRun inserts one refresh run summary.
func (r *SQLiteRecorder) RecordRun(run *RefreshRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO refresh_runs
		(recorded, timeframe, symbols_scanned, failed, actionable, duration_ms, error)
		VALUES (?,?,?,?,?,?,?)`,
		time.Now().Unix(), string(run.Timeframe),
		run.SymbolsScanned, run.Failed, run.Actionable,
		run.Duration.Milliseconds(), run.Err,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
