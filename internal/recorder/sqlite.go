package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"

	"StockPulse/internal/model"
)

// SQLiteRecorder persists batch results to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while a batch writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	for _, s := range schema("INTEGER PRIMARY KEY AUTOINCREMENT") {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordBatch stores the run and its ranked results in one transaction.
func (r *SQLiteRecorder) RecordBatch(ctx context.Context, res *model.BatchResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, rows := rowsOf(res)
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO batch_runs (`+runColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		run.RunID, run.StartedAt, run.FinishedAt, run.PeriodDays, run.MinConfidence, run.Cap,
		run.Requested, run.Analyzed, run.Failed, run.Qualified, run.Cancelled,
	); err != nil {
		return fmt.Errorf("insert run %s: %w", run.RunID, err)
	}

	for _, row := range rows {
		if _, err := tx.ExecContext(ctx, `INSERT INTO batch_results (`+resultColumns+`)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			row.RunID, row.Rank, row.Symbol, row.Confidence, row.Label, row.Action, row.Position,
			row.CurrentPrice, row.PriceChangePct, row.VolatilityPct, row.SharpeRatio,
			row.MaxDrawdownPct, row.RiskLevel, row.Reasons,
		); err != nil {
			return fmt.Errorf("insert result %s: %w", row.Symbol, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
