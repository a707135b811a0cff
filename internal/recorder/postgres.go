package recorder

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"StockPulse/internal/model"
)

// PostgresRecorder persists batch results to PostgreSQL.
type PostgresRecorder struct {
	db *sqlx.DB
}

// NewPostgresRecorder connects to dsn and runs migrations.
func NewPostgresRecorder(ctx context.Context, dsn string) (*PostgresRecorder, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	r := &PostgresRecorder{db: db}
	if err := r.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Printf("[INFO] postgres recorder connected")
	return r, nil
}

func (r *PostgresRecorder) migrate(ctx context.Context) error {
	for _, s := range schema("BIGSERIAL PRIMARY KEY") {
		if _, err := r.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// namedValues turns "a, b" into ":a, :b".
func namedValues(columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = ":" + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// RecordBatch stores the run and its ranked results in one transaction.
func (r *PostgresRecorder) RecordBatch(ctx context.Context, res *model.BatchResult) error {
	run, rows := rowsOf(res)
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx,
		`INSERT INTO batch_runs (`+runColumns+`) VALUES (`+namedValues(runColumns)+`)`, run); err != nil {
		return fmt.Errorf("insert run %s: %w", run.RunID, err)
	}
	if len(rows) > 0 {
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO batch_results (`+resultColumns+`) VALUES (`+namedValues(resultColumns)+`)`, rows); err != nil {
			return fmt.Errorf("insert results: %w", err)
		}
	}
	return tx.Commit()
}

func (r *PostgresRecorder) Close() error {
	log.Println("[INFO] closing postgres recorder")
	return r.db.Close()
}
