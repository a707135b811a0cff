package recorder

// Column lists shared by the SQL recorders.
const (
	runColumns = `run_id, started_at, finished_at, period_days, min_confidence, result_cap,
		requested, analyzed, failed, qualified, cancelled`
	resultColumns = `run_id, rank, symbol, confidence, tier_label, action, position,
		current_price, price_change_pct, volatility_pct, sharpe_ratio, max_drawdown_pct,
		risk_level, reasons`
)

func schema(autoID string) []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS batch_runs (
			run_id         TEXT PRIMARY KEY,
			started_at     BIGINT NOT NULL,
			finished_at    BIGINT NOT NULL,
			period_days    INTEGER,
			min_confidence REAL,
			result_cap     INTEGER,
			requested      INTEGER,
			analyzed       INTEGER,
			failed         INTEGER,
			qualified      INTEGER,
			cancelled      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON batch_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS batch_results (
			id               ` + autoID + `,
			run_id           TEXT NOT NULL REFERENCES batch_runs(run_id),
			rank             INTEGER NOT NULL,
			symbol           TEXT NOT NULL,
			confidence       REAL,
			tier_label       TEXT,
			action           TEXT,
			position         TEXT,
			current_price    REAL,
			price_change_pct REAL,
			volatility_pct   REAL,
			sharpe_ratio     REAL,
			max_drawdown_pct REAL,
			risk_level       TEXT,
			reasons          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run ON batch_results(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_results_symbol ON batch_results(symbol)`,
	}
}
