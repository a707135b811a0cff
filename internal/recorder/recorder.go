package recorder

import (
	"context"
	"errors"
	"strings"

	"StockPulse/internal/model"
)

// Recorder persists batch results for later analysis.
type Recorder interface {
	RecordBatch(ctx context.Context, res *model.BatchResult) error
	Close() error
}

// runRow is one batch run as stored by the SQL recorders.
type runRow struct {
	RunID         string  `db:"run_id"`
	StartedAt     int64   `db:"started_at"`
	FinishedAt    int64   `db:"finished_at"`
	PeriodDays    int     `db:"period_days"`
	MinConfidence float64 `db:"min_confidence"`
	Cap           int     `db:"result_cap"`
	Requested     int     `db:"requested"`
	Analyzed      int     `db:"analyzed"`
	Failed        int     `db:"failed"`
	Qualified     int     `db:"qualified"`
	Cancelled     int     `db:"cancelled"`
}

// resultRow is one ranked symbol of a run.
type resultRow struct {
	RunID          string  `db:"run_id"`
	Rank           int     `db:"rank"`
	Symbol         string  `db:"symbol"`
	Confidence     float64 `db:"confidence"`
	Label          string  `db:"tier_label"`
	Action         string  `db:"action"`
	Position       string  `db:"position"`
	CurrentPrice   float64 `db:"current_price"`
	PriceChangePct float64 `db:"price_change_pct"`
	VolatilityPct  float64 `db:"volatility_pct"`
	SharpeRatio    float64 `db:"sharpe_ratio"`
	MaxDrawdownPct float64 `db:"max_drawdown_pct"`
	RiskLevel      string  `db:"risk_level"`
	Reasons        string  `db:"reasons"`
}

func rowsOf(res *model.BatchResult) (runRow, []resultRow) {
	run := runRow{
		RunID:         res.RunID,
		StartedAt:     res.StartedAt.Unix(),
		FinishedAt:    res.FinishedAt.Unix(),
		PeriodDays:    res.PeriodDays,
		MinConfidence: res.MinConfidence,
		Cap:           res.Cap,
		Requested:     res.Stats.Requested,
		Analyzed:      res.Stats.Analyzed,
		Failed:        res.Stats.Failed,
		Qualified:     res.Stats.Qualified,
		Cancelled:     res.Stats.Cancelled,
	}
	rows := make([]resultRow, len(res.Results))
	for i, r := range res.Results {
		rows[i] = resultRow{
			RunID:          res.RunID,
			Rank:           i + 1,
			Symbol:         r.Symbol,
			Confidence:     r.Confidence,
			Label:          r.Tier.Label,
			Action:         string(r.Tier.Action),
			Position:       r.Tier.Position,
			CurrentPrice:   r.CurrentPrice,
			PriceChangePct: r.PriceChangePct,
			VolatilityPct:  r.Risk.VolatilityPct,
			SharpeRatio:    r.Risk.SharpeRatio,
			MaxDrawdownPct: r.Risk.MaxDrawdownPct,
			RiskLevel:      string(r.Risk.Level),
			Reasons:        strings.Join(r.TopReasons, "; "),
		}
	}
	return run, rows
}

// Fanout records to every recorder, returning the joined errors.
type Fanout []Recorder

func (f Fanout) RecordBatch(ctx context.Context, res *model.BatchResult) error {
	var errs []error
	for _, r := range f {
		if err := r.RecordBatch(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, r := range f {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
