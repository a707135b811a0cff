// Package analyzer runs the daily analysis, the realtime overlay and the
// two-minute detail view for a single symbol.
package analyzer

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"StockPulse/internal/calculator"
	"StockPulse/internal/model"
	"StockPulse/internal/strategy"
)

// DefaultPeriodDays is the daily history requested when none is given.
const DefaultPeriodDays = 120

// Source loads annotated daily series and raw intraday bars.
// *collector.Collector satisfies it.
type Source interface {
	DailySeries(ctx context.Context, symbol string, periodDays int) (*model.Series, error)
	IntradayBars(ctx context.Context, symbol, frequency string, count int) ([]model.Bar, error)
}

// Analyzer evaluates symbols against a Source.
type Analyzer struct {
	Source     Source
	PeriodDays int
	Now        func() time.Time
}

// New creates an Analyzer with the default period and wall clock.
func New(src Source) *Analyzer {
	return &Analyzer{Source: src, PeriodDays: DefaultPeriodDays, Now: time.Now}
}

func (a *Analyzer) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *Analyzer) period(periodDays int) int {
	if periodDays > 0 {
		return periodDays
	}
	if a.PeriodDays > 0 {
		return a.PeriodDays
	}
	return DefaultPeriodDays
}

// Analyze returns the verdict for symbol. Failures yield the empty-result
// variant carrying the reason; it never returns nil.
func (a *Analyzer) Analyze(ctx context.Context, symbol string, periodDays int) *model.AnalysisResult {
	res, err := a.Run(ctx, symbol, periodDays)
	if err != nil {
		log.Printf("[WARN] Analyze %s: %v", symbol, err)
		return model.EmptyResult(symbol, a.now(), err.Error())
	}
	return res
}

// Run is Analyze with the failure surfaced as an error classified as
// ErrDataUnavailable, ErrInsufficientHistory or ErrComputation.
func (a *Analyzer) Run(ctx context.Context, symbol string, periodDays int) (*model.AnalysisResult, error) {
	series, err := a.Source.DailySeries(ctx, symbol, a.period(periodDays))
	if err != nil {
		return nil, classify(err)
	}
	return a.Evaluate(series)
}

// Evaluate scores an annotated series. Identical input yields an identical
// result apart from Timestamp.
func (a *Analyzer) Evaluate(s *model.Series) (*model.AnalysisResult, error) {
	if s.Indicators == nil {
		annotated, err := calculator.Annotate(s)
		if err != nil {
			return nil, classify(err)
		}
		s = annotated
	}

	sig, err := strategy.Evaluate(s)
	if err != nil {
		return nil, fmt.Errorf("%w: score %s: %w", ErrComputation, s.Symbol, err)
	}
	if !finite(sig.Confidence) {
		return nil, fmt.Errorf("%w: %s confidence is %v", ErrComputation, s.Symbol, sig.Confidence)
	}

	risk, err := calculator.CalculateRisk(s.Closes())
	if err != nil {
		risk = model.RiskMetrics{}
	}
	if !finite(risk.VolatilityPct) || !finite(risk.SharpeRatio) || !finite(risk.MaxDrawdownPct) {
		return nil, fmt.Errorf("%w: %s risk metrics are not finite", ErrComputation, s.Symbol)
	}

	latest, prev := s.Latest(), s.Previous()
	change := 0.0
	if prev.Close > 0 {
		change = (latest.Close - prev.Close) / prev.Close * 100
	}

	return &model.AnalysisResult{
		Symbol:         s.Symbol,
		Timestamp:      a.now(),
		Success:        true,
		CurrentPrice:   latest.Close,
		PriceChangePct: change,
		Volume:         latest.Volume,
		Indicators:     s.Snapshot(),
		Confidence:     sig.Confidence,
		Tier:           sig.Tier,
		TopReasons:     sig.TopReasons,
		Categories:     sig.Categories,
		Risk:           risk,
	}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
