// Package batch fans symbol analysis out over a bounded worker pool and
// ranks the qualifying results.
package batch

import (
	"context"
	"sort"
	"sync"
	"time"

	"StockPulse/internal/model"
	"StockPulse/internal/trace"
)

const (
	DefaultConcurrency   = 8
	DefaultCap           = 10
	DefaultMinConfidence = 80
	OverviewPeriodDays   = 60
)

// Runner analyzes one symbol. *analyzer.Analyzer satisfies it.
type Runner interface {
	Run(ctx context.Context, symbol string, periodDays int) (*model.AnalysisResult, error)
}

// Options controls one batch run. MinConfidence is used as given; Cap <= 0
// means DefaultCap and PeriodDays <= 0 the runner's default.
type Options struct {
	PeriodDays    int
	MinConfidence float64
	Cap           int
}

// DefaultOptions returns the daily-run options.
func DefaultOptions() Options {
	return Options{MinConfidence: DefaultMinConfidence, Cap: DefaultCap}
}

// Orchestrator runs batches over a Runner.
type Orchestrator struct {
	Runner      Runner
	Concurrency int
	// Progress, when set, is called after each symbol completes.
	Progress func(done, total int)
	now      func() time.Time
}

// NewOrchestrator creates an Orchestrator bounded to concurrency workers.
func NewOrchestrator(r Runner, concurrency int) *Orchestrator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Orchestrator{Runner: r, Concurrency: concurrency, now: time.Now}
}

// WithClock overrides the clock used to stamp runs.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

type job struct {
	index  int
	symbol string
}

type outcome struct {
	index int
	res   *model.AnalysisResult
	err   error
	run   bool
}

// runAll analyzes symbols on the pool. Outcomes are returned in input
// order; symbols never started because ctx was cancelled have run=false.
// Work already started is allowed to finish after cancellation.
func (o *Orchestrator) runAll(ctx context.Context, symbols []string, periodDays int) []outcome {
	concurrency := o.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	jobs := make(chan job)
	results := make(chan outcome)
	drain := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					results <- outcome{index: j.index}
					continue
				}
				res, err := o.Runner.Run(drain, j.symbol, periodDays)
				if err != nil {
					trace.Log(ctx, "batch: %s skipped: %v", j.symbol, err)
				}
				results <- outcome{index: j.index, res: res, err: err, run: true}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, s := range symbols {
			select {
			case <-ctx.Done():
				trace.Log(ctx, "batch: ctx done, dispatched %d/%d", i, len(symbols))
				return
			case jobs <- job{index: i, symbol: s}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]outcome, len(symbols))
	for i := range out {
		out[i].index = i
	}
	done := 0
	for r := range results {
		out[r.index] = r
		done++
		if o.Progress != nil {
			o.Progress(done, len(symbols))
		}
	}
	return out
}

// BatchAnalyze analyzes every symbol, keeps successes with confidence at or
// above opts.MinConfidence, sorts them by descending confidence with ties
// in input order and truncates to the cap. Per-symbol failures are skipped.
func (o *Orchestrator) BatchAnalyze(ctx context.Context, symbols []string, opts Options) *model.BatchResult {
	if opts.Cap <= 0 {
		opts.Cap = DefaultCap
	}
	runID := trace.TraceID(ctx)
	if runID == "" {
		runID = trace.NewTraceID()
		ctx = trace.WithTraceID(ctx, runID)
	}
	started := o.clock()
	trace.Log(ctx, "batch: start symbols=%d concurrency=%d min_confidence=%.0f cap=%d",
		len(symbols), o.Concurrency, opts.MinConfidence, opts.Cap)

	stats := model.BatchStats{Requested: len(symbols)}
	qualified := make([]model.AnalysisResult, 0)
	for _, r := range o.runAll(ctx, symbols, opts.PeriodDays) {
		switch {
		case !r.run:
			stats.Cancelled++
		case r.err != nil || r.res == nil || !r.res.Success:
			stats.Failed++
		default:
			stats.Analyzed++
			if r.res.Confidence >= opts.MinConfidence {
				qualified = append(qualified, *r.res)
			}
		}
	}
	stats.Qualified = len(qualified)

	sort.SliceStable(qualified, func(i, j int) bool {
		return qualified[i].Confidence > qualified[j].Confidence
	})
	if len(qualified) > opts.Cap {
		qualified = qualified[:opts.Cap]
	}

	res := &model.BatchResult{
		RunID:         runID,
		StartedAt:     started,
		FinishedAt:    o.clock(),
		PeriodDays:    opts.PeriodDays,
		MinConfidence: opts.MinConfidence,
		Cap:           opts.Cap,
		Results:       qualified,
		Stats:         stats,
	}
	trace.Log(ctx, "batch: done analyzed=%d failed=%d cancelled=%d qualified=%d kept=%d in %s",
		stats.Analyzed, stats.Failed, stats.Cancelled, stats.Qualified, len(qualified),
		res.FinishedAt.Sub(started).Round(time.Millisecond))
	return res
}

// MarketOverview analyzes each index over OverviewPeriodDays and
// summarizes the verdicts. Failed indices are left out.
func (o *Orchestrator) MarketOverview(ctx context.Context, indices []string) *model.MarketOverview {
	ov := &model.MarketOverview{Timestamp: o.clock(), Indices: []model.IndexSummary{}}
	for i, r := range o.runAll(ctx, indices, OverviewPeriodDays) {
		if !r.run || r.err != nil || r.res == nil || !r.res.Success {
			continue
		}
		ov.Indices = append(ov.Indices, model.IndexSummary{
			Symbol:     indices[i],
			Price:      r.res.CurrentPrice,
			ChangePct:  r.res.PriceChangePct,
			Label:      r.res.Tier.Label,
			Action:     r.res.Tier.Action,
			Confidence: r.res.Confidence,
		})
		switch r.res.Tier.Action {
		case model.ActionBuy:
			ov.Buy++
		case model.ActionHold:
			ov.Hold++
		default:
			ov.Sell++
		}
	}
	ov.Sentiment = "bearish"
	if ov.Buy*2 > len(ov.Indices) {
		ov.Sentiment = "bullish"
	}
	return ov
}

func (o *Orchestrator) clock() time.Time {
	if o.now == nil {
		return time.Now()
	}
	return o.now()
}
