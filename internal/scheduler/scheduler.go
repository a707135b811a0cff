package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"StockPulse/internal/analyzer"
	"StockPulse/internal/batch"
	"StockPulse/internal/model"
	"StockPulse/internal/notifier"
	"StockPulse/internal/recorder"
	"StockPulse/internal/trace"
)

// Sender delivers a formatted message. *notifier.TelegramNotifier satisfies it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// SymbolLister lists the tradable universe. *collector.EastMoneyFetcher
// satisfies it.
type SymbolLister interface {
	FetchSymbols(ctx context.Context, limit int) ([]string, error)
}

// Scheduler runs the daily batch and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Analyzer *analyzer.Analyzer
	Batch    *batch.Orchestrator
	Notifier Sender
	Recorder recorder.Recorder
	Ctx      context.Context

	Options         batch.Options
	Universe        *batch.Universe
	Lister          SymbolLister
	UniversePath    string
	UniverseLimit   int
	UniverseTTL     time.Duration
	Indices         []string
	RealtimeMinutes int

	mu      sync.Mutex
	last    *model.BatchResult
	running atomic.Bool
	now     func() time.Time
}

// NewScheduler creates a new Scheduler whose cron runs in loc.
func NewScheduler(ctx context.Context, an *analyzer.Analyzer, orch *batch.Orchestrator, sender Sender, rec recorder.Recorder, loc *time.Location) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Analyzer:    an,
		Batch:       orch,
		Notifier:    sender,
		Recorder:    rec,
		Ctx:         ctx,
		Options:     batch.DefaultOptions(),
		Universe:    &batch.Universe{},
		UniverseTTL: 24 * time.Hour,
		now:         time.Now,
	}
}

// RegisterAll registers the daily batch task.
func (s *Scheduler) RegisterAll(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunBatchNow executes the daily task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunBatchNow() {
	s.dailyTask()
}

// Last returns the most recent batch result, nil before the first run.
func (s *Scheduler) Last() *model.BatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Scheduler) dailyTask() {
	if _, err := s.RunBatch(s.Ctx); err != nil {
		log.Printf("[WARN] daily batch: %v", err)
	}
}

// RunBatch analyzes the universe, records the result and sends the report.
// Overlapping runs are rejected.
func (s *Scheduler) RunBatch(ctx context.Context) (*model.BatchResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("a batch run is already in progress")
	}
	defer s.running.Store(false)

	ctx = trace.WithTraceID(ctx, trace.NewTraceID())
	trace.Log(ctx, "scheduler: running daily batch")

	s.refreshUniverse(ctx)
	symbols := s.Universe.Limit(s.UniverseLimit)
	if len(symbols) == 0 {
		s.trySend(ctx, "❌ Daily batch skipped: universe is empty")
		return nil, fmt.Errorf("universe is empty")
	}

	res := s.Batch.BatchAnalyze(ctx, symbols, s.Options)
	s.mu.Lock()
	s.last = res
	s.mu.Unlock()

	if err := s.Recorder.RecordBatch(ctx, res); err != nil {
		log.Printf("[ERROR] record batch %s: %v", res.RunID, err)
	}
	s.trySend(ctx, notifier.FormatBatchReport(res))
	return res, nil
}

func (s *Scheduler) refreshUniverse(ctx context.Context) {
	if s.Lister == nil || !s.Universe.Stale(s.now(), s.UniverseTTL) {
		return
	}
	symbols, err := s.Lister.FetchSymbols(ctx, s.UniverseLimit)
	if err != nil {
		trace.Log(ctx, "scheduler: refresh universe failed, keeping %d symbols: %v", len(s.Universe.Symbols), err)
		return
	}
	s.Universe = batch.NewUniverse(symbols, s.now())
	trace.Log(ctx, "scheduler: universe refreshed with %d symbols", len(symbols))
	if s.UniversePath != "" {
		if err := s.Universe.Save(s.UniversePath); err != nil {
			log.Printf("[WARN] save universe: %v", err)
		}
	}
}

const helpText = `Available commands:
• /top - latest top picks
• /run - start a batch run now
• /analyze &lt;code&gt; - daily analysis
• /realtime &lt;code&gt; - intraday overlay
• /detail &lt;code&gt; - two-minute bars
• /overview - market overview`

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	cmd := strings.ToLower(fields[0])
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i] // strip /cmd@BotName
	}
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch cmd {
	case "/top":
		if last := s.Last(); last != nil {
			return notifier.FormatBatchReport(last)
		}
		go s.dailyTask()
		return "No batch has run yet; starting one now."
	case "/run":
		if s.running.Load() {
			return "A batch run is already in progress."
		}
		go s.dailyTask()
		return "Batch run started."
	case "/analyze":
		if arg == "" {
			return "Usage: /analyze &lt;code&gt;"
		}
		return notifier.FormatAnalysis(s.Analyzer.Analyze(ctx, arg, s.Options.PeriodDays))
	case "/realtime":
		if arg == "" {
			return "Usage: /realtime &lt;code&gt;"
		}
		return notifier.FormatRealtime(s.Analyzer.AnalyzeRealtime(ctx, arg, s.RealtimeMinutes))
	case "/detail":
		if arg == "" {
			return "Usage: /detail &lt;code&gt;"
		}
		return notifier.FormatDetail(s.Analyzer.Detail(ctx, arg, s.RealtimeMinutes))
	case "/overview":
		return notifier.FormatOverview(s.Batch.MarketOverview(ctx, s.Indices))
	default:
		return helpText
	}
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
