package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/analyzer"
	"StockPulse/internal/batch"
	"StockPulse/internal/cache"
	"StockPulse/internal/collector"
	"StockPulse/internal/model"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeSender) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

type fakeRecorder struct {
	mu      sync.Mutex
	batches []*model.BatchResult
}

func (f *fakeRecorder) RecordBatch(_ context.Context, res *model.BatchResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, res)
	return nil
}

func (f *fakeRecorder) Close() error { return nil }

type fakeLister struct {
	symbols []string
	err     error
	calls   int
}

func (f *fakeLister) FetchSymbols(_ context.Context, limit int) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && limit < len(f.symbols) {
		return f.symbols[:limit], nil
	}
	return f.symbols, nil
}

func rising(n int) []model.Bar {
	end := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, n)
	for i := range bars {
		p := 100 + float64(i)
		bars[i] = model.Bar{
			Time:   end.AddDate(0, 0, i-n),
			Open:   p - 0.5,
			High:   p + 0.5,
			Low:    p - 1,
			Close:  p,
			Volume: 1000 + 10*float64(i),
		}
	}
	return bars
}

func newTestScheduler(t *testing.T) (*Scheduler, *fakeSender, *fakeRecorder) {
	t.Helper()
	f := &collector.MockFetcher{
		Daily: map[string][]model.Bar{
			"sh600000": rising(120),
			"sh600001": rising(120),
			"short":    rising(10),
		},
		Intraday: map[string][]model.Bar{"sh600000": rising(30)},
	}
	col := collector.NewCollector(f, cache.NewMemory(time.Minute), time.Second)
	an := analyzer.New(col)
	orch := batch.NewOrchestrator(an, 2)
	sender := &fakeSender{}
	rec := &fakeRecorder{}
	s := NewScheduler(context.Background(), an, orch, sender, rec, time.UTC)
	s.Options.MinConfidence = 0
	s.Universe = batch.NewUniverse([]string{"sh600000", "short", "sh600001"}, time.Now())
	s.Indices = []string{"sh600000"}
	return s, sender, rec
}

func TestRunBatchRecordsAndNotifies(t *testing.T) {
	s, sender, rec := newTestScheduler(t)

	res, err := s.RunBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Stats.Requested)
	assert.Equal(t, 2, res.Stats.Analyzed)
	assert.Equal(t, 1, res.Stats.Failed)
	assert.Same(t, res, s.Last())

	require.Len(t, rec.batches, 1)
	assert.Same(t, res, rec.batches[0])
	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "sh600000")
}

func TestRunBatchEmptyUniverse(t *testing.T) {
	s, sender, rec := newTestScheduler(t)
	s.Universe = &batch.Universe{}

	_, err := s.RunBatch(context.Background())
	assert.Error(t, err)
	assert.Empty(t, rec.batches)
	require.Len(t, sender.messages(), 1)
	assert.Contains(t, sender.messages()[0], "universe is empty")
}

func TestRunBatchRejectsOverlap(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	s.running.Store(true)
	_, err := s.RunBatch(context.Background())
	assert.Error(t, err)
}

func TestRefreshUniverse(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	lister := &fakeLister{symbols: []string{"sh600000", "sh600001", "sz000001"}}
	s.Lister = lister
	s.UniverseLimit = 2
	s.UniversePath = filepath.Join(t.TempDir(), "universe.json")

	s.refreshUniverse(context.Background())
	assert.Zero(t, lister.calls, "fresh universe must not be refetched")

	s.Universe.UpdatedAt = time.Now().Add(-48 * time.Hour)
	s.refreshUniverse(context.Background())
	assert.Equal(t, 1, lister.calls)
	assert.Equal(t, []string{"sh600000", "sh600001"}, s.Universe.Symbols)
	saved, err := batch.LoadUniverse(s.UniversePath)
	require.NoError(t, err)
	assert.Equal(t, s.Universe.Symbols, saved.Symbols)

	lister.err = errors.New("offline")
	s.Universe.UpdatedAt = time.Now().Add(-48 * time.Hour)
	s.refreshUniverse(context.Background())
	assert.Equal(t, []string{"sh600000", "sh600001"}, s.Universe.Symbols)
}

func TestHandleCommand(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/help"), "Available commands")
	assert.Contains(t, s.HandleCommand(ctx, ""), "Available commands")
	assert.Contains(t, s.HandleCommand(ctx, "/analyze"), "Usage")

	reply := s.HandleCommand(ctx, "/analyze@PulseBot sh600000")
	assert.Contains(t, reply, "<b>sh600000</b>")
	assert.Contains(t, reply, "Categories")

	assert.Contains(t, s.HandleCommand(ctx, "/analyze short"), "analysis failed")
	assert.Contains(t, s.HandleCommand(ctx, "/realtime sh600000"), "sh600000 realtime")
	assert.Contains(t, s.HandleCommand(ctx, "/detail sh600000"), "2min bars")
	assert.Contains(t, s.HandleCommand(ctx, "/OVERVIEW"), "Market overview")
}

func TestHandleTopUsesLastResult(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	_, err := s.RunBatch(context.Background())
	require.NoError(t, err)

	reply := s.HandleCommand(context.Background(), "/top")
	assert.True(t, strings.Contains(reply, "top picks"), reply)
}

func TestRegisterAllRejectsBadCron(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	assert.Error(t, s.RegisterAll("not a cron"))
	assert.NoError(t, s.RegisterAll("0 30 13 * * 1-5"))
}
