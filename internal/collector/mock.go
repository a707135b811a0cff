package collector

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"StockPulse/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Symbols without fixture data get a generated gently rising series.
type MockFetcher struct {
	Price    float64
	Daily    map[string][]model.Bar
	Intraday map[string][]model.Bar
	Errors   map[string]error
	Delay    time.Duration

	mu    sync.Mutex
	calls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls reports how many fetches have been served.
func (m *MockFetcher) Calls() int64 { return m.calls.Load() }

func (m *MockFetcher) wait(ctx context.Context) error {
	m.calls.Add(1)
	if m.Delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(m.Delay):
		return nil
	}
}

func (m *MockFetcher) lookup(fixtures map[string][]model.Bar, symbol string) ([]model.Bar, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.Errors[symbol]; ok {
		return nil, true, err
	}
	bars, ok := fixtures[symbol]
	return bars, ok, nil
}

func (m *MockFetcher) FetchDailyBars(ctx context.Context, symbol string, count int) ([]model.Bar, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	bars, ok, err := m.lookup(m.Daily, symbol)
	if err != nil {
		return nil, err
	}
	if !ok {
		bars = generateMockBars(m.price(), count, 24*time.Hour)
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	return tail(bars, count), nil
}

func (m *MockFetcher) FetchIntradayBars(ctx context.Context, symbol, _ string, count int) ([]model.Bar, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	bars, ok, err := m.lookup(m.Intraday, symbol)
	if err != nil {
		return nil, err
	}
	if !ok {
		bars = generateMockBars(m.price(), count, 5*time.Minute)
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	return tail(bars, count), nil
}

func (m *MockFetcher) price() float64 {
	if m.Price <= 0 {
		return 10
	}
	return m.Price
}

func generateMockBars(basePrice float64, count int, step time.Duration) []model.Bar {
	end := time.Now().Truncate(step)
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Time:   end.Add(-time.Duration(count-i) * step),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
