package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"StockPulse/internal/cache"
	"StockPulse/internal/calculator"
	"StockPulse/internal/model"
)

// DefaultTimeout bounds a single fetch from the price source.
const DefaultTimeout = 15 * time.Second

// ErrInvalidBars is returned when a source delivers bars that cannot be
// used for computation.
var ErrInvalidBars = errors.New("invalid bars")

// Collector orchestrates data fetching, caching and indicator computation.
type Collector struct {
	Fetcher Fetcher
	Cache   cache.Store
	Timeout time.Duration
	now     func() time.Time
}

// NewCollector creates a new Collector. A nil store disables caching.
func NewCollector(fetcher Fetcher, store cache.Store, timeout time.Duration) *Collector {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Collector{Fetcher: fetcher, Cache: store, Timeout: timeout, now: time.Now}
}

// WithClock overrides the clock stamped on fetched series.
func (c *Collector) WithClock(now func() time.Time) *Collector {
	c.now = now
	return c
}

// DailySeries returns the annotated daily series for symbol, serving it
// from the cache while fresh. Only successfully annotated series are
// cached.
func (c *Collector) DailySeries(ctx context.Context, symbol string, periodDays int) (*model.Series, error) {
	key := model.SeriesKey{Symbol: symbol, PeriodDays: periodDays}
	if c.Cache != nil {
		if s, ok := c.Cache.Get(ctx, key); ok {
			return s, nil
		}
	}

	fctx, cancel := context.WithTimeout(ctx, c.Timeout)
	bars, err := c.Fetcher.FetchDailyBars(fctx, symbol, periodDays)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("fetch daily bars for %s: %w", symbol, ErrNoData)
	}
	bars = Normalize(bars)
	if err := Validate(bars); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", symbol, ErrInvalidBars, err)
	}

	series, err := calculator.Annotate(&model.Series{
		Symbol:     symbol,
		PeriodDays: periodDays,
		Bars:       bars,
		FetchedAt:  c.now(),
	})
	if err != nil {
		return nil, err
	}

	if c.Cache != nil {
		c.Cache.Set(ctx, key, series)
	}
	log.Printf("[INFO] Fetched %d daily bars for %s from %s", len(bars), symbol, c.Fetcher.Name())
	return series, nil
}

// IntradayBars fetches intraday bars at frequency without caching.
func (c *Collector) IntradayBars(ctx context.Context, symbol, frequency string, count int) ([]model.Bar, error) {
	fctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()
	bars, err := c.Fetcher.FetchIntradayBars(fctx, symbol, frequency, count)
	if err != nil {
		return nil, fmt.Errorf("fetch %s bars for %s: %w", frequency, symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("fetch %s bars for %s: %w", frequency, symbol, ErrNoData)
	}
	bars = Normalize(bars)
	if err := Validate(bars); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", symbol, ErrInvalidBars, err)
	}
	return bars, nil
}
