package model

import (
	"fmt"
	"time"
)

// Bar represents a single OHLCV candlestick.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Bullish reports whether the bar closed above its open.
func (b Bar) Bullish() bool { return b.Close > b.Open }

// Bearish reports whether the bar closed below its open.
func (b Bar) Bearish() bool { return b.Close < b.Open }

// SeriesKey identifies a cached daily series.
type SeriesKey struct {
	Symbol     string
	PeriodDays int
}

func (k SeriesKey) String() string {
	return fmt.Sprintf("bars:%s:%d", k.Symbol, k.PeriodDays)
}

// Series holds ascending bars for one symbol plus the indicator columns
// derived from them. Indicators is nil until the series has been annotated.
type Series struct {
	Symbol     string      `json:"symbol"`
	PeriodDays int         `json:"period_days"`
	Bars       []Bar       `json:"bars"`
	Indicators *Indicators `json:"indicators,omitempty"`
	FetchedAt  time.Time   `json:"fetched_at"`
}

// Key returns the cache key of the series.
func (s *Series) Key() SeriesKey {
	return SeriesKey{Symbol: s.Symbol, PeriodDays: s.PeriodDays}
}

// Len returns the number of bars.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// Closes extracts close prices in bar order.
func (s *Series) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Latest returns the most recent bar. The series must not be empty.
func (s *Series) Latest() Bar { return s.Bars[len(s.Bars)-1] }

// Previous returns the bar before the most recent one. The series needs at least two bars.
func (s *Series) Previous() Bar { return s.Bars[len(s.Bars)-2] }
