package model

import "time"

// IndexSummary is one index's line in a market overview.
type IndexSummary struct {
	Symbol     string  `json:"symbol"`
	Price      float64 `json:"price"`
	ChangePct  float64 `json:"change_pct"`
	Label      string  `json:"label"`
	Action     Action  `json:"action"`
	Confidence float64 `json:"confidence"`
}

// MarketOverview aggregates the verdicts of a set of indices.
type MarketOverview struct {
	Timestamp time.Time      `json:"timestamp"`
	Indices   []IndexSummary `json:"indices"`
	Buy       int            `json:"buy"`
	Hold      int            `json:"hold"`
	Sell      int            `json:"sell"`
	Sentiment string         `json:"sentiment"` // bullish or bearish
}
