package model

import "time"

// IntradaySummary describes the most recent intraday window.
type IntradaySummary struct {
	LatestPrice     float64 `json:"latest_price"`
	LatestChange    float64 `json:"latest_change"`
	LatestChangePct float64 `json:"latest_change_pct"`
	LatestVolume    float64 `json:"latest_volume"`
	High            float64 `json:"high"`
	Low             float64 `json:"low"`
	AvgPrice        float64 `json:"avg_price"`
	TotalVolume     float64 `json:"total_volume"`
	AvgVolume       float64 `json:"avg_volume"`
	ShortTrend      string  `json:"short_trend,omitempty"` // up, down, sideways
}

// IntradaySnapshot holds fetched intraday bars and their summary.
type IntradaySnapshot struct {
	Frequency    string          `json:"frequency"`
	Count        int             `json:"count"`
	DelaySeconds float64         `json:"data_delay_seconds"`
	LatestTime   time.Time       `json:"latest_time"`
	Bars         []Bar           `json:"bars"`
	Summary      IntradaySummary `json:"summary"`
}

// ShortTermBias blends intraday signals with the daily verdict.
type ShortTermBias struct {
	BuySignals  []string `json:"buy_signals"`
	SellSignals []string `json:"sell_signals"`
	Warnings    []string `json:"warnings"`
	Overall     Action   `json:"overall"`
}

// RealtimeResult is the output of the realtime overlay.
type RealtimeResult struct {
	Symbol             string            `json:"symbol"`
	Timestamp          time.Time         `json:"timestamp"`
	Error              string            `json:"error,omitempty"`
	Intraday           *IntradaySnapshot `json:"intraday,omitempty"`
	Daily              *AnalysisResult   `json:"daily,omitempty"`
	Bias               ShortTermBias     `json:"bias"`
	CombinedConfidence float64           `json:"combined_confidence"`
}

// DetailResult bundles two-minute bars with the daily and realtime views.
type DetailResult struct {
	Symbol    string            `json:"symbol"`
	Timestamp time.Time         `json:"timestamp"`
	Error     string            `json:"error,omitempty"`
	TwoMinute *IntradaySnapshot `json:"two_minute,omitempty"`
	Daily     *AnalysisResult   `json:"daily,omitempty"`
	Realtime  *RealtimeResult   `json:"realtime,omitempty"`
}
