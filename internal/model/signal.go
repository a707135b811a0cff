package model

import "time"

// Action is the discrete recommendation attached to a result.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionHold Action = "HOLD"
	ActionSell Action = "SELL"
)

// RiskLevel buckets annualized volatility.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// SignalCategory is one scoring category's raw result.
type SignalCategory struct {
	Name    string   `json:"name"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// Tier maps a confidence range to a label, action and position hint.
type Tier struct {
	Label    string `json:"label"`
	Action   Action `json:"action"`
	Position string `json:"position"`
}

// RiskMetrics summarizes the return series. Available is false when the
// series was too short to compute them.
type RiskMetrics struct {
	Available      bool      `json:"available"`
	VolatilityPct  float64   `json:"annualized_volatility_pct"`
	SharpeRatio    float64   `json:"sharpe_like_ratio"`
	MaxDrawdownPct float64   `json:"max_drawdown_pct"`
	Level          RiskLevel `json:"risk_level,omitempty"`
}

// AnalysisResult is the per-symbol verdict. When Success is false only
// Symbol, Timestamp and Error are meaningful.
type AnalysisResult struct {
	Symbol         string            `json:"symbol"`
	Timestamp      time.Time         `json:"timestamp"`
	Success        bool              `json:"success"`
	Error          string            `json:"error,omitempty"`
	CurrentPrice   float64           `json:"current_price,omitempty"`
	PriceChangePct float64           `json:"price_change_pct,omitempty"`
	Volume         float64           `json:"volume,omitempty"`
	Indicators     IndicatorSnapshot `json:"indicators"`
	Confidence     float64           `json:"confidence"`
	Tier           Tier              `json:"tier"`
	TopReasons     []string          `json:"top_reasons,omitempty"`
	Categories     []SignalCategory  `json:"categories,omitempty"`
	Risk           RiskMetrics       `json:"risk"`
}

// EmptyResult builds the failed variant with an explanatory reason.
func EmptyResult(symbol string, ts time.Time, reason string) *AnalysisResult {
	return &AnalysisResult{
		Symbol:    symbol,
		Timestamp: ts,
		Success:   false,
		Error:     reason,
	}
}

// BatchStats counts how a batch run went. Not part of the ranking contract.
type BatchStats struct {
	Requested int `json:"requested"`
	Analyzed  int `json:"analyzed"`
	Failed    int `json:"failed"`
	Qualified int `json:"qualified"`
	Cancelled int `json:"cancelled"`
}

// BatchResult is the ranked output of a batch run: Results are sorted by
// descending confidence with ties kept in input order.
type BatchResult struct {
	RunID         string           `json:"run_id"`
	StartedAt     time.Time        `json:"started_at"`
	FinishedAt    time.Time        `json:"finished_at"`
	PeriodDays    int              `json:"period_days"`
	MinConfidence float64          `json:"min_confidence"`
	Cap           int              `json:"cap"`
	Results       []AnalysisResult `json:"results"`
	Stats         BatchStats       `json:"stats"`
}

// TradeSignal is the scorer's verdict on an annotated series.
type TradeSignal struct {
	Categories []SignalCategory
	Confidence float64
	Tier       Tier
	TopReasons []string
}
