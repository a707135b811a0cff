package calculator

import (
	"fmt"
	"math"

	"StockPulse/internal/model"
)

// Risk parameters.
const (
	MinRiskBars    = 20
	TradingDays    = 252
	HighVolatility = 40.0
	MidVolatility  = 20.0
)

// Returns computes simple daily returns. The first bar, and any bar where
// either close is not positive, has no return.
func Returns(closes []float64) []model.Value {
	out := make([]model.Value, len(closes))
	for i := 1; i < len(closes); i++ {
		prev, cur := closes[i-1], closes[i]
		if prev <= 0 || cur <= 0 {
			continue
		}
		out[i] = model.Some((cur - prev) / prev)
	}
	return out
}

// CalculateRisk derives volatility, a Sharpe-like ratio and max drawdown from
// the closes. Fewer than MinRiskBars bars yields ErrInsufficientBars.
func CalculateRisk(closes []float64) (model.RiskMetrics, error) {
	if len(closes) < MinRiskBars {
		return model.RiskMetrics{}, fmt.Errorf("risk metrics: %d bars, need %d: %w", len(closes), MinRiskBars, ErrInsufficientBars)
	}
	var returns []float64
	for _, r := range Returns(closes) {
		if v, ok := r.Get(); ok {
			returns = append(returns, v)
		}
	}

	mean, sd := meanStdDev(returns)
	annual := math.Sqrt(TradingDays)
	volatility := sd * annual * 100

	sharpe := 0.0
	if sd > 0 {
		sharpe = mean / sd * annual
	}

	// Max drawdown over the compounded return path
	cumulative := 1.0
	runningMax := math.Inf(-1)
	maxDD := 0.0
	for _, r := range returns {
		cumulative *= 1 + r
		if cumulative > runningMax {
			runningMax = cumulative
		}
		if runningMax > 0 {
			if dd := cumulative/runningMax - 1; dd < maxDD {
				maxDD = dd
			}
		}
	}

	level := model.RiskLow
	switch {
	case volatility > HighVolatility:
		level = model.RiskHigh
	case volatility > MidVolatility:
		level = model.RiskMedium
	}

	return model.RiskMetrics{
		Available:      true,
		VolatilityPct:  volatility,
		SharpeRatio:    sharpe,
		MaxDrawdownPct: math.Abs(maxDD * 100),
		Level:          level,
	}, nil
}

// meanStdDev returns the mean and sample standard deviation (n-1).
func meanStdDev(xs []float64) (mean, sd float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	if len(xs) < 2 {
		return mean, 0
	}
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(xs)-1))
}
