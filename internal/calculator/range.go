package calculator

import (
	"math"

	"StockPulse/internal/model"
)

// RollingHighLow scans each window of bars and returns the highest high and
// lowest low ending at every bar. Bars before the window fills are absent.
func RollingHighLow(bars []model.Bar, window int) (highs, lows []model.Value) {
	highs = make([]model.Value, len(bars))
	lows = make([]model.Value, len(bars))
	if window <= 0 {
		return highs, lows
	}
	for i := window - 1; i < len(bars); i++ {
		high := math.Inf(-1)
		low := math.Inf(1)
		for j := i - window + 1; j <= i; j++ {
			if bars[j].High > high {
				high = bars[j].High
			}
			if bars[j].Low < low {
				low = bars[j].Low
			}
		}
		highs[i] = model.Some(high)
		lows[i] = model.Some(low)
	}
	return highs, lows
}

// RangePosition returns where v sits between low and high as a fraction.
// It is not clamped: values outside the range give results outside [0,1].
// A degenerate range (high == low) yields the neutral 0.5.
func RangePosition(v, low, high float64) float64 {
	if high == low {
		return 0.5
	}
	return (v - low) / (high - low)
}
