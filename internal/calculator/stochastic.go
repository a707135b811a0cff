package calculator

import "StockPulse/internal/model"

// Stochastic computes %K over kWindow bars and %D as the dWindow SMA of %K.
// A flat window (max high == min low) gives the neutral 50.
func Stochastic(bars []model.Bar, kWindow, dWindow int) (k, d []model.Value) {
	highs, lows := RollingHighLow(bars, kWindow)
	k = make([]model.Value, len(bars))
	for i, b := range bars {
		high, ok1 := highs[i].Get()
		low, ok2 := lows[i].Get()
		if !ok1 || !ok2 {
			continue
		}
		k[i] = model.Some(100 * RangePosition(b.Close, low, high))
	}
	d = SMAOfValues(k, dWindow)
	return k, d
}
