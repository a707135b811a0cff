package calculator

import (
	"math"

	"StockPulse/internal/model"
)

// Bollinger returns middle, upper and lower bands (window SMA ± k population
// standard deviations) and the close's position within the bands.
func Bollinger(closes []float64, window int, k float64) (middle, upper, lower, position []model.Value) {
	n := len(closes)
	middle = SMASeries(closes, window)
	upper = make([]model.Value, n)
	lower = make([]model.Value, n)
	position = make([]model.Value, n)
	for i := range closes {
		mean, ok := middle[i].Get()
		if !ok {
			continue
		}
		sd := populationStdDev(closes[i-window+1:i+1], mean)
		up := mean + k*sd
		lo := mean - k*sd
		upper[i] = model.Some(up)
		lower[i] = model.Some(lo)
		position[i] = model.Some(RangePosition(closes[i], lo, up))
	}
	return middle, upper, lower, position
}

func populationStdDev(xs []float64, mean float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}
