package calculator

import "StockPulse/internal/model"

// VolumeRatio returns the window SMA of volume and volume divided by it.
// The ratio is absent where the average is absent or zero.
func VolumeRatio(bars []model.Bar, window int) (avg, ratio []model.Value) {
	vols := make([]float64, len(bars))
	for i, b := range bars {
		vols[i] = b.Volume
	}
	avg = SMASeries(vols, window)
	ratio = make([]model.Value, len(bars))
	for i := range bars {
		a, ok := avg[i].Get()
		if !ok || a == 0 {
			continue
		}
		ratio[i] = model.Some(vols[i] / a)
	}
	return avg, ratio
}
