package calculator

import (
	"errors"

	"StockPulse/internal/model"
)

// ErrInsufficientBars is returned when a series is shorter than a calculation needs.
var ErrInsufficientBars = errors.New("not enough bars")

// SMASeries returns the rolling simple moving average over window. Bars
// before the window fills are absent.
func SMASeries(values []float64, window int) []model.Value {
	out := make([]model.Value, len(values))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			sum += values[j]
		}
		out[i] = model.Some(sum / float64(window))
	}
	return out
}

// SMAOfValues is SMASeries over a column that may contain absent values.
// A window containing any absent value yields an absent result.
func SMAOfValues(values []model.Value, window int) []model.Value {
	out := make([]model.Value, len(values))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		ok := true
		for j := i - window + 1; j <= i; j++ {
			v, valid := values[j].Get()
			if !valid {
				ok = false
				break
			}
			sum += v
		}
		if ok {
			out[i] = model.Some(sum / float64(window))
		}
	}
	return out
}

// EMASeries computes an exponential moving average with alpha = 2/(span+1),
// seeded with the first available value and without bias adjustment.
func EMASeries(values []model.Value, span int) []model.Value {
	out := make([]model.Value, len(values))
	if span <= 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	var prev float64
	seeded := false
	for i, v := range values {
		x, ok := v.Get()
		if !ok {
			if seeded {
				out[i] = model.Some(prev)
			}
			continue
		}
		if !seeded {
			prev = x
			seeded = true
		} else {
			prev = alpha*x + (1-alpha)*prev
		}
		out[i] = model.Some(prev)
	}
	return out
}

// MACD returns EMA12, EMA26, MACD line, signal line and histogram columns.
func MACD(closes []float64) (ema12, ema26, macd, signal, hist []model.Value) {
	in := valuesOf(closes)
	ema12 = EMASeries(in, 12)
	ema26 = EMASeries(in, 26)
	macd = make([]model.Value, len(closes))
	for i := range closes {
		fast, ok1 := ema12[i].Get()
		slow, ok2 := ema26[i].Get()
		if ok1 && ok2 {
			macd[i] = model.Some(fast - slow)
		}
	}
	signal = EMASeries(macd, 9)
	hist = make([]model.Value, len(closes))
	for i := range closes {
		m, ok1 := macd[i].Get()
		s, ok2 := signal[i].Get()
		if ok1 && ok2 {
			hist[i] = model.Some(m - s)
		}
	}
	return ema12, ema26, macd, signal, hist
}

func valuesOf(xs []float64) []model.Value {
	out := make([]model.Value, len(xs))
	for i, x := range xs {
		out[i] = model.Some(x)
	}
	return out
}

func extractCloses(bars []model.Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
