package collector

import (
	"fmt"
	"math"
	"sort"

	"StockPulse/internal/model"
)

// Normalize sorts bars chronologically and keeps the last bar for any
// repeated timestamp.
func Normalize(bars []model.Bar) []model.Bar {
	if len(bars) == 0 {
		return bars
	}
	out := make([]model.Bar, len(bars))
	copy(out, bars)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	n := 0
	for i := range out {
		if n > 0 && out[i].Time.Equal(out[n-1].Time) {
			out[n-1] = out[i]
			continue
		}
		out[n] = out[i]
		n++
	}
	return out[:n]
}

// Validate rejects bars carrying non-finite or negative values.
func Validate(bars []model.Bar) error {
	for i, b := range bars {
		for _, v := range [...]float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("bar %d at %s has invalid value %v", i, b.Time.Format("2006-01-02 15:04"), v)
			}
		}
	}
	return nil
}

// AggregateBars merges each run of n consecutive bars into one. The
// trailing partial group is dropped. The merged bar takes the time of its
// last member.
func AggregateBars(bars []model.Bar, n int) []model.Bar {
	if n <= 1 {
		return bars
	}
	if len(bars) < n {
		return nil
	}
	out := make([]model.Bar, 0, len(bars)/n)
	for start := 0; start+n <= len(bars); start += n {
		group := bars[start : start+n]
		agg := model.Bar{
			Time: group[n-1].Time,
			Open: group[0].Open,
			High: group[0].High,
			Low:  group[0].Low,
		}
		for _, b := range group {
			if b.High > agg.High {
				agg.High = b.High
			}
			if b.Low < agg.Low {
				agg.Low = b.Low
			}
			agg.Volume += b.Volume
		}
		agg.Close = group[n-1].Close
		out = append(out, agg)
	}
	return out
}
