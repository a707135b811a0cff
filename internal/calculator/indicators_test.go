package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"StockPulse/internal/model"
)

func barsFromCloses(closes []float64) []model.Bar {
	bars := make([]model.Bar, len(closes))
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = model.Bar{
			Time:   t0.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: float64(1000 + 10*i),
		}
	}
	return bars
}

func linearCloses(n int, start, step float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + float64(i)*step
	}
	return closes
}

func TestSMASeries_AbsentBeforeWindow(t *testing.T) {
	col := SMASeries([]float64{1, 2, 3, 4, 5, 6}, 5)
	for i := 0; i < 4; i++ {
		if col[i].Valid {
			t.Errorf("bar %d: expected absent, got %v", i, col[i].Float64)
		}
	}
	if v, ok := col[4].Get(); !ok || v != 3 {
		t.Errorf("bar 4: expected 3, got %v ok=%v", v, ok)
	}
	if v, ok := col[5].Get(); !ok || v != 4 {
		t.Errorf("bar 5: expected 4, got %v ok=%v", v, ok)
	}
}

func TestEMASeries_SeededWithFirstValue(t *testing.T) {
	col := EMASeries(valuesOf([]float64{10, 20, 30}), 3) // alpha 0.5
	want := []float64{10, 15, 22.5}
	for i, w := range want {
		if v, ok := col[i].Get(); !ok || math.Abs(v-w) > 1e-12 {
			t.Errorf("bar %d: expected %v, got %v", i, w, v)
		}
	}
}

func TestRSISeries(t *testing.T) {
	rising := RSISeries(linearCloses(30, 100, 1), RSIPeriod)
	if rising[RSIPeriod-1].Valid {
		t.Error("expected RSI absent before the window fills")
	}
	for i := RSIPeriod; i < len(rising); i++ {
		if v, ok := rising[i].Get(); !ok || v != 100 {
			t.Fatalf("bar %d: expected exactly 100 with no losses, got %v", i, v)
		}
	}

	flat := RSISeries(linearCloses(20, 100, 0), RSIPeriod)
	if v, _ := flat[19].Get(); v != 50 {
		t.Errorf("expected 50 on flat prices, got %v", v)
	}

	falling := RSISeries(linearCloses(20, 100, -1), RSIPeriod)
	if v, _ := falling[19].Get(); v != 0 {
		t.Errorf("expected 0 with no gains, got %v", v)
	}

	mixed := []float64{44, 44.3, 44.1, 44.5, 43.9, 44.6, 45.1, 45.4, 45.2, 45.8, 46.0, 45.7, 46.3, 46.1, 46.5, 46.2}
	col := RSISeries(mixed, RSIPeriod)
	for i, v := range col {
		if x, ok := v.Get(); ok && (x < 0 || x > 100) {
			t.Errorf("bar %d: RSI %v out of range", i, x)
		}
	}
}

func TestBollinger_FlatPricesNeutralPosition(t *testing.T) {
	_, upper, lower, pos := Bollinger(linearCloses(25, 10, 0), BollingerWindow, BollingerK)
	u, _ := upper[24].Get()
	l, _ := lower[24].Get()
	if u != l {
		t.Fatalf("expected collapsed bands, got %v/%v", u, l)
	}
	if p, ok := pos[24].Get(); !ok || p != 0.5 {
		t.Errorf("expected neutral 0.5, got %v ok=%v", p, ok)
	}
	if pos[18].Valid {
		t.Error("expected position absent before the window fills")
	}
}

func TestBollinger_PopulationStdDev(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		if i%2 == 0 {
			closes[i] = 9
		} else {
			closes[i] = 11
		}
	}
	mid, upper, _, _ := Bollinger(closes, 20, 2)
	m, _ := mid[19].Get()
	u, _ := upper[19].Get()
	if m != 10 || math.Abs(u-12) > 1e-12 {
		t.Errorf("expected middle 10 and upper 12, got %v/%v", m, u)
	}
}

func TestStochastic(t *testing.T) {
	bars := barsFromCloses(linearCloses(20, 100, 1))
	k, d := Stochastic(bars, StochKWindow, StochDWindow)
	if k[12].Valid {
		t.Error("expected %K absent before 14 bars")
	}
	// window 106..119: low 105, high 120, close 119
	want := 100 * (119.0 - 105.0) / (120.0 - 105.0)
	if v, _ := k[19].Get(); math.Abs(v-want) > 1e-9 {
		t.Errorf("expected %%K %.4f, got %.4f", want, v)
	}
	if d[14].Valid {
		t.Error("expected %D absent until three %K values exist")
	}
	if !d[15].Valid {
		t.Error("expected %D on the third %K value")
	}
}

func TestVolumeRatio_ZeroAverageIsAbsent(t *testing.T) {
	bars := barsFromCloses(linearCloses(6, 10, 0))
	for i := range bars {
		bars[i].Volume = 0
	}
	_, ratio := VolumeRatio(bars, VolumeWindow)
	if ratio[5].Valid {
		t.Error("expected absent ratio with zero average volume")
	}
}

func TestAnnotate(t *testing.T) {
	s := &model.Series{Symbol: "sh600519", PeriodDays: 60, Bars: barsFromCloses(linearCloses(60, 100, 1))}
	out, err := Annotate(s)
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if s.Indicators != nil {
		t.Error("input series must not be modified")
	}
	if out.Len() != s.Len() {
		t.Fatalf("expected %d bars, got %d", s.Len(), out.Len())
	}
	ind := out.Indicators
	cols := map[string][]model.Value{
		"MA60": ind.MA60, "RSI": ind.RSI, "BBPosition": ind.BBPosition, "K": ind.K, "D": ind.D, "VolumeRatio": ind.VolumeRatio,
	}
	for name, col := range cols {
		if len(col) != out.Len() {
			t.Errorf("%s: expected %d values, got %d", name, out.Len(), len(col))
		}
		if !col[out.Len()-1].Valid {
			t.Errorf("%s: expected value on the latest bar", name)
		}
	}
	if ind.MA60[58].Valid {
		t.Error("MA60 must be absent before 60 bars")
	}
}

func TestAnnotate_InsufficientHistory(t *testing.T) {
	s := &model.Series{Symbol: "X", Bars: barsFromCloses(linearCloses(29, 100, 1))}
	if _, err := Annotate(s); !errors.Is(err, ErrInsufficientBars) {
		t.Errorf("expected ErrInsufficientBars, got %v", err)
	}
}
