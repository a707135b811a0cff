package strategy

import (
	"testing"
	"time"

	"StockPulse/internal/calculator"
	"StockPulse/internal/model"
)

func linearSeries(n int, start, step float64) *model.Series {
	bars := make([]model.Bar, n)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		c := start + float64(i)*step
		bars[i] = model.Bar{
			Time:   t0.AddDate(0, 0, i),
			Open:   c - step/2,
			High:   c + 0.5,
			Low:    c - 0.5 - step/2,
			Close:  c,
			Volume: 1000000,
		}
	}
	return &model.Series{Symbol: "TEST", PeriodDays: n, Bars: bars}
}

func annotate(t *testing.T, s *model.Series) *model.Series {
	t.Helper()
	out, err := calculator.Annotate(s)
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	return out
}

func findCategory(cats []model.SignalCategory, name string) model.SignalCategory {
	for _, c := range cats {
		if c.Name == name {
			return c
		}
	}
	return model.SignalCategory{}
}

func TestEvaluate_RisingMarket(t *testing.T) {
	s := annotate(t, linearSeries(60, 100, 1))
	sig, err := Evaluate(s)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(sig.Categories) != 5 {
		t.Fatalf("expected 5 categories, got %d", len(sig.Categories))
	}

	cur := s.Indicators.At(s.Len() - 1)
	if !greater(cur.MA5, cur.MA10) || !greater(cur.MA10, cur.MA20) {
		t.Errorf("expected MA5 > MA10 > MA20 on final bar, got %+v %+v %+v", cur.MA5, cur.MA10, cur.MA20)
	}

	trend := findCategory(sig.Categories, CategoryTrend)
	if trend.Score < 25 {
		t.Errorf("expected trend score >= 25, got %d (%v)", trend.Score, trend.Reasons)
	}
	if trend.Reasons[0] != "price above MA20" {
		t.Errorf("expected reasons in evaluation order, got %v", trend.Reasons)
	}
	if sig.Confidence < 0 || sig.Confidence > 100 {
		t.Errorf("confidence out of range: %.1f", sig.Confidence)
	}
	if len(sig.TopReasons) > MaxReasons {
		t.Errorf("expected at most %d reasons, got %d", MaxReasons, len(sig.TopReasons))
	}
}

func TestEvaluate_NotAnnotated(t *testing.T) {
	if _, err := Evaluate(linearSeries(40, 100, 1)); err != ErrNotAnnotated {
		t.Errorf("expected ErrNotAnnotated, got %v", err)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	s := annotate(t, linearSeries(80, 50, -0.3))
	a, _ := Evaluate(s)
	b, _ := Evaluate(s)
	if a.Confidence != b.Confidence || a.Tier != b.Tier || len(a.TopReasons) != len(b.TopReasons) {
		t.Errorf("expected identical verdicts, got %+v and %+v", a, b)
	}
}

func TestMapTier_AllBoundaries(t *testing.T) {
	tests := []struct {
		confidence float64
		label      string
		action     model.Action
	}{
		{100, "strong buy", model.ActionBuy},
		{75, "strong buy", model.ActionBuy},
		{74.9, "buy", model.ActionBuy},
		{60, "buy", model.ActionBuy},
		{59, "watch", model.ActionHold},
		{45, "watch", model.ActionHold},
		{44.9, "avoid", model.ActionSell},
		{0, "avoid", model.ActionSell},
	}
	for _, tt := range tests {
		tier := mapTier(tt.confidence)
		if tier.Label != tt.label || tier.Action != tt.action {
			t.Errorf("confidence %.1f: expected %q/%s, got %q/%s", tt.confidence, tt.label, tt.action, tier.Label, tier.Action)
		}
	}
}

func TestConfidence_CapsEachCategory(t *testing.T) {
	tests := []struct {
		scores []int
		want   float64
	}{
		{[]int{0, 0, 0, 0, 0}, 0},
		{[]int{45, 0, 0, 0, 0}, 30},
		{[]int{30, 30, 30, 30, 30}, 100},
		{[]int{25, 35, 10, 0, 20}, 85},
		{[]int{-5, 10, 0, 0, 0}, 10},
	}
	for _, tt := range tests {
		cats := make([]model.SignalCategory, len(tt.scores))
		for i, s := range tt.scores {
			cats[i] = model.SignalCategory{Score: s}
		}
		if got := Confidence(cats); got != tt.want {
			t.Errorf("scores %v: expected %.0f, got %.0f", tt.scores, tt.want, got)
		}
	}
}

func TestScoreMomentum_CrossingNotLevel(t *testing.T) {
	s := annotate(t, linearSeries(40, 100, 1))
	n := s.Len()

	// MACD above signal on both bars: no crossing, MACD > 0 branch.
	s.Indicators.MACD[n-2] = model.Some(1.2)
	s.Indicators.MACDSignal[n-2] = model.Some(1.0)
	s.Indicators.MACD[n-1] = model.Some(1.3)
	s.Indicators.MACDSignal[n-1] = model.Some(1.1)
	s.Indicators.RSI[n-1] = model.Some(80)
	cat := scoreMomentum(s)
	if cat.Score != 15 || cat.Reasons[0] != "MACD above zero" {
		t.Errorf("expected level branch only, got %d %v", cat.Score, cat.Reasons)
	}

	// Strict upward crossing.
	s.Indicators.MACD[n-2] = model.Some(-0.5)
	s.Indicators.MACDSignal[n-2] = model.Some(-0.5)
	s.Indicators.MACD[n-1] = model.Some(-0.1)
	s.Indicators.MACDSignal[n-1] = model.Some(-0.2)
	cat = scoreMomentum(s)
	if cat.Score != 15 || cat.Reasons[0] != "MACD golden cross" {
		t.Errorf("expected crossing, got %d %v", cat.Score, cat.Reasons)
	}

	// Oversold RSI bonus is exclusive with the healthy range.
	s.Indicators.RSI[n-1] = model.Some(25)
	cat = scoreMomentum(s)
	if cat.Score != 35 {
		t.Errorf("expected 20+15, got %d %v", cat.Score, cat.Reasons)
	}
}

func TestScore_AbsentValuesAreSkipped(t *testing.T) {
	s := annotate(t, linearSeries(40, 100, 1))
	n := s.Len()
	s.Indicators.MA20[n-1] = model.None
	s.Indicators.RSI[n-1] = model.None
	s.Indicators.K[n-1] = model.None
	s.Indicators.BBPosition[n-1] = model.None

	trend := scoreTrend(s)
	for _, r := range trend.Reasons {
		if r == "price above MA20" || r == "MA5 > MA10 > MA20 bullish alignment" {
			t.Errorf("absent MA20 must not satisfy %q", r)
		}
	}
	if osc := scoreOscillators(s); osc.Score != 0 {
		t.Errorf("expected no oscillator score with absent K and BB, got %d", osc.Score)
	}
}
