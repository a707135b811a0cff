package calculator

import (
	"errors"
	"math"
	"testing"

	"StockPulse/internal/model"
)

func TestCalculateRisk_ZeroVarianceThenZeroClose(t *testing.T) {
	closes := append(linearCloses(19, 10, 0), 0)
	risk, err := CalculateRisk(closes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if risk.SharpeRatio != 0 {
		t.Errorf("expected Sharpe fallback 0, got %v", risk.SharpeRatio)
	}
	if math.IsNaN(risk.VolatilityPct) || math.IsInf(risk.VolatilityPct, 0) {
		t.Errorf("expected finite volatility, got %v", risk.VolatilityPct)
	}
}

func TestCalculateRisk_InsufficientBars(t *testing.T) {
	if _, err := CalculateRisk(linearCloses(19, 10, 1)); !errors.Is(err, ErrInsufficientBars) {
		t.Errorf("expected ErrInsufficientBars, got %v", err)
	}
}

func TestCalculateRisk_Drawdown(t *testing.T) {
	closes := []float64{100, 110, 121, 96.8, 100, 105, 110, 115, 120, 125,
		126, 127, 128, 129, 130, 131, 132, 133, 134, 135}
	risk, err := CalculateRisk(closes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// peak 121 -> trough 96.8 is -20%
	if math.Abs(risk.MaxDrawdownPct-20) > 1e-9 {
		t.Errorf("expected 20%% drawdown, got %v", risk.MaxDrawdownPct)
	}
	if risk.SharpeRatio <= 0 {
		t.Errorf("expected positive Sharpe for a rising series, got %v", risk.SharpeRatio)
	}
	if !risk.Available {
		t.Error("expected metrics to be available")
	}
}

func TestCalculateRisk_Levels(t *testing.T) {
	tests := []struct {
		swing float64
		want  model.RiskLevel
	}{
		{0.001, model.RiskLow},
		{0.02, model.RiskMedium},
		{0.05, model.RiskHigh},
	}
	for _, tt := range tests {
		closes := make([]float64, 40)
		for i := range closes {
			if i%2 == 0 {
				closes[i] = 100
			} else {
				closes[i] = 100 * (1 + tt.swing)
			}
		}
		risk, err := CalculateRisk(closes)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if risk.Level != tt.want {
			t.Errorf("swing %.3f: expected %s, got %s (vol=%.2f)", tt.swing, tt.want, risk.Level, risk.VolatilityPct)
		}
	}
}

func TestReturns_NonPositiveCloseIsAbsent(t *testing.T) {
	r := Returns([]float64{10, 0, 10, 11})
	if r[0].Valid || r[1].Valid || r[2].Valid {
		t.Error("expected absent returns around a zero close")
	}
	if v, ok := r[3].Get(); !ok || math.Abs(v-0.1) > 1e-12 {
		t.Errorf("expected 0.1, got %v", v)
	}
}
