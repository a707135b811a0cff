package calculator

import (
	"fmt"

	"StockPulse/internal/model"
)

// Indicator windows.
const (
	MinBars         = 30
	RSIPeriod       = 14
	BollingerWindow = 20
	BollingerK      = 2.0
	StochKWindow    = 14
	StochDWindow    = 3
	VolumeWindow    = 5
)

// Annotate computes every indicator column for the series and returns a
// copy carrying them. The input is not modified. Series shorter than
// MinBars are rejected with ErrInsufficientBars; no partial columns are produced.
func Annotate(s *model.Series) (*model.Series, error) {
	if s.Len() < MinBars {
		return nil, fmt.Errorf("annotate %s: %d bars, need %d: %w", s.Symbol, s.Len(), MinBars, ErrInsufficientBars)
	}
	closes := s.Closes()

	ind := &model.Indicators{}
	ind.Returns = Returns(closes)

	// Moving averages
	ind.MA5 = SMASeries(closes, 5)
	ind.MA10 = SMASeries(closes, 10)
	ind.MA20 = SMASeries(closes, 20)
	ind.MA30 = SMASeries(closes, 30)
	ind.MA60 = SMASeries(closes, 60)

	// MACD
	ind.EMA12, ind.EMA26, ind.MACD, ind.MACDSignal, ind.MACDHist = MACD(closes)

	// RSI
	ind.RSI = RSISeries(closes, RSIPeriod)

	// Bollinger
	ind.BBMiddle, ind.BBUpper, ind.BBLower, ind.BBPosition = Bollinger(closes, BollingerWindow, BollingerK)

	// KD
	ind.K, ind.D = Stochastic(s.Bars, StochKWindow, StochDWindow)

	// Volume
	ind.VolumeMA5, ind.VolumeRatio = VolumeRatio(s.Bars, VolumeWindow)

	out := *s
	out.Bars = append([]model.Bar(nil), s.Bars...)
	out.Indicators = ind
	return &out, nil
}

// AnnotateBars runs the engine on bars that do not belong to a cached series,
// such as intraday bars.
func AnnotateBars(symbol string, bars []model.Bar) (*model.Series, error) {
	return Annotate(&model.Series{Symbol: symbol, Bars: bars})
}
