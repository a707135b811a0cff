package strategy

import (
	"fmt"

	"StockPulse/internal/model"
)

// Category names in evaluation order.
const (
	CategoryTrend       = "trend"
	CategoryMomentum    = "momentum"
	CategoryVolume      = "volume"
	CategoryOscillators = "oscillators"
	CategoryPatterns    = "patterns"
)

// Scoring thresholds.
const (
	slopeLookback     = 5
	slopeThresholdPct = 1.0
	rsiOversold       = 30.0
	rsiOverbought     = 70.0
	volumeSurge       = 1.5
	kOversold         = 20.0
	bbLowerZone       = 0.3
	bbUpperZone       = 0.7
)

type scorer struct {
	cat model.SignalCategory
}

func newScorer(name string) *scorer {
	return &scorer{cat: model.SignalCategory{Name: name, Reasons: []string{}}}
}

func (s *scorer) add(points int, reason string) {
	s.cat.Score += points
	s.cat.Reasons = append(s.cat.Reasons, reason)
}

// greater reports a > b, false when either is absent.
func greater(a, b model.Value) bool {
	x, ok1 := a.Get()
	y, ok2 := b.Get()
	return ok1 && ok2 && x > y
}

// CrossedAbove reports a strict upward crossing of line over signal between
// the previous and latest bar.
func CrossedAbove(prevLine, prevSignal, line, signal model.Value) bool {
	pl, ok1 := prevLine.Get()
	ps, ok2 := prevSignal.Get()
	l, ok3 := line.Get()
	s, ok4 := signal.Get()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false
	}
	return pl <= ps && l > s
}

// CrossedBelow is the downward counterpart of CrossedAbove.
func CrossedBelow(prevLine, prevSignal, line, signal model.Value) bool {
	pl, ok1 := prevLine.Get()
	ps, ok2 := prevSignal.Get()
	l, ok3 := line.Get()
	s, ok4 := signal.Get()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false
	}
	return pl >= ps && l < s
}

// scoreTrend scores price versus MA20, MA alignment and MA5 slope.
func scoreTrend(s *model.Series) model.SignalCategory {
	sc := newScorer(CategoryTrend)
	n := s.Len()
	latest := s.Latest()
	cur := s.Indicators.At(n - 1)

	if ma20, ok := cur.MA20.Get(); ok && latest.Close > ma20 {
		sc.add(15, "price above MA20")
	}
	if greater(cur.MA5, cur.MA10) && greater(cur.MA10, cur.MA20) {
		sc.add(10, "MA5 > MA10 > MA20 bullish alignment")
	}

	ma5, ok1 := cur.MA5.Get()
	base, ok2 := s.Indicators.At(n - 1 - slopeLookback).MA5.Get()
	if ok1 && ok2 && base != 0 {
		slope := (ma5 - base) / base * 100
		if slope > slopeThresholdPct {
			sc.add(10, fmt.Sprintf("MA5 up %.1f%% over %d bars", slope, slopeLookback))
		}
	}
	return sc.cat
}

// scoreMomentum scores RSI zone and MACD crossing or position.
func scoreMomentum(s *model.Series) model.SignalCategory {
	sc := newScorer(CategoryMomentum)
	n := s.Len()
	cur := s.Indicators.At(n - 1)
	prev := s.Indicators.At(n - 2)

	if rsi, ok := cur.RSI.Get(); ok {
		switch {
		case rsi > rsiOversold && rsi < rsiOverbought:
			sc.add(10, "RSI in healthy range")
		case rsi < rsiOversold:
			sc.add(20, "RSI oversold")
		}
	}

	if CrossedAbove(prev.MACD, prev.MACDSignal, cur.MACD, cur.MACDSignal) {
		sc.add(15, "MACD golden cross")
	} else if macd, ok := cur.MACD.Get(); ok && macd > 0 {
		sc.add(15, "MACD above zero")
	}
	return sc.cat
}

// scoreVolume scores volume expansion and price/volume agreement.
func scoreVolume(s *model.Series) model.SignalCategory {
	sc := newScorer(CategoryVolume)
	n := s.Len()
	latest, prevBar := s.Latest(), s.Previous()
	cur := s.Indicators.At(n - 1)

	if ratio, ok := cur.VolumeRatio.Get(); ok && ratio > volumeSurge {
		sc.add(20, "volume expanding")
	}
	if latest.Close > prevBar.Close && latest.Volume > prevBar.Volume {
		sc.add(15, "price and volume rising together")
	}
	if avg, ok := cur.VolumeMA5.Get(); ok && latest.Volume > avg {
		sc.add(10, "volume above 5-bar average")
	}
	return sc.cat
}

// scoreOscillators scores the stochastic and Bollinger position.
func scoreOscillators(s *model.Series) model.SignalCategory {
	sc := newScorer(CategoryOscillators)
	cur := s.Indicators.At(s.Len() - 1)

	if k, ok := cur.K.Get(); ok && k < kOversold {
		sc.add(15, "K oversold")
	} else if greater(cur.K, cur.D) {
		sc.add(10, "K above D")
	}

	if pos, ok := cur.BBPosition.Get(); ok {
		switch {
		case pos < bbLowerZone:
			sc.add(10, "near lower Bollinger band")
		case pos > bbUpperZone:
			sc.add(5, "near upper Bollinger band")
		}
	}
	return sc.cat
}

// scorePatterns scores candle patterns over the last bars.
func scorePatterns(s *model.Series) model.SignalCategory {
	sc := newScorer(CategoryPatterns)
	n := s.Len()
	if IsHammer(s.Bars[n-1]) {
		sc.add(10, "hammer")
	}
	if n >= 3 && IsMorningStar(s.Bars[n-3], s.Bars[n-2], s.Bars[n-1]) {
		sc.add(10, "morning star")
	}
	return sc.cat
}
