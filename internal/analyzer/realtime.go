package analyzer

import (
	"context"
	"log"
	"time"

	"StockPulse/internal/calculator"
	"StockPulse/internal/collector"
	"StockPulse/internal/model"
	"StockPulse/internal/strategy"
)

const (
	IntradayFrequency = "5min"
	MinuteFrequency   = "1min"
	DetailFrequency   = "2min"

	// DefaultRealtimeMinutes is the intraday window used when none is given.
	DefaultRealtimeMinutes = 30

	volumeSurgeRatio = 1.5
	overboughtRSI    = 80
	oversoldRSI      = 20
	buySignalBonus   = 5
	sellSignalCost   = 3
)

// AnalyzeRealtime overlays intraday signals on the daily verdict. Without
// intraday bars the result only carries Error.
func (a *Analyzer) AnalyzeRealtime(ctx context.Context, symbol string, minutes int) *model.RealtimeResult {
	if minutes <= 0 {
		minutes = DefaultRealtimeMinutes
	}
	now := a.now()
	res := &model.RealtimeResult{
		Symbol:    symbol,
		Timestamp: now,
		Bias:      neutralBias(),
	}

	bars, err := a.Source.IntradayBars(ctx, symbol, IntradayFrequency, minutes)
	if err != nil || len(bars) == 0 {
		log.Printf("[WARN] AnalyzeRealtime %s: %v", symbol, err)
		res.Error = "intraday data unavailable"
		return res
	}
	res.Intraday = Snapshot(IntradayFrequency, bars, now)

	if daily := a.Analyze(ctx, symbol, a.PeriodDays); daily.Success {
		res.Daily = daily
	}
	res.Bias = Bias(symbol, bars, res.Daily)
	if res.Daily != nil {
		combined := res.Daily.Confidence +
			float64(buySignalBonus*len(res.Bias.BuySignals)) -
			float64(sellSignalCost*len(res.Bias.SellSignals))
		res.CombinedConfidence = min(max(combined, 0), 100)
	}
	return res
}

// Detail pairs one-minute bars into two-minute bars and bundles them with
// the daily and realtime views.
func (a *Analyzer) Detail(ctx context.Context, symbol string, minutes int) *model.DetailResult {
	if minutes <= 0 {
		minutes = DefaultRealtimeMinutes
	}
	now := a.now()
	res := &model.DetailResult{Symbol: symbol, Timestamp: now}

	bars, err := a.Source.IntradayBars(ctx, symbol, MinuteFrequency, 2*minutes+10)
	if err != nil || len(bars) == 0 {
		log.Printf("[WARN] Detail %s: %v", symbol, err)
		res.Error = "minute data unavailable"
		return res
	}
	pairs := collector.AggregateBars(bars, 2)
	if keep := minutes / 2; keep > 0 && len(pairs) > keep {
		pairs = pairs[len(pairs)-keep:]
	}
	if len(pairs) > 0 {
		res.TwoMinute = Snapshot(DetailFrequency, pairs, now)
	}

	if daily := a.Analyze(ctx, symbol, a.PeriodDays); daily.Success {
		res.Daily = daily
	}
	res.Realtime = a.AnalyzeRealtime(ctx, symbol, minutes)
	return res
}

// Snapshot summarizes intraday bars as of now. bars must not be empty.
func Snapshot(frequency string, bars []model.Bar, now time.Time) *model.IntradaySnapshot {
	last := bars[len(bars)-1]
	delay := now.Sub(last.Time).Seconds()
	if delay < 0 {
		delay = 0
	}
	return &model.IntradaySnapshot{
		Frequency:    frequency,
		Count:        len(bars),
		DelaySeconds: delay,
		LatestTime:   last.Time,
		Bars:         bars,
		Summary:      Summarize(bars),
	}
}

// Summarize computes the intraday summary. High, low and average are over
// closes.
func Summarize(bars []model.Bar) model.IntradaySummary {
	if len(bars) == 0 {
		return model.IntradaySummary{}
	}
	last := bars[len(bars)-1]
	sum := model.IntradaySummary{
		LatestPrice:  last.Close,
		LatestChange: last.Close - last.Open,
		LatestVolume: last.Volume,
		High:         last.Close,
		Low:          last.Close,
	}
	if last.Open > 0 {
		sum.LatestChangePct = (last.Close - last.Open) / last.Open * 100
	}

	var closeSum float64
	for _, b := range bars {
		closeSum += b.Close
		sum.TotalVolume += b.Volume
		sum.High = max(sum.High, b.Close)
		sum.Low = min(sum.Low, b.Close)
	}
	n := float64(len(bars))
	sum.AvgPrice = closeSum / n
	sum.AvgVolume = sum.TotalVolume / n
	sum.ShortTrend = shortTrend(bars)
	return sum
}

func shortTrend(bars []model.Bar) string {
	if len(bars) < 3 {
		return ""
	}
	a, b, c := bars[len(bars)-3].Close, bars[len(bars)-2].Close, bars[len(bars)-1].Close
	switch {
	case a < b && b < c:
		return "up"
	case a > b && b > c:
		return "down"
	}
	return "sideways"
}

func neutralBias() model.ShortTermBias {
	return model.ShortTermBias{
		BuySignals:  []string{},
		SellSignals: []string{},
		Warnings:    []string{},
		Overall:     model.ActionHold,
	}
}

// Bias derives short-term signals from intraday bars and blends them with
// the daily action. A nil daily result always yields HOLD.
func Bias(symbol string, bars []model.Bar, daily *model.AnalysisResult) model.ShortTermBias {
	bias := neutralBias()
	if len(bars) < 3 {
		return bias
	}

	last, prev := bars[len(bars)-1], bars[len(bars)-2]
	if last.Volume > volumeSurgeRatio*prev.Volume && last.Open > 0 {
		switch {
		case last.Close > last.Open:
			bias.BuySignals = append(bias.BuySignals, "volume surge up")
		case last.Close < last.Open:
			bias.SellSignals = append(bias.SellSignals, "volume surge down")
		}
	}

	if len(bars) >= calculator.MinBars {
		if s, err := calculator.AnnotateBars(symbol, bars); err == nil {
			snap := s.Snapshot()
			l, p := snap.Latest, snap.Previous
			if strategy.CrossedAbove(p.MACD, p.MACDSignal, l.MACD, l.MACDSignal) {
				bias.BuySignals = append(bias.BuySignals, "intraday MACD golden cross")
			}
			if strategy.CrossedBelow(p.MACD, p.MACDSignal, l.MACD, l.MACDSignal) {
				bias.SellSignals = append(bias.SellSignals, "intraday MACD death cross")
			}
			if rsi, ok := l.RSI.Get(); ok {
				switch {
				case rsi > overboughtRSI:
					bias.Warnings = append(bias.Warnings, "intraday overbought")
				case rsi < oversoldRSI:
					bias.Warnings = append(bias.Warnings, "intraday oversold")
				}
			}
		}
	}

	if daily != nil {
		switch {
		case daily.Tier.Action == model.ActionBuy && len(bias.BuySignals) > 0:
			bias.Overall = model.ActionBuy
		case daily.Tier.Action == model.ActionSell && len(bias.SellSignals) > 0:
			bias.Overall = model.ActionSell
		}
	}
	return bias
}
