package notifier

import (
	"fmt"
	"html"
	"strings"

	"StockPulse/internal/model"
)

func actionIcon(a model.Action) string {
	switch a {
	case model.ActionBuy:
		return "🟢"
	case model.ActionSell:
		return "🔴"
	}
	return "🟡"
}

// FormatBatchReport formats a ranked batch run into a Telegram message.
func FormatBatchReport(res *model.BatchResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>StockPulse top picks</b> | %s\n", res.FinishedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Analyzed %d/%d, qualified %d (confidence ≥ %.0f)\n\n",
		res.Stats.Analyzed, res.Stats.Requested, res.Stats.Qualified, res.MinConfidence))

	if len(res.Results) == 0 {
		b.WriteString("No symbol reached the threshold today.")
		return b.String()
	}
	for i, r := range res.Results {
		b.WriteString(fmt.Sprintf("%d. %s <b>%s</b> %.2f (%+.2f%%)\n",
			i+1, actionIcon(r.Tier.Action), html.EscapeString(r.Symbol), r.CurrentPrice, r.PriceChangePct))
		b.WriteString(fmt.Sprintf("   confidence %.0f · %s · position %s\n",
			r.Confidence, html.EscapeString(r.Tier.Label), html.EscapeString(r.Tier.Position)))
		if len(r.TopReasons) > 0 {
			b.WriteString("   " + html.EscapeString(strings.Join(r.TopReasons, ", ")) + "\n")
		}
	}
	if res.Stats.Cancelled > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ run cancelled, %d symbols not analyzed", res.Stats.Cancelled))
	}
	return b.String()
}

// FormatAnalysis formats a single-symbol verdict.
func FormatAnalysis(res *model.AnalysisResult) string {
	var b strings.Builder
	symbol := html.EscapeString(res.Symbol)
	if !res.Success {
		b.WriteString(fmt.Sprintf("❌ <b>%s</b> analysis failed\n%s", symbol, html.EscapeString(res.Error)))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("%s <b>%s</b> | %s\n\n", actionIcon(res.Tier.Action), symbol, res.Timestamp.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Price: %.2f (%+.2f%%)\n", res.CurrentPrice, res.PriceChangePct))
	b.WriteString(fmt.Sprintf("Confidence: %.0f → <b>%s</b> (%s)\n", res.Confidence,
		html.EscapeString(res.Tier.Label), res.Tier.Action))
	b.WriteString(fmt.Sprintf("Position: %s\n\n", html.EscapeString(res.Tier.Position)))

	b.WriteString("📈 <b>Categories:</b>\n")
	for _, c := range res.Categories {
		b.WriteString(fmt.Sprintf("  %s: %d", c.Name, c.Score))
		if len(c.Reasons) > 0 {
			b.WriteString(" (" + html.EscapeString(strings.Join(c.Reasons, ", ")) + ")")
		}
		b.WriteString("\n")
	}

	l := res.Indicators.Latest
	b.WriteString("\n📐 <b>Indicators:</b>\n")
	b.WriteString(fmt.Sprintf("  MA5 %s | MA10 %s | MA20 %s\n", num(l.MA5), num(l.MA10), num(l.MA20)))
	b.WriteString(fmt.Sprintf("  RSI %s | MACD %s / %s\n", num(l.RSI), num(l.MACD), num(l.MACDSignal)))
	b.WriteString(fmt.Sprintf("  K %s | D %s | BB pos %s | Vol ratio %s\n", num(l.K), num(l.D), num(l.BBPosition), num(l.VolumeRatio)))

	if res.Risk.Available {
		b.WriteString(fmt.Sprintf("\n⚖️ Risk %s: vol %.1f%% · sharpe %.2f · max DD %.1f%%\n",
			res.Risk.Level, res.Risk.VolatilityPct, res.Risk.SharpeRatio, res.Risk.MaxDrawdownPct))
	}
	return b.String()
}

// FormatRealtime formats the realtime overlay.
func FormatRealtime(res *model.RealtimeResult) string {
	var b strings.Builder
	symbol := html.EscapeString(res.Symbol)
	if res.Error != "" {
		b.WriteString(fmt.Sprintf("❌ <b>%s</b> realtime: %s", symbol, html.EscapeString(res.Error)))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("⏱ <b>%s realtime</b> | %s\n\n", symbol, res.Timestamp.Format("15:04:05")))
	if in := res.Intraday; in != nil {
		s := in.Summary
		b.WriteString(fmt.Sprintf("Latest: %.2f (%+.2f%%) at %s, %d %s bars, delay %.0fs\n",
			s.LatestPrice, s.LatestChangePct, in.LatestTime.Format("15:04"), in.Count, in.Frequency, in.DelaySeconds))
		b.WriteString(fmt.Sprintf("Range: %.2f - %.2f · avg %.2f", s.Low, s.High, s.AvgPrice))
		if s.ShortTrend != "" {
			b.WriteString(" · trend " + s.ShortTrend)
		}
		b.WriteString("\n")
	}
	if res.Daily != nil {
		b.WriteString(fmt.Sprintf("Daily: %s (%.0f)\n", html.EscapeString(res.Daily.Tier.Label), res.Daily.Confidence))
	} else {
		b.WriteString("Daily: unavailable\n")
	}

	writeList(&b, "Buy signals", res.Bias.BuySignals)
	writeList(&b, "Sell signals", res.Bias.SellSignals)
	writeList(&b, "Warnings", res.Bias.Warnings)
	b.WriteString(fmt.Sprintf("\n%s Overall <b>%s</b> · combined confidence %.0f",
		actionIcon(res.Bias.Overall), res.Bias.Overall, res.CombinedConfidence))
	return b.String()
}

// FormatOverview formats a market overview.
func FormatOverview(ov *model.MarketOverview) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🌐 <b>Market overview</b> | %s\n\n", ov.Timestamp.Format("2006-01-02 15:04")))
	if len(ov.Indices) == 0 {
		b.WriteString("No index data available.")
		return b.String()
	}
	for _, idx := range ov.Indices {
		b.WriteString(fmt.Sprintf("%s %s %.2f (%+.2f%%) %s %.0f\n",
			actionIcon(idx.Action), html.EscapeString(idx.Symbol), idx.Price, idx.ChangePct,
			html.EscapeString(idx.Label), idx.Confidence))
	}
	b.WriteString(fmt.Sprintf("\nBuy %d · Hold %d · Sell %d → <b>%s</b>", ov.Buy, ov.Hold, ov.Sell, ov.Sentiment))
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("%s: %s\n", title, html.EscapeString(strings.Join(items, ", "))))
}

func num(v model.Value) string {
	if x, ok := v.Get(); ok {
		return fmt.Sprintf("%.2f", x)
	}
	return "n/a"
}

// FormatDetail formats the two-minute view followed by the realtime overlay.
func FormatDetail(res *model.DetailResult) string {
	var b strings.Builder
	symbol := html.EscapeString(res.Symbol)
	if res.Error != "" {
		b.WriteString(fmt.Sprintf("❌ <b>%s</b> detail: %s", symbol, html.EscapeString(res.Error)))
		return b.String()
	}
	if tm := res.TwoMinute; tm != nil {
		s := tm.Summary
		b.WriteString(fmt.Sprintf("🔍 <b>%s</b> %d × %s bars to %s\n", symbol, tm.Count, tm.Frequency, tm.LatestTime.Format("15:04")))
		b.WriteString(fmt.Sprintf("Last %.2f (%+.2f%%) · range %.2f - %.2f · volume %.0f\n", s.LatestPrice, s.LatestChangePct, s.Low, s.High, s.TotalVolume))
		start := max(len(tm.Bars)-5, 0)
		for _, bar := range tm.Bars[start:] {
			b.WriteString(fmt.Sprintf("  %s O %.2f H %.2f L %.2f C %.2f V %.0f\n",
				bar.Time.Format("15:04"), bar.Open, bar.High, bar.Low, bar.Close, bar.Volume))
		}
		b.WriteString("\n")
	}
	if res.Realtime != nil {
		b.WriteString(FormatRealtime(res.Realtime))
	}
	return b.String()
}
