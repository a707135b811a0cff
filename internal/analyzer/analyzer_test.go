package analyzer

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/cache"
	"StockPulse/internal/collector"
	"StockPulse/internal/model"
)

var fixedNow = time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC)

func risingBars(n int, step time.Duration, end time.Time) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		p := 100 + float64(i)
		bars[i] = model.Bar{
			Time:   end.Add(-time.Duration(n-1-i) * step),
			Open:   p - 0.5,
			High:   p + 0.5,
			Low:    p - 1,
			Close:  p,
			Volume: 1000 + 10*float64(i),
		}
	}
	return bars
}

func newTestAnalyzer(f *collector.MockFetcher) *Analyzer {
	c := collector.NewCollector(f, cache.NewMemory(time.Minute), time.Second)
	a := New(c)
	a.Now = func() time.Time { return fixedNow }
	return a
}

func TestAnalyzeRisingSeries(t *testing.T) {
	f := &collector.MockFetcher{Daily: map[string][]model.Bar{
		"sh600000": risingBars(60, 24*time.Hour, fixedNow),
	}}
	res := newTestAnalyzer(f).Analyze(context.Background(), "sh600000", 60)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, 159.0, res.CurrentPrice)
	assert.InDelta(t, 1.0/158*100, res.PriceChangePct, 1e-9)
	assert.GreaterOrEqual(t, res.Confidence, 0.0)
	assert.LessOrEqual(t, res.Confidence, 100.0)
	require.Len(t, res.Categories, 5)
	assert.GreaterOrEqual(t, res.Categories[0].Score, 25)
	assert.LessOrEqual(t, len(res.TopReasons), 5)
	assert.True(t, res.Risk.Available)
	assert.True(t, res.Indicators.Latest.MA5.Valid)
	assert.True(t, fixedNow.Equal(res.Timestamp))
}

func TestAnalyzeInsufficientHistory(t *testing.T) {
	f := &collector.MockFetcher{Daily: map[string][]model.Bar{
		"short": risingBars(29, 24*time.Hour, fixedNow),
	}}
	a := newTestAnalyzer(f)

	res := a.Analyze(context.Background(), "short", 120)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	assert.Zero(t, res.Confidence)
	assert.Empty(t, res.Categories)

	_, err := a.Run(context.Background(), "short", 120)
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestAnalyzeDataUnavailable(t *testing.T) {
	f := &collector.MockFetcher{
		Daily:  map[string][]model.Bar{"empty": {}},
		Errors: map[string]error{"down": errors.New("connection refused")},
	}
	a := newTestAnalyzer(f)

	for _, symbol := range []string{"empty", "down"} {
		_, err := a.Run(context.Background(), symbol, 120)
		assert.ErrorIs(t, err, ErrDataUnavailable, symbol)
		assert.False(t, a.Analyze(context.Background(), symbol, 120).Success)
	}
}

func TestAnalyzeInvalidBarsIsDataUnavailable(t *testing.T) {
	bars := risingBars(40, 24*time.Hour, fixedNow)
	bars[10].High = -5
	a := newTestAnalyzer(&collector.MockFetcher{Daily: map[string][]model.Bar{"bad": bars}})

	_, err := a.Run(context.Background(), "bad", 40)
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.ErrorIs(t, err, collector.ErrInvalidBars)
	assert.NotErrorIs(t, err, ErrComputation)
	assert.False(t, a.Analyze(context.Background(), "bad", 40).Success)
}

func TestEvaluateNonFiniteIsComputationError(t *testing.T) {
	a := New(nil)
	bars := risingBars(40, 24*time.Hour, fixedNow)
	bars[20].Close = math.Inf(1)
	s := &model.Series{Symbol: "inf", PeriodDays: 40, Bars: bars}

	_, err := a.Evaluate(s)
	assert.ErrorIs(t, err, ErrComputation)
	assert.NotErrorIs(t, err, ErrDataUnavailable)
}

func TestEvaluateDeterministic(t *testing.T) {
	a := New(nil)
	a.Now = func() time.Time { return fixedNow }
	s := &model.Series{Symbol: "X", PeriodDays: 60, Bars: risingBars(60, 24*time.Hour, fixedNow)}

	first, err := a.Evaluate(s)
	require.NoError(t, err)
	second, err := a.Evaluate(s)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEvaluateZeroCloseDoesNotFail(t *testing.T) {
	bars := make([]model.Bar, 40)
	for i := range bars {
		bars[i] = model.Bar{Time: fixedNow.AddDate(0, 0, i-40), Open: 10, High: 10, Low: 10, Close: 10, Volume: 100}
	}
	bars[39] = model.Bar{Time: fixedNow, Open: 10, High: 10, Low: 0, Close: 0, Volume: 100}

	a := New(nil)
	res, err := a.Evaluate(&model.Series{Symbol: "Z", Bars: bars})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 0.0, res.Risk.SharpeRatio)
}

func TestSummarize(t *testing.T) {
	bars := []model.Bar{
		{Open: 10, Close: 10.2, Volume: 100},
		{Open: 10.2, Close: 10.4, Volume: 200},
		{Open: 10.4, Close: 10.8, Volume: 600},
	}
	sum := Summarize(bars)
	assert.Equal(t, 10.8, sum.LatestPrice)
	assert.InDelta(t, 0.4, sum.LatestChange, 1e-9)
	assert.InDelta(t, 0.4/10.4*100, sum.LatestChangePct, 1e-9)
	assert.Equal(t, 10.8, sum.High)
	assert.Equal(t, 10.2, sum.Low)
	assert.InDelta(t, 10.466666, sum.AvgPrice, 1e-5)
	assert.Equal(t, 900.0, sum.TotalVolume)
	assert.Equal(t, 300.0, sum.AvgVolume)
	assert.Equal(t, "up", sum.ShortTrend)

	assert.Equal(t, "", Summarize(bars[:2]).ShortTrend)
	bars[2].Close = 10.3
	assert.Equal(t, "sideways", Summarize(bars).ShortTrend)
}

func TestBiasVolumeSurge(t *testing.T) {
	buy := &model.AnalysisResult{Success: true, Tier: model.Tier{Action: model.ActionBuy}}
	sell := &model.AnalysisResult{Success: true, Tier: model.Tier{Action: model.ActionSell}}
	up := []model.Bar{
		{Open: 10, Close: 10, Volume: 100},
		{Open: 10, Close: 10, Volume: 100},
		{Open: 10, Close: 10.5, Volume: 200},
	}
	b := Bias("X", up, buy)
	assert.Equal(t, []string{"volume surge up"}, b.BuySignals)
	assert.Equal(t, model.ActionBuy, b.Overall)

	assert.Equal(t, model.ActionHold, Bias("X", up, sell).Overall)
	assert.Equal(t, model.ActionHold, Bias("X", up, nil).Overall)

	down := append([]model.Bar(nil), up...)
	down[2].Close = 9.5
	b = Bias("X", down, sell)
	assert.Equal(t, []string{"volume surge down"}, b.SellSignals)
	assert.Equal(t, model.ActionSell, b.Overall)

	short := Bias("X", up[:2], buy)
	assert.Empty(t, short.BuySignals)
	assert.Equal(t, model.ActionHold, short.Overall)
}

func TestBiasIntradayOverbought(t *testing.T) {
	bars := risingBars(40, 5*time.Minute, fixedNow)
	b := Bias("X", bars, nil)
	assert.Contains(t, b.Warnings, "intraday overbought")
}

func TestAnalyzeRealtime(t *testing.T) {
	intraday := risingBars(30, 5*time.Minute, fixedNow.Add(-time.Minute))
	intraday[29].Volume = 5000
	f := &collector.MockFetcher{
		Daily:    map[string][]model.Bar{"sh600000": risingBars(120, 24*time.Hour, fixedNow)},
		Intraday: map[string][]model.Bar{"sh600000": intraday},
	}
	res := newTestAnalyzer(f).AnalyzeRealtime(context.Background(), "sh600000", 30)

	require.Empty(t, res.Error)
	require.NotNil(t, res.Intraday)
	assert.Equal(t, 30, res.Intraday.Count)
	assert.Equal(t, 60.0, res.Intraday.DelaySeconds)
	require.NotNil(t, res.Daily)
	assert.Contains(t, res.Bias.BuySignals, "volume surge up")
	want := min(max(res.Daily.Confidence+float64(5*len(res.Bias.BuySignals)-3*len(res.Bias.SellSignals)), 0), 100)
	assert.Equal(t, want, res.CombinedConfidence)
}

func TestAnalyzeRealtimeNoIntraday(t *testing.T) {
	f := &collector.MockFetcher{Intraday: map[string][]model.Bar{"X": {}}}
	res := newTestAnalyzer(f).AnalyzeRealtime(context.Background(), "X", 30)

	assert.Equal(t, "intraday data unavailable", res.Error)
	assert.Nil(t, res.Intraday)
	assert.Nil(t, res.Daily)
	assert.Equal(t, model.ActionHold, res.Bias.Overall)
}

func TestDetailPairsMinuteBars(t *testing.T) {
	minute := risingBars(71, time.Minute, fixedNow)
	f := &collector.MockFetcher{
		Daily:    map[string][]model.Bar{"X": risingBars(120, 24*time.Hour, fixedNow)},
		Intraday: map[string][]model.Bar{"X": minute},
	}
	res := newTestAnalyzer(f).Detail(context.Background(), "X", 30)

	require.Empty(t, res.Error)
	require.NotNil(t, res.TwoMinute)
	assert.Equal(t, 15, res.TwoMinute.Count)
	assert.Equal(t, DetailFrequency, res.TwoMinute.Frequency)
	last := res.TwoMinute.Bars[14]
	assert.Equal(t, minute[70].Close, last.Close)
	assert.Equal(t, minute[69].Open, last.Open)
	assert.NotNil(t, res.Daily)
	assert.NotNil(t, res.Realtime)
}
