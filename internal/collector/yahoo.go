package collector

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"StockPulse/internal/model"
)

const yahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart/"

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	http      *httpSource
	BaseURL   string
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string, requestsPerSecond float64) *YahooFetcher {
	return &YahooFetcher{
		http:    newHTTPSource(proxyURL, requestsPerSecond),
		BaseURL: yahooChartURL,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooSymbol maps internal codes to Yahoo tickers; A-share codes such as
// sh600519 become 600519.SS and sz000001 becomes 000001.SZ.
func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	lower := strings.ToLower(symbol)
	switch {
	case strings.HasPrefix(lower, "sh") && len(symbol) == 8:
		return symbol[2:] + ".SS"
	case strings.HasPrefix(lower, "sz") && len(symbol) == 8:
		return symbol[2:] + ".SZ"
	}
	return symbol
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol, interval, rng string) ([]model.Bar, error) {
	u := fmt.Sprintf("%s%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), interval, rng)
	body, err := f.http.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	return parseYahooChart(body)
}

func parseYahooChart(body []byte) ([]model.Bar, error) {
	if desc := gjson.GetBytes(body, "chart.error.description"); desc.Exists() && desc.String() != "" {
		return nil, fmt.Errorf("yahoo api error: %s", desc.String())
	}
	result := gjson.GetBytes(body, "chart.result.0")
	timestamps := result.Get("timestamp").Array()
	if len(timestamps) == 0 {
		return nil, fmt.Errorf("yahoo: %w", ErrNoData)
	}

	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	bars := make([]model.Bar, 0, len(timestamps))
	for i, ts := range timestamps {
		if i >= len(closes) || i >= len(opens) || i >= len(highs) || i >= len(lows) {
			break
		}
		if closes[i].Type == gjson.Null {
			continue // skip null bars (holidays, halted sessions)
		}
		var vol float64
		if i < len(volumes) {
			vol = volumes[i].Float()
		}
		bars = append(bars, model.Bar{
			Time:   time.Unix(ts.Int(), 0),
			Open:   opens[i].Float(),
			High:   highs[i].Float(),
			Low:    lows[i].Float(),
			Close:  closes[i].Float(),
			Volume: vol,
		})
	}
	return Normalize(bars), nil
}

func (f *YahooFetcher) FetchDailyBars(ctx context.Context, symbol string, count int) ([]model.Bar, error) {
	// Yahoo range: max "2y" for daily interval
	rng := "2y"
	if count <= 20 {
		rng = "1mo"
	} else if count <= 60 {
		rng = "3mo"
	} else if count <= 120 {
		rng = "6mo"
	} else if count <= 250 {
		rng = "1y"
	}
	bars, err := f.fetchChart(ctx, symbol, "1d", rng)
	if err != nil {
		return nil, err
	}
	return tail(bars, count), nil
}

func (f *YahooFetcher) FetchIntradayBars(ctx context.Context, symbol, frequency string, count int) ([]model.Bar, error) {
	interval := yahooInterval(frequency)
	rng := "1d"
	if interval != "1m" || count > 240 {
		rng = "5d"
	}
	bars, err := f.fetchChart(ctx, symbol, interval, rng)
	if err != nil {
		return nil, err
	}
	return tail(bars, count), nil
}

// yahooInterval converts "5min" style frequencies to Yahoo's "5m".
func yahooInterval(frequency string) string {
	f := strings.TrimSuffix(strings.ToLower(frequency), "in")
	f = strings.TrimSuffix(f, "m")
	switch f {
	case "1", "2", "5", "15", "30", "60", "90":
		return f + "m"
	}
	return "5m"
}

func tail(bars []model.Bar, n int) []model.Bar {
	if n > 0 && len(bars) > n {
		return bars[len(bars)-n:]
	}
	return bars
}
