package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"StockPulse/internal/model"
)

// RESTFetcher implements Fetcher against a generic bars REST API that
// serves /api/v1/bars/daily and /api/v1/bars/intraday.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	http    *httpSource
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string, requestsPerSecond float64) *RESTFetcher {
	src := newHTTPSource(proxyURL, requestsPerSecond)
	if apiKey != "" {
		src.headers["Authorization"] = "Bearer " + apiKey
	}
	return &RESTFetcher{BaseURL: baseURL, APIKey: apiKey, http: src}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bars API.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

func (f *RESTFetcher) FetchDailyBars(ctx context.Context, symbol string, count int) ([]model.Bar, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?symbol=%s&limit=%d",
		f.BaseURL, url.QueryEscape(symbol), count)
	return f.fetchBars(ctx, endpoint)
}

func (f *RESTFetcher) FetchIntradayBars(ctx context.Context, symbol, frequency string, count int) ([]model.Bar, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars/intraday?symbol=%s&frequency=%s&limit=%d",
		f.BaseURL, url.QueryEscape(symbol), url.QueryEscape(frequency), count)
	return f.fetchBars(ctx, endpoint)
}

func (f *RESTFetcher) fetchBars(ctx context.Context, endpoint string) ([]model.Bar, error) {
	body, err := f.http.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	var raw []restBar
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("rest: %w", ErrNoData)
	}
	bars := make([]model.Bar, len(raw))
	for i, rb := range raw {
		bars[i] = model.Bar{
			Time:   time.Unix(rb.Timestamp, 0),
			Open:   rb.Open,
			High:   rb.High,
			Low:    rb.Low,
			Close:  rb.Close,
			Volume: rb.Volume,
		}
	}
	return Normalize(bars), nil
}
