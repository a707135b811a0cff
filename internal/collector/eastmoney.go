package collector

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"StockPulse/internal/model"
)

const (
	eastMoneyKlineURL = "https://push2his.eastmoney.com/api/qt/stock/kline/get"
	eastMoneyListURL  = "https://push2.eastmoney.com/api/qt/clist/get"
	kltDaily          = 101
)

// chinaTime is the exchange clock for A-share kline timestamps.
var chinaTime = time.FixedZone("CST", 8*3600)

// EastMoneyFetcher implements Fetcher using the EastMoney kline API.
type EastMoneyFetcher struct {
	http    *httpSource
	BaseURL string
	ListURL string
}

// NewEastMoneyFetcher creates a new EastMoney fetcher.
func NewEastMoneyFetcher(proxyURL string, requestsPerSecond float64) *EastMoneyFetcher {
	src := newHTTPSource(proxyURL, requestsPerSecond)
	src.headers["Referer"] = "https://quote.eastmoney.com/"
	return &EastMoneyFetcher{http: src, BaseURL: eastMoneyKlineURL, ListURL: eastMoneyListURL}
}

func (f *EastMoneyFetcher) Name() string { return "eastmoney" }

// secID converts sh600519 / sz000001 / 600519 into EastMoney's market.code form.
func secID(symbol string) string {
	s := strings.ToLower(strings.TrimSpace(symbol))
	switch {
	case strings.HasPrefix(s, "sh"):
		return "1." + s[2:]
	case strings.HasPrefix(s, "sz"), strings.HasPrefix(s, "bj"):
		return "0." + s[2:]
	case strings.HasPrefix(s, "6"), strings.HasPrefix(s, "5"), strings.HasPrefix(s, "9"):
		return "1." + s
	}
	return "0." + s
}

// klt maps a frequency such as "5min" to the kline type code.
func klt(frequency string) int {
	f := strings.TrimSuffix(strings.ToLower(frequency), "in")
	f = strings.TrimSuffix(f, "m")
	switch f {
	case "1", "5", "15", "30", "60":
		n, _ := strconv.Atoi(f)
		return n
	}
	return 5
}

func (f *EastMoneyFetcher) FetchDailyBars(ctx context.Context, symbol string, count int) ([]model.Bar, error) {
	return f.fetchKlines(ctx, symbol, kltDaily, count)
}

func (f *EastMoneyFetcher) FetchIntradayBars(ctx context.Context, symbol, frequency string, count int) ([]model.Bar, error) {
	return f.fetchKlines(ctx, symbol, klt(frequency), count)
}

func (f *EastMoneyFetcher) fetchKlines(ctx context.Context, symbol string, kind, count int) ([]model.Bar, error) {
	q := url.Values{}
	q.Set("secid", secID(symbol))
	q.Set("fields1", "f1,f2,f3")
	q.Set("fields2", "f51,f52,f53,f54,f55,f56")
	q.Set("klt", strconv.Itoa(kind))
	q.Set("fqt", "1")
	q.Set("end", "20500101")
	q.Set("lmt", strconv.Itoa(count))

	body, err := f.http.get(ctx, f.BaseURL+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("eastmoney fetch: %w", err)
	}
	return parseKlines(body, kind == kltDaily)
}

// parseKlines decodes "date,open,close,high,low,volume" rows under data.klines.
func parseKlines(body []byte, daily bool) ([]model.Bar, error) {
	rows := gjson.GetBytes(body, "data.klines").Array()
	if len(rows) == 0 {
		return nil, fmt.Errorf("eastmoney: %w", ErrNoData)
	}
	layout := "2006-01-02 15:04"
	if daily {
		layout = "2006-01-02"
	}

	bars := make([]model.Bar, 0, len(rows))
	for _, row := range rows {
		fields := strings.Split(row.String(), ",")
		if len(fields) < 6 {
			return nil, fmt.Errorf("eastmoney: malformed kline %q", row.String())
		}
		t, err := time.ParseInLocation(layout, fields[0], chinaTime)
		if err != nil {
			return nil, fmt.Errorf("eastmoney: parse time %q: %w", fields[0], err)
		}
		nums := make([]float64, 5)
		for i := range nums {
			if nums[i], err = strconv.ParseFloat(fields[i+1], 64); err != nil {
				return nil, fmt.Errorf("eastmoney: parse field %d of %q: %w", i+1, row.String(), err)
			}
		}
		bars = append(bars, model.Bar{
			Time:   t,
			Open:   nums[0],
			Close:  nums[1],
			High:   nums[2],
			Low:    nums[3],
			Volume: nums[4],
		})
	}
	return Normalize(bars), nil
}

// FetchSymbols lists A-share codes (sh/sz prefixed) from the market board
// endpoint, at most limit entries.
func (f *EastMoneyFetcher) FetchSymbols(ctx context.Context, limit int) ([]string, error) {
	q := url.Values{}
	q.Set("pn", "1")
	q.Set("pz", strconv.Itoa(limit))
	q.Set("po", "1")
	q.Set("np", "1")
	q.Set("fltt", "2")
	q.Set("fid", "f6")
	q.Set("fs", "m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23")
	q.Set("fields", "f12,f13")

	body, err := f.http.get(ctx, f.ListURL+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("eastmoney list: %w", err)
	}
	var symbols []string
	gjson.GetBytes(body, "data.diff").ForEach(func(_, item gjson.Result) bool {
		code := item.Get("f12").String()
		if code == "" {
			return true
		}
		prefix := "sz"
		if item.Get("f13").Int() == 1 {
			prefix = "sh"
		}
		symbols = append(symbols, prefix+code)
		return limit <= 0 || len(symbols) < limit
	})
	if len(symbols) == 0 {
		return nil, fmt.Errorf("eastmoney list: %w", ErrNoData)
	}
	return symbols, nil
}
