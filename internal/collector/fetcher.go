package collector

import (
	"context"
	"errors"

	"StockPulse/internal/model"
)

// ErrNoData is returned when a source has no bars for a request.
var ErrNoData = errors.New("no data returned")

// Fetcher defines the interface for fetching market data. Bars are
// returned in ascending time order; an empty slice is treated as ErrNoData.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, count int) ([]model.Bar, error)
	FetchIntradayBars(ctx context.Context, symbol, frequency string, count int) ([]model.Bar, error)
	Name() string
}
