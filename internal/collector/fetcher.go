package collector

import (
	"context"

	"BistSentinel/internal/model"
)

// Fetcher defines the interface for fetching price history from a data provider.
// interval and period use Yahoo-style codes ("5m", "1d" / "5d", "1y").
type Fetcher interface {
	FetchBars(ctx context.Context, ticker, interval, period string) ([]model.OHLCV, error)
	Name() string
}
