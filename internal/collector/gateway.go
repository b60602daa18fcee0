package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"BistSentinel/internal/metrics"
	"BistSentinel/internal/model"
)

// ErrDataUnavailable covers both provider errors and empty results.
var ErrDataUnavailable = errors.New("data unavailable")

// DefaultSuffix is the Yahoo market suffix for Borsa Istanbul listings.
const DefaultSuffix = ".IS"

// Gateway turns raw exchange symbols into provider tickers and normalizes
// provider failures. It does not retry.
type Gateway struct {
	Fetcher Fetcher
	Suffix  string
	Metrics *metrics.Metrics
}

// NewGateway creates a Gateway over fetcher using the given market suffix.
func NewGateway(fetcher Fetcher, suffix string, m *metrics.Metrics) *Gateway {
	return &Gateway{Fetcher: fetcher, Suffix: suffix, Metrics: m}
}

// Ticker maps an exchange symbol such as "thyao" to the provider ticker "THYAO.IS".
func (g *Gateway) Ticker(symbol string) string {
	t := strings.ToUpper(strings.TrimSpace(symbol))
	if g.Suffix == "" || strings.HasSuffix(t, strings.ToUpper(g.Suffix)) {
		return t
	}
	return t + g.Suffix
}

// Fetch returns the price history of symbol. Any provider failure or an empty
// result is reported as ErrDataUnavailable.
func (g *Gateway) Fetch(ctx context.Context, symbol, interval, period string) (model.PriceSeries, error) {
	ticker := g.Ticker(symbol)
	bars, err := g.Fetcher.FetchBars(ctx, ticker, interval, period)
	if err == nil && len(bars) == 0 {
		err = errors.New("empty result")
	}
	g.Metrics.ObserveFetch(g.Fetcher.Name(), err)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("%w: %s %s/%s: %v", ErrDataUnavailable, ticker, interval, period, err)
	}
	return model.PriceSeries{Symbol: strings.ToUpper(strings.TrimSpace(symbol)), Interval: interval, Bars: bars}, nil
}
