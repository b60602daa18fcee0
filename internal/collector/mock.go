package collector

import (
	"context"
	"math"
	"time"

	"BistSentinel/internal/model"
)

// MockFetcher returns controllable synthetic data for development and testing.
type MockFetcher struct {
	Price float64
	Count int
	Data  map[string][]model.OHLCV // keyed by ticker; overrides generated bars
	Err   map[string]error         // keyed by ticker
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(ctx context.Context, ticker, interval, _ string) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.Err[ticker]; ok {
		return nil, err
	}
	if bars, ok := m.Data[ticker]; ok {
		return bars, nil
	}
	count := m.Count
	if count == 0 {
		count = 300
	}
	price := m.Price
	if price == 0 {
		price = 100
	}
	return GenerateBars(price, count, intervalStep(interval)), nil
}

// GenerateBars builds count deterministic oscillating bars ending now.
func GenerateBars(basePrice float64, count int, step time.Duration) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	end := time.Now().Truncate(step)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001 + 0.02*math.Sin(float64(i)/5))
		bars[i] = model.OHLCV{
			Time:   end.Add(-time.Duration(count-1-i) * step),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

func intervalStep(interval string) time.Duration {
	switch interval {
	case "1m":
		return time.Minute
	case "5m":
		return 5 * time.Minute
	case "15m":
		return 15 * time.Minute
	case "1h", "60m":
		return time.Hour
	case "1wk":
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}
