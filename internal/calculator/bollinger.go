package calculator

import (
	"math"

	"BistSentinel/internal/model"
)

// Bollinger computes SMA(period) ± k standard deviations. Score is %B, the
// position of the last close between the bands.
func Bollinger(s model.PriceSeries, period int, k float64) (model.IndicatorResult, error) {
	if err := requireBars("bb", s.Len(), period); err != nil {
		return model.IndicatorResult{}, err
	}
	closes := s.Closes()
	mid := SMASeries(closes, period)
	sd := StdDevSeries(closes, period)

	upper := nanSeries(len(closes))
	lower := nanSeries(len(closes))
	for i := range closes {
		if math.IsNaN(mid[i]) || math.IsNaN(sd[i]) {
			continue
		}
		upper[i] = mid[i] + k*sd[i]
		lower[i] = mid[i] - k*sd[i]
	}

	u, l, price := last(upper), last(lower), last(closes)
	percentB := 0.5
	if u != l {
		percentB = (price - l) / (u - l)
	}
	trend := model.TrendDown
	if price >= last(mid) {
		trend = model.TrendUp
	}
	return model.IndicatorResult{
		Code:   "bb",
		Values: mid,
		Lines:  map[string][]float64{"upper": upper, "lower": lower},
		Latest: last(mid),
		Score:  percentB,
		Trend:  trend,
	}, nil
}
