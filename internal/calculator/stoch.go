package calculator

import (
	"math"

	"BistSentinel/internal/model"
)

// Stochastic computes %K over a kPeriod high/low window and %D as the
// dPeriod SMA of %K. A window with no range yields %K = 50.
func Stochastic(s model.PriceSeries, kPeriod, dPeriod int) (model.IndicatorResult, error) {
	if err := requireBars("stoch", s.Len(), kPeriod+dPeriod-1); err != nil {
		return model.IndicatorResult{}, err
	}
	highs, lows := rollingHighLow(s.Bars, kPeriod)
	k := nanSeries(s.Len())
	for i, b := range s.Bars {
		if math.IsNaN(highs[i]) {
			continue
		}
		if highs[i] == lows[i] {
			k[i] = 50
			continue
		}
		k[i] = 100 * (b.Close - lows[i]) / (highs[i] - lows[i])
	}
	d := SMASeries(k, dPeriod)

	kv, dv := last(k), last(d)
	trend := model.TrendDown
	if kv >= dv {
		trend = model.TrendUp
	}
	return model.IndicatorResult{
		Code:   "stoch",
		Values: k,
		Lines:  map[string][]float64{"d": d},
		Latest: kv,
		Score:  kv,
		Trend:  trend,
	}, nil
}
