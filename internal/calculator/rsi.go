package calculator

import "BistSentinel/internal/model"

// RSISeries computes the Wilder-smoothed RSI over closes. The first value is
// defined at index period, seeded by the simple average of the first period changes.
func RSISeries(closes []float64, period int) []float64 {
	out := nanSeries(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	// Initial average gain/loss over the first `period` changes
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	// Wilder smoothing for remaining bars
	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50.0
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

// RSI computes the relative strength index of the series.
func RSI(s model.PriceSeries, period int) (model.IndicatorResult, error) {
	if err := requireBars("rsi", s.Len(), period+1); err != nil {
		return model.IndicatorResult{}, err
	}
	values := RSISeries(s.Closes(), period)
	v := last(values)
	trend := model.TrendDown
	if v >= 50 {
		trend = model.TrendUp
	}
	return model.IndicatorResult{
		Code:   "rsi",
		Values: values,
		Latest: v,
		Score:  v,
		Trend:  trend,
	}, nil
}
