package calculator

import "BistSentinel/internal/model"

// MACD computes EMA(fast) - EMA(slow), its EMA(signal) and the histogram.
// The MACD line is undefined for the first slow-1 bars and the signal and
// histogram for the first slow+signal-2 bars.
func MACD(s model.PriceSeries, fast, slow, signal int) (model.IndicatorResult, error) {
	if err := requireBars("macd", s.Len(), slow+signal-1); err != nil {
		return model.IndicatorResult{}, err
	}
	closes := s.Closes()
	emaFast := EMASeries(closes, fast)
	emaSlow := EMASeries(closes, slow)

	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = emaFast[i] - emaSlow[i]
	}
	sig := EMASeries(line, signal)
	hist := make([]float64, len(closes))
	for i := range closes {
		hist[i] = line[i] - sig[i]
	}

	mask(line, slow-1)
	mask(sig, slow+signal-2)
	mask(hist, slow+signal-2)

	m, sv := last(line), last(sig)
	trend := model.TrendDown
	if m >= sv {
		trend = model.TrendUp
	}
	return model.IndicatorResult{
		Code:   "macd",
		Values: line,
		Lines:  map[string][]float64{"signal": sig, "hist": hist},
		Latest: m,
		Score:  last(hist),
		Trend:  trend,
	}, nil
}
