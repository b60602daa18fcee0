package calculator

import (
	"math"

	"BistSentinel/internal/model"
)

// CCIConstant is Lambert's scaling constant.
const CCIConstant = 0.015

// CCI computes the commodity channel index over typical prices.
// A window with zero mean deviation yields 0.
func CCI(s model.PriceSeries, period int) (model.IndicatorResult, error) {
	if err := requireBars("cci", s.Len(), period); err != nil {
		return model.IndicatorResult{}, err
	}
	tp := make([]float64, s.Len())
	for i, b := range s.Bars {
		tp[i] = (b.High + b.Low + b.Close) / 3
	}
	means := SMASeries(tp, period)

	values := nanSeries(len(tp))
	for i := period - 1; i < len(tp); i++ {
		md := 0.0
		for j := i - period + 1; j <= i; j++ {
			md += math.Abs(tp[j] - means[i])
		}
		md /= float64(period)
		if md == 0 {
			values[i] = 0
			continue
		}
		values[i] = (tp[i] - means[i]) / (CCIConstant * md)
	}

	v := last(values)
	trend := model.TrendDown
	if v >= 0 {
		trend = model.TrendUp
	}
	return model.IndicatorResult{
		Code:   "cci",
		Values: values,
		Latest: v,
		Score:  v,
		Trend:  trend,
	}, nil
}
