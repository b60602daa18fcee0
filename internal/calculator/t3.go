package calculator

import (
	"math"

	"BistSentinel/internal/model"
)

const (
	// T3Length is the smoothing length of each cascaded EMA.
	T3Length = 6
	// T3VolumeFactor is Tilson's "a".
	T3VolumeFactor = 0.9
)

// T3Series computes the Tilson T3 moving average of closes:
// c1*e6 + c2*e5 + c3*e4 + c4*e3 over six cascaded span EMAs.
func T3Series(closes []float64, length int, a float64) []float64 {
	e1 := EMASeries(closes, length)
	e2 := EMASeries(e1, length)
	e3 := EMASeries(e2, length)
	e4 := EMASeries(e3, length)
	e5 := EMASeries(e4, length)
	e6 := EMASeries(e5, length)

	a2 := a * a
	a3 := a2 * a
	c1 := -a3
	c2 := 3*a2 + 3*a3
	c3 := -6*a2 - 3*a - 3*a3
	c4 := 1 + 3*a + a3 + 3*a2

	out := make([]float64, len(closes))
	for i := range closes {
		out[i] = c1*e6[i] + c2*e5[i] + c3*e4[i] + c4*e3[i]
	}
	return out
}

// SplitByRegime splits line into an "up" branch defined where close >= line and
// a complementary "down" branch, so each regime can be drawn in its own colour.
func SplitByRegime(closes, line []float64) (up, down []float64) {
	up = nanSeries(len(line))
	down = nanSeries(len(line))
	for i, v := range line {
		if math.IsNaN(v) {
			continue
		}
		if closes[i] >= v {
			up[i] = v
		} else {
			down[i] = v
		}
	}
	return up, down
}

// T3 computes the Tilson T3 of the series and classifies the trend at the last bar.
// Requires 6*length bars.
func T3(s model.PriceSeries, length int, a float64) (model.IndicatorResult, error) {
	if err := requireBars("t3", s.Len(), 6*length); err != nil {
		return model.IndicatorResult{}, err
	}
	closes := s.Closes()
	values := T3Series(closes, length, a)
	up, down := SplitByRegime(closes, values)

	t3 := last(values)
	price := last(closes)
	trend := model.TrendDown
	if price >= t3 {
		trend = model.TrendUp
	}
	return model.IndicatorResult{
		Code:   "t3",
		Values: values,
		Lines:  map[string][]float64{"up": up, "down": down},
		Latest: t3,
		Score:  pctDistance(price, t3),
		Trend:  trend,
	}, nil
}
