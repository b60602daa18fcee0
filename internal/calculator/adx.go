package calculator

import (
	"math"

	"BistSentinel/internal/model"
)

// ADX computes Wilder's average directional index together with +DI and -DI.
// The DI lines start at index period and ADX at index 2*period-1.
func ADX(s model.PriceSeries, period int) (model.IndicatorResult, error) {
	if err := requireBars("adx", s.Len(), 2*period); err != nil {
		return model.IndicatorResult{}, err
	}
	bars := s.Bars
	n := len(bars)
	p := float64(period)

	tr := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		h, l, pc := bars[i].High, bars[i].Low, bars[i-1].Close
		tr[i] = math.Max(h-l, math.Max(math.Abs(h-pc), math.Abs(l-pc)))
		up := h - bars[i-1].High
		down := bars[i-1].Low - l
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	plusDI := nanSeries(n)
	minusDI := nanSeries(n)
	dx := nanSeries(n)
	var trS, pS, mS float64
	for i := 1; i < n; i++ {
		if i <= period {
			trS += tr[i]
			pS += plusDM[i]
			mS += minusDM[i]
			if i < period {
				continue
			}
		} else {
			// Wilder smoothing of the running sums
			trS = trS - trS/p + tr[i]
			pS = pS - pS/p + plusDM[i]
			mS = mS - mS/p + minusDM[i]
		}
		if trS == 0 {
			plusDI[i], minusDI[i] = 0, 0
		} else {
			plusDI[i] = 100 * pS / trS
			minusDI[i] = 100 * mS / trS
		}
		if sum := plusDI[i] + minusDI[i]; sum != 0 {
			dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / sum
		} else {
			dx[i] = 0
		}
	}

	adx := nanSeries(n)
	first := 2*period - 1
	seed := 0.0
	for i := period; i <= first; i++ {
		seed += dx[i]
	}
	adx[first] = seed / p
	for i := first + 1; i < n; i++ {
		adx[i] = (adx[i-1]*(p-1) + dx[i]) / p
	}

	trend := model.TrendDown
	if last(plusDI) >= last(minusDI) {
		trend = model.TrendUp
	}
	return model.IndicatorResult{
		Code:   "adx",
		Values: adx,
		Lines:  map[string][]float64{"plus_di": plusDI, "minus_di": minusDI},
		Latest: last(adx),
		Score:  last(adx),
		Trend:  trend,
	}, nil
}
