package calculator

import (
	"math"

	"BistSentinel/internal/model"
)

// SMASeries computes a rolling mean aligned with values. An output entry is NaN
// until a full window of defined inputs is available.
func SMASeries(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 {
		return out
	}
	sum := 0.0
	valid := 0
	for i, v := range values {
		if !math.IsNaN(v) {
			sum += v
			valid++
		}
		if i >= period {
			if old := values[i-period]; !math.IsNaN(old) {
				sum -= old
				valid--
			}
		}
		if i >= period-1 && valid == period {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMASeries computes a span-style EMA (alpha = 2/(period+1)) seeded with the
// first defined input, without bias correction. Leading NaN inputs stay NaN.
func EMASeries(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 {
		return out
	}
	alpha := 2.0 / float64(period+1)
	prev := math.NaN()
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(prev) {
			prev = v
		} else {
			prev = alpha*v + (1-alpha)*prev
		}
		out[i] = prev
	}
	return out
}

// StdDevSeries computes the rolling sample standard deviation (n-1 denominator).
func StdDevSeries(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period < 2 {
		return out
	}
	means := SMASeries(values, period)
	for i := period - 1; i < len(values); i++ {
		if math.IsNaN(means[i]) {
			continue
		}
		ss := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := values[j] - means[i]
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(period-1))
	}
	return out
}

// mask sets the first n entries of values to NaN.
func mask(values []float64, n int) []float64 {
	for i := 0; i < n && i < len(values); i++ {
		values[i] = math.NaN()
	}
	return values
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}

// pctDistance returns how far price sits above (positive) or below ref, in percent.
func pctDistance(price, ref float64) float64 {
	if ref == 0 || math.IsNaN(ref) {
		return math.NaN()
	}
	return (price - ref) / ref * 100
}

// SMA computes the simple moving average of closes over period bars.
func SMA(s model.PriceSeries, period int) (model.IndicatorResult, error) {
	code := "sma" + itoa(period)
	if err := requireBars(code, s.Len(), period); err != nil {
		return model.IndicatorResult{}, err
	}
	return movingAverageResult(code, s, SMASeries(s.Closes(), period)), nil
}

// EMA computes the exponential moving average of closes. The first period-1
// entries are treated as warm-up and left undefined.
func EMA(s model.PriceSeries, period int) (model.IndicatorResult, error) {
	code := "ema" + itoa(period)
	if err := requireBars(code, s.Len(), period); err != nil {
		return model.IndicatorResult{}, err
	}
	return movingAverageResult(code, s, mask(EMASeries(s.Closes(), period), period-1)), nil
}

func movingAverageResult(code string, s model.PriceSeries, values []float64) model.IndicatorResult {
	ma := last(values)
	price := s.Last().Close
	trend := model.TrendDown
	if price >= ma {
		trend = model.TrendUp
	}
	return model.IndicatorResult{
		Code:   code,
		Values: values,
		Latest: ma,
		Score:  pctDistance(price, ma),
		Trend:  trend,
	}
}
