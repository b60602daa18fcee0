package model

import "math"

// Trend is the regime classification some indicators derive.
type Trend string

const (
	TrendNone Trend = ""
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
)

// IndicatorResult holds an indicator computed over a PriceSeries.
// Values and every entry of Lines are aligned 1:1 with the input bars;
// entries without enough history are NaN.
type IndicatorResult struct {
	Code   string
	Values []float64
	Lines  map[string][]float64
	Latest float64 // last primary value
	Score  float64 // ranking key used by the scanner
	Trend  Trend
}

// Line returns a secondary line, or nil when the indicator has none by that name.
func (r IndicatorResult) Line(name string) []float64 {
	if r.Lines == nil {
		return nil
	}
	return r.Lines[name]
}

// Defined reports whether v is a defined indicator value.
func Defined(v float64) bool {
	return !math.IsNaN(v)
}
