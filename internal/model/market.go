package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds the bars of one symbol at one interval, oldest first.
// Timestamps are strictly increasing but not evenly spaced.
type PriceSeries struct {
	Symbol   string
	Interval string
	Bars     []OHLCV
}

// Len returns the number of bars.
func (s PriceSeries) Len() int { return len(s.Bars) }

// Closes extracts the close prices.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Last returns the most recent bar. The series must not be empty.
func (s PriceSeries) Last() OHLCV {
	return s.Bars[len(s.Bars)-1]
}

// LastDay returns the bars that share the calendar date of the last bar.
func (s PriceSeries) LastDay() PriceSeries {
	if len(s.Bars) == 0 {
		return s
	}
	y, m, d := s.Last().Time.Date()
	start := len(s.Bars) - 1
	for start > 0 {
		py, pm, pd := s.Bars[start-1].Time.Date()
		if py != y || pm != m || pd != d {
			break
		}
		start--
	}
	return PriceSeries{Symbol: s.Symbol, Interval: s.Interval, Bars: s.Bars[start:]}
}

// AlertEvent is an inbound alert to broadcast.
type AlertEvent struct {
	Symbol  string
	Message string
	Price   float64
}
