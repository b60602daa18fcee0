package calculator

import (
	"errors"
	"math"

	"BistSentinel/internal/model"
)

// HighLow scans the most recent window bars and returns the highest high and lowest low.
// Fewer bars than window are scanned in full.
func HighLow(bars []model.OHLCV, window int) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	n := len(bars)
	start := n - window
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	return high, low, nil
}

// RangePosition returns where current sits within [low, high] (0.0~1.0).
func RangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}

// rollingHighLow returns the highest high and lowest low of each trailing window.
func rollingHighLow(bars []model.OHLCV, window int) (highs, lows []float64) {
	highs = nanSeries(len(bars))
	lows = nanSeries(len(bars))
	for i := window - 1; i < len(bars); i++ {
		h, l, err := HighLow(bars[i-window+1:i+1], window)
		if err != nil {
			continue
		}
		highs[i], lows[i] = h, l
	}
	return highs, lows
}
