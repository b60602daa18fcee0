package model

import "time"

// ScanEntry is one symbol's outcome within a scan.
type ScanEntry struct {
	Symbol string
	Value  float64 // IndicatorResult.Score
	Latest float64
	Trend  Trend
	Err    error
}

// OK reports whether the entry carries a value.
func (e ScanEntry) OK() bool { return e.Err == nil }

// ScanReport is the ordered result of scanning a universe with one indicator.
type ScanReport struct {
	Indicator string
	Entries   []ScanEntry
	Succeeded int
	Failed    int
	StartedAt time.Time
	Duration  time.Duration
}
