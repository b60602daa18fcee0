package recorder

import "BistSentinel/internal/model"

// BroadcastEvent describes one fan-out of a message to the recipients.
type BroadcastEvent struct {
	Kind       string // "ALERT", "SCAN" or "MESSAGE"
	Symbol     string
	Message    string
	Price      float64
	Recipients int
	Delivered  int
	Failed     int
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordScan(report *model.ScanReport) error
	RecordBroadcast(evt *BroadcastEvent) error
	Close() error
}
