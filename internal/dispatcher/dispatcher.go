// Package dispatcher fans a message out to every subscriber plus the admin.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync/atomic"

	"BistSentinel/internal/metrics"
	"BistSentinel/internal/model"
	"BistSentinel/internal/recorder"

	"golang.org/x/sync/errgroup"
)

// ErrDelivery wraps a failed send to a single recipient.
var ErrDelivery = errors.New("delivery failed")

// Sender delivers a text message to one chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Subscribers yields the current recipient snapshot.
type Subscribers interface {
	List() []int64
}

// Result summarizes one broadcast.
type Result struct {
	Recipients int
	Delivered  int
	Failed     int
}

// Dispatcher broadcasts messages to the subscriber set.
type Dispatcher struct {
	Sender      Sender
	Subscribers Subscribers
	AdminID     int64
	Concurrency int
	Recorder    recorder.Recorder
	Metrics     *metrics.Metrics
}

// New creates a Dispatcher. rec may be nil.
func New(sender Sender, subs Subscribers, adminID int64, concurrency int, rec recorder.Recorder, m *metrics.Metrics) *Dispatcher {
	if concurrency <= 0 {
		concurrency = 10
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Dispatcher{
		Sender:      sender,
		Subscribers: subs,
		AdminID:     adminID,
		Concurrency: concurrency,
		Recorder:    rec,
		Metrics:     m,
	}
}

// FormatAlert renders an inbound alert for Telegram.
func FormatAlert(evt model.AlertEvent) string {
	return fmt.Sprintf("🚨 TRADINGVIEW ALARMI 🚨\n\nHisse: %s\nMesaj: %s\nFiyat: %s",
		evt.Symbol, evt.Message, strconv.FormatFloat(evt.Price, 'f', -1, 64))
}

// Recipients returns the subscriber snapshot plus the admin if not already present.
func (d *Dispatcher) Recipients() []int64 {
	var ids []int64
	if d.Subscribers != nil {
		ids = d.Subscribers.List()
	}
	if d.AdminID == 0 {
		return ids
	}
	for _, id := range ids {
		if id == d.AdminID {
			return ids
		}
	}
	return append(ids, d.AdminID)
}

// Dispatch formats evt and broadcasts it.
func (d *Dispatcher) Dispatch(ctx context.Context, evt model.AlertEvent) Result {
	res := d.broadcast(ctx, FormatAlert(evt))
	d.record(&recorder.BroadcastEvent{
		Kind: "ALERT", Symbol: evt.Symbol, Message: evt.Message, Price: evt.Price,
	}, res)
	return res
}

// Broadcast sends text to every recipient.
func (d *Dispatcher) Broadcast(ctx context.Context, text string) Result {
	res := d.broadcast(ctx, text)
	d.record(&recorder.BroadcastEvent{Kind: "MESSAGE", Message: text}, res)
	return res
}

// BroadcastScan sends a formatted scan report and records it with its source report.
func (d *Dispatcher) BroadcastScan(ctx context.Context, report *model.ScanReport, text string) Result {
	res := d.broadcast(ctx, text)
	d.record(&recorder.BroadcastEvent{Kind: "SCAN", Symbol: report.Indicator, Message: text}, res)
	return res
}

func (d *Dispatcher) broadcast(ctx context.Context, text string) Result {
	recipients := d.Recipients()
	if len(recipients) == 0 {
		return Result{}
	}

	var delivered, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(d.Concurrency)
	for _, id := range recipients {
		g.Go(func() error {
			err := d.Sender.SendMessage(ctx, id, text)
			d.Metrics.ObserveDelivery(err)
			if err != nil {
				failed.Add(1)
				log.Printf("[WARN] %v", fmt.Errorf("%w: chat %d: %v", ErrDelivery, id, err))
				return nil
			}
			delivered.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	res := Result{Recipients: len(recipients), Delivered: int(delivered.Load()), Failed: int(failed.Load())}
	d.Metrics.ObserveBroadcast()
	log.Printf("[INFO] broadcast delivered to %d/%d recipients", res.Delivered, res.Recipients)
	return res
}

func (d *Dispatcher) record(evt *recorder.BroadcastEvent, res Result) {
	if res.Recipients == 0 {
		return
	}
	evt.Recipients, evt.Delivered, evt.Failed = res.Recipients, res.Delivered, res.Failed
	if err := d.Recorder.RecordBroadcast(evt); err != nil {
		log.Printf("[ERROR] record broadcast: %v", err)
	}
}
