package dispatcher

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"BistSentinel/internal/model"
	"BistSentinel/internal/recorder"
)

type fakeSender struct {
	mu    sync.Mutex
	fail  map[int64]bool
	sent  map[int64]string
	tries int
}

func (f *fakeSender) SendMessage(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tries++
	if f.fail[chatID] {
		return errors.New("blocked by user")
	}
	if f.sent == nil {
		f.sent = map[int64]string{}
	}
	f.sent[chatID] = text
	return nil
}

type staticSubs []int64

func (s staticSubs) List() []int64 { return append([]int64(nil), s...) }

type memRecorder struct {
	recorder.NoopRecorder
	events []*recorder.BroadcastEvent
}

func (m *memRecorder) RecordBroadcast(evt *recorder.BroadcastEvent) error {
	m.events = append(m.events, evt)
	return nil
}

func TestBroadcast_IsolatesFailures(t *testing.T) {
	sender := &fakeSender{fail: map[int64]bool{2: true, 4: true}}
	d := New(sender, staticSubs{1, 2, 3, 4, 5}, 0, 2, nil, nil)

	res := d.Broadcast(context.Background(), "test")
	if res.Recipients != 5 || res.Delivered != 3 || res.Failed != 2 {
		t.Errorf("expected 5/3/2, got %+v", res)
	}
	if sender.tries != 5 {
		t.Errorf("expected every recipient attempted, got %d", sender.tries)
	}
}

func TestDispatch_IncludesAdmin(t *testing.T) {
	sender := &fakeSender{}
	rec := &memRecorder{}
	d := New(sender, staticSubs{111, 222}, 333, 0, rec, nil)

	res := d.Dispatch(context.Background(), model.AlertEvent{Symbol: "THYAO", Message: "AL", Price: 285.5})
	if sender.tries != 3 || res.Delivered != 3 {
		t.Fatalf("expected 3 attempts and 3 deliveries, got %d / %+v", sender.tries, res)
	}
	want := "🚨 TRADINGVIEW ALARMI 🚨\n\nHisse: THYAO\nMesaj: AL\nFiyat: 285.5"
	for _, id := range []int64{111, 222, 333} {
		if sender.sent[id] != want {
			t.Errorf("chat %d got %q", id, sender.sent[id])
		}
	}
	if len(rec.events) != 1 || rec.events[0].Kind != "ALERT" || rec.events[0].Delivered != 3 {
		t.Errorf("expected one recorded alert, got %+v", rec.events)
	}
}

func TestRecipients_AdminNotDuplicated(t *testing.T) {
	d := New(&fakeSender{}, staticSubs{5, 9}, 9, 1, nil, nil)
	got := d.Recipients()
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	if len(got) != 2 || got[0] != 5 || got[1] != 9 {
		t.Errorf("expected [5 9], got %v", got)
	}
}

func TestBroadcast_NoRecipients(t *testing.T) {
	sender := &fakeSender{}
	rec := &memRecorder{}
	d := New(sender, staticSubs{}, 0, 1, rec, nil)
	res := d.Broadcast(context.Background(), "x")
	if res != (Result{}) || sender.tries != 0 {
		t.Errorf("expected zero result without sends, got %+v (%d tries)", res, sender.tries)
	}
	if len(rec.events) != 0 {
		t.Error("empty broadcast should not be recorded")
	}
}

func TestFormatAlert_Defaults(t *testing.T) {
	got := FormatAlert(model.AlertEvent{Symbol: "UNKNOWN", Message: "Sinyal Geldi", Price: 0})
	if got != "🚨 TRADINGVIEW ALARMI 🚨\n\nHisse: UNKNOWN\nMesaj: Sinyal Geldi\nFiyat: 0" {
		t.Errorf("unexpected alert text %q", got)
	}
}
