package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"BistSentinel/internal/calculator"
	"BistSentinel/internal/dispatcher"
	"BistSentinel/internal/model"
	"BistSentinel/internal/recorder"
)

type fakeScanner struct {
	err      error
	universe []string
	code     string
}

func (f *fakeScanner) Scan(_ context.Context, code string, universe []string) (*model.ScanReport, error) {
	f.code, f.universe = code, universe
	if f.err != nil {
		return nil, f.err
	}
	return &model.ScanReport{
		Indicator: code,
		Entries:   []model.ScanEntry{{Symbol: "GARAN", Value: 2.5, Trend: model.TrendUp}},
		Succeeded: 1,
		StartedAt: time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC),
	}, nil
}

type fakeBroadcaster struct {
	texts []string
}

func (f *fakeBroadcaster) BroadcastScan(_ context.Context, _ *model.ScanReport, text string) dispatcher.Result {
	f.texts = append(f.texts, text)
	return dispatcher.Result{Recipients: 2, Delivered: 2}
}

type countingRecorder struct {
	recorder.NoopRecorder
	scans int
}

func (c *countingRecorder) RecordScan(_ *model.ScanReport) error {
	c.scans++
	return nil
}

func TestRunScanNow_BroadcastsAndRecords(t *testing.T) {
	sc := &fakeScanner{}
	b := &fakeBroadcaster{}
	rec := &countingRecorder{}
	s, err := NewScheduler(context.Background(), "", sc, b, rec)
	if err != nil {
		t.Fatal(err)
	}
	s.Indicator = "rsi"

	report, res, err := s.RunScanNow()
	if err != nil {
		t.Fatal(err)
	}
	if report.Indicator != "rsi" || sc.code != "rsi" || len(sc.universe) != 30 {
		t.Errorf("unexpected scan call %s over %d symbols", sc.code, len(sc.universe))
	}
	if res.Delivered != 2 || rec.scans != 1 || len(b.texts) != 1 {
		t.Fatalf("expected one broadcast and one record, got %+v, %d, %d", res, rec.scans, len(b.texts))
	}
	// 07:00 UTC is 10:00 in Istanbul.
	if !strings.Contains(b.texts[0], "02.03.2026 10:00") || !strings.Contains(b.texts[0], "GARAN") {
		t.Errorf("unexpected broadcast text %q", b.texts[0])
	}
}

func TestRunScanNow_ScanError(t *testing.T) {
	b := &fakeBroadcaster{}
	s, err := NewScheduler(context.Background(), "UTC", &fakeScanner{err: calculator.ErrUnknownIndicator}, b, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.RunScanNow(); !errors.Is(err, calculator.ErrUnknownIndicator) {
		t.Errorf("expected ErrUnknownIndicator, got %v", err)
	}
	if len(b.texts) != 0 {
		t.Error("failed scan must not broadcast")
	}
}

func TestRegisterScan(t *testing.T) {
	s, err := NewScheduler(context.Background(), "", &fakeScanner{}, &fakeBroadcaster{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RegisterScan(""); err != nil || len(s.Cron.Entries()) != 0 {
		t.Errorf("empty expression should register nothing, got %v / %d", err, len(s.Cron.Entries()))
	}
	if err := s.RegisterScan("0 30 18 * * 1-5"); err != nil || len(s.Cron.Entries()) != 1 {
		t.Errorf("expected one entry, got %v / %d", err, len(s.Cron.Entries()))
	}
	if err := s.RegisterScan("not a cron"); err == nil {
		t.Error("expected an error for an invalid expression")
	}
}

func TestNewScheduler_BadTimezone(t *testing.T) {
	if _, err := NewScheduler(context.Background(), "Mars/Olympus", &fakeScanner{}, &fakeBroadcaster{}, nil); err == nil {
		t.Error("expected an error for an unknown timezone")
	}
}
