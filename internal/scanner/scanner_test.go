package scanner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"BistSentinel/internal/calculator"
	"BistSentinel/internal/collector"
	"BistSentinel/internal/model"
)

type fakeComputer struct {
	scores   map[string]float64
	failures map[string]error
	delay    time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeComputer) Compute(ctx context.Context, symbol, code string) (model.PriceSeries, model.IndicatorResult, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return model.PriceSeries{}, model.IndicatorResult{}, ctx.Err()
		}
	}
	if err, ok := f.failures[symbol]; ok {
		return model.PriceSeries{}, model.IndicatorResult{}, err
	}
	v := f.scores[symbol]
	trend := model.TrendDown
	if v >= 0 {
		trend = model.TrendUp
	}
	return model.PriceSeries{}, model.IndicatorResult{Code: code, Score: v, Latest: v, Trend: trend}, nil
}

func TestScan_OneFailureIsTrailingEntry(t *testing.T) {
	universe := []string{"AKBNK", "GARAN", "THYAO", "ASELS", "SISE"}
	fc := &fakeComputer{
		scores:   map[string]float64{"AKBNK": 1, "GARAN": 3, "ASELS": -2, "SISE": 3},
		failures: map[string]error{"THYAO": fmt.Errorf("%w: THYAO.IS", collector.ErrDataUnavailable)},
	}
	report, err := New(fc, 2, time.Second, nil).Scan(context.Background(), "t3", universe)
	if err != nil {
		t.Fatal(err)
	}
	if report.Succeeded != len(universe)-1 || report.Failed != 1 {
		t.Fatalf("expected %d ok / 1 failed, got %d / %d", len(universe)-1, report.Succeeded, report.Failed)
	}
	var got []string
	for _, e := range report.Entries {
		got = append(got, e.Symbol)
	}
	want := "GARAN,SISE,AKBNK,ASELS,THYAO"
	if strings.Join(got, ",") != want {
		t.Errorf("expected order %s, got %s", want, strings.Join(got, ","))
	}
	last := report.Entries[len(report.Entries)-1]
	if last.OK() || !errors.Is(last.Err, collector.ErrDataUnavailable) {
		t.Errorf("expected trailing DataUnavailable entry, got %+v", last)
	}
}

func TestScan_FailuresKeepUniverseOrder(t *testing.T) {
	universe := []string{"A", "B", "C", "D"}
	fc := &fakeComputer{
		scores: map[string]float64{"C": 1},
		failures: map[string]error{
			"D": calculator.ErrInsufficientHistory,
			"A": collector.ErrDataUnavailable,
			"B": collector.ErrDataUnavailable,
		},
	}
	report, err := New(fc, 4, 0, nil).Scan(context.Background(), "rsi", universe)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, e := range report.Entries {
		got = append(got, e.Symbol)
	}
	if strings.Join(got, ",") != "C,A,B,D" {
		t.Errorf("expected C,A,B,D got %s", strings.Join(got, ","))
	}
}

func TestScan_BoundedParallelism(t *testing.T) {
	fc := &fakeComputer{scores: map[string]float64{}, delay: 20 * time.Millisecond}
	universe := model.BIST30
	report, err := New(fc, 3, time.Second, nil).Scan(context.Background(), "macd", universe)
	if err != nil {
		t.Fatal(err)
	}
	if report.Succeeded != len(universe) {
		t.Errorf("expected every symbol to succeed, got %d", report.Succeeded)
	}
	if p := fc.peak.Load(); p > 3 {
		t.Errorf("expected at most 3 concurrent computes, saw %d", p)
	}
}

func TestScan_SlowSymbolTimesOut(t *testing.T) {
	fc := &fakeComputer{scores: map[string]float64{"A": 1}, delay: 200 * time.Millisecond}
	start := time.Now()
	report, err := New(fc, 2, 20*time.Millisecond, nil).Scan(context.Background(), "t3", []string{"A", "B"})
	if err != nil {
		t.Fatal(err)
	}
	if time.Since(start) > 150*time.Millisecond {
		t.Errorf("scan should be bounded by the per-symbol timeout, took %v", time.Since(start))
	}
	if report.Failed != 2 {
		t.Errorf("expected both symbols to time out, got %d failures", report.Failed)
	}
}

func TestScan_UnknownIndicator(t *testing.T) {
	_, err := New(&fakeComputer{}, 1, 0, nil).Scan(context.Background(), "nope", []string{"A"})
	if !errors.Is(err, calculator.ErrUnknownIndicator) {
		t.Errorf("expected ErrUnknownIndicator, got %v", err)
	}
}

func TestOrder_TiesBySymbol(t *testing.T) {
	got := Order([]model.ScanEntry{
		{Symbol: "ZZ", Value: 1},
		{Symbol: "BAD", Err: errors.New("x")},
		{Symbol: "AA", Value: 1},
		{Symbol: "MM", Value: 2},
	})
	want := []string{"MM", "AA", "ZZ", "BAD"}
	for i, w := range want {
		if got[i].Symbol != w {
			t.Errorf("position %d: expected %s, got %s", i, w, got[i].Symbol)
		}
	}
}

func TestFormatReport(t *testing.T) {
	r := &model.ScanReport{
		Indicator: "rsi",
		Entries: []model.ScanEntry{
			{Symbol: "GARAN", Value: 72.5, Trend: model.TrendUp},
			{Symbol: "THYAO", Err: collector.ErrDataUnavailable},
		},
		Succeeded: 1,
		Failed:    1,
	}
	text := FormatReport(r, 10)
	for _, want := range []string{"RSI Taraması", "GARAN", "72.50", "Veri alınamadı: THYAO (veri yok)"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in:\n%s", want, text)
		}
	}

	empty := FormatReport(&model.ScanReport{Indicator: "t3", Entries: []model.ScanEntry{{Symbol: "A", Err: collector.ErrDataUnavailable}}, Failed: 1}, 0)
	if !strings.Contains(empty, "Raporlanacak sonuç yok") {
		t.Errorf("expected an explicit nothing-to-report line, got %q", empty)
	}
}

func TestOrder_NaNRanksLast(t *testing.T) {
	got := Order([]model.ScanEntry{
		{Symbol: "AAA", Value: 1},
		{Symbol: "BBB", Value: math.NaN()},
		{Symbol: "CCC", Value: 9},
		{Symbol: "DDD", Value: 5},
	})
	want := []string{"CCC", "DDD", "AAA", "BBB"}
	for i, w := range want {
		if got[i].Symbol != w {
			t.Fatalf("position %d: expected %s, got %s (%v)", i, w, got[i].Symbol, got)
		}
	}
}

func TestScan_UndefinedScoreIsFailure(t *testing.T) {
	fc := &fakeComputer{scores: map[string]float64{"AAA": 1, "BBB": math.NaN(), "CCC": 9, "DDD": math.Inf(1)}}
	report, err := New(fc, 2, time.Second, nil).Scan(context.Background(), "sma50", []string{"AAA", "BBB", "CCC", "DDD"})
	if err != nil {
		t.Fatal(err)
	}
	if report.Succeeded != 2 || report.Failed != 2 {
		t.Fatalf("expected 2 ok / 2 failed, got %d / %d", report.Succeeded, report.Failed)
	}
	var got []string
	for _, e := range report.Entries {
		got = append(got, e.Symbol)
	}
	if strings.Join(got, ",") != "CCC,AAA,BBB,DDD" {
		t.Errorf("expected CCC,AAA,BBB,DDD got %s", strings.Join(got, ","))
	}
	if !errors.Is(report.Entries[2].Err, ErrUndefinedValue) {
		t.Errorf("expected ErrUndefinedValue, got %v", report.Entries[2].Err)
	}
	if text := FormatReport(report, 0); !strings.Contains(text, "BBB (değer tanımsız)") {
		t.Errorf("expected undefined reason in report:\n%s", text)
	}
}
