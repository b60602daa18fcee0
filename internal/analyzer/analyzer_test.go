package analyzer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"BistSentinel/internal/chart"
	"BistSentinel/internal/collector"
	"BistSentinel/internal/model"
)

type fakeSource struct {
	mu     sync.Mutex
	series map[string]model.PriceSeries
	calls  []string
}

func (f *fakeSource) Fetch(_ context.Context, symbol, interval, period string) (model.PriceSeries, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, symbol+"/"+interval+"/"+period)
	s, ok := f.series[symbol]
	if !ok {
		return model.PriceSeries{}, fmt.Errorf("%w: %s", collector.ErrDataUnavailable, symbol)
	}
	return s, nil
}

type fakeRenderer struct {
	err      error
	bars     int
	overlays []chart.Overlay
}

func (r *fakeRenderer) Render(s model.PriceSeries, overlays []chart.Overlay, _ string) ([]byte, error) {
	r.bars, r.overlays = s.Len(), overlays
	if r.err != nil {
		return nil, r.err
	}
	return []byte("png"), nil
}

// intraday builds days sessions of perDay 5-minute bars.
func intraday(days, perDay int) model.PriceSeries {
	var bars []model.OHLCV
	for d := 0; d < days; d++ {
		open := time.Date(2025, 3, 3+d, 10, 0, 0, 0, time.UTC)
		for i := 0; i < perDay; i++ {
			p := 100 + 2*math.Sin(float64(len(bars))/7)
			bars = append(bars, model.OHLCV{Time: open.Add(time.Duration(i) * 5 * time.Minute), Open: p, High: p + 1, Low: p - 1, Close: p})
		}
	}
	return model.PriceSeries{Symbol: "THYAO", Interval: "5m", Bars: bars}
}

func daily(n int) model.PriceSeries {
	bars := make([]model.OHLCV, n)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		p := 50 + float64(i)*0.1 + math.Sin(float64(i)/3)
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: p, High: p + 0.5, Low: p - 0.5, Close: p}
	}
	return model.PriceSeries{Symbol: "GARAN", Interval: "1d", Bars: bars}
}

func TestAnalyze_T3ChartsLastDayOnly(t *testing.T) {
	src := &fakeSource{series: map[string]model.PriceSeries{"THYAO": intraday(3, 60)}}
	r := &fakeRenderer{}
	res := New(src, r).Analyze(context.Background(), "thyao", "till")

	if res.Image == nil {
		t.Fatalf("expected a chart, got text %q", res.Text)
	}
	if src.calls[0] != "THYAO/5m/5d" {
		t.Errorf("expected a 5m/5d fetch, got %s", src.calls[0])
	}
	if r.bars != 60 {
		t.Errorf("expected only the last session (60 bars) to be plotted, got %d", r.bars)
	}
	if len(r.overlays) != 2 {
		t.Fatalf("expected up/down T3 overlays, got %d", len(r.overlays))
	}
	for _, o := range r.overlays {
		if len(o.Values) != r.bars {
			t.Errorf("overlay %s misaligned: %d values", o.Name, len(o.Values))
		}
	}
	if !strings.Contains(res.Text, "T3(6, 0.9)") || !strings.Contains(res.Text, "Trend:") {
		t.Errorf("unexpected summary: %q", res.Text)
	}
}

func TestAnalyze_FailuresBecomeText(t *testing.T) {
	src := &fakeSource{series: map[string]model.PriceSeries{"SHORT": daily(5)}}
	a := New(src, &fakeRenderer{})

	tests := []struct {
		symbol, code, want string
	}{
		{"MISSING", "rsi", "bulunamadı"},
		{"SHORT", "rsi", "yetecek kadar veri yok"},
		{"SHORT", "foo", "Bilinmeyen indikatör"},
	}
	for _, tt := range tests {
		res := a.Analyze(context.Background(), tt.symbol, tt.code)
		if res.Image != nil {
			t.Errorf("%s/%s: expected no image", tt.symbol, tt.code)
		}
		if !strings.Contains(res.Text, tt.want) {
			t.Errorf("%s/%s: expected %q in %q", tt.symbol, tt.code, tt.want, res.Text)
		}
	}
}

func TestAnalyze_RenderFailureKeepsSummary(t *testing.T) {
	src := &fakeSource{series: map[string]model.PriceSeries{"GARAN": daily(120)}}
	res := New(src, &fakeRenderer{err: errors.New("boom")}).Analyze(context.Background(), "GARAN", "macd")
	if res.Image != nil {
		t.Error("expected no image when rendering fails")
	}
	if !strings.Contains(res.Text, "MACD") {
		t.Errorf("expected the MACD summary, got %q", res.Text)
	}
}

func TestAnalyze_WithoutRenderer(t *testing.T) {
	src := &fakeSource{series: map[string]model.PriceSeries{"GARAN": daily(120)}}
	res := New(src, nil).Analyze(context.Background(), "GARAN", "rsi")
	if res.Image != nil || !strings.Contains(res.Text, "RSI(14)") {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestTechnicalSummary(t *testing.T) {
	src := &fakeSource{series: map[string]model.PriceSeries{"GARAN": daily(120)}}
	text := New(src, nil).TechnicalSummary(context.Background(), "garan")
	for _, want := range []string{"GARAN Teknik Analiz", "RSI(14):", "MACD(12, 26, 9):", "SMA200: veri yetersiz", "Genel Görünüm"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in summary:\n%s", want, text)
		}
	}
	missing := New(src, nil).TechnicalSummary(context.Background(), "NONE")
	if !strings.Contains(missing, "bulunamadı") {
		t.Errorf("expected a no-data message, got %q", missing)
	}
}

func TestPrices_KeepsOrder(t *testing.T) {
	src := &fakeSource{series: map[string]model.PriceSeries{"GARAN": daily(10), "THYAO": intraday(1, 10)}}
	got := New(src, nil).Prices(context.Background(), []string{"THYAO", "NONE", "GARAN"})
	if len(got) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(got))
	}
	if !strings.HasPrefix(got[0], "THYAO: ") || !strings.Contains(got[1], "NONE bulunamadı") || !strings.HasPrefix(got[2], "GARAN: ") {
		t.Errorf("unexpected quotes: %q", got)
	}
}
