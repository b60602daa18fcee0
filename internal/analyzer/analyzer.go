// Package analyzer runs the fetch -> indicator -> chart pipeline for one symbol.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log"
	"strings"

	"BistSentinel/internal/calculator"
	"BistSentinel/internal/chart"
	"BistSentinel/internal/collector"
	"BistSentinel/internal/model"

	"golang.org/x/sync/errgroup"
)

// Source provides price history for a symbol.
type Source interface {
	Fetch(ctx context.Context, symbol, interval, period string) (model.PriceSeries, error)
}

// Result is what the presentation layer receives: an optional PNG and a text.
type Result struct {
	Image []byte
	Text  string
}

// Plan is the fetch window used for an indicator.
type Plan struct {
	Interval    string
	Period      string
	Label       string
	LastDayOnly bool // chart only the last session, compute on the full window
}

var (
	intradayPlan = Plan{Interval: "5m", Period: "5d", Label: "5dk", LastDayOnly: true}
	dailyPlan    = Plan{Interval: "1d", Period: "1y", Label: "Günlük"}
)

// PlanFor returns the fetch window for an indicator code.
func PlanFor(code string) Plan {
	if calculator.Normalize(code) == "t3" {
		return intradayPlan
	}
	return dailyPlan
}

// Analyzer orchestrates single-symbol analysis.
type Analyzer struct {
	Source   Source
	Renderer chart.Renderer
}

// New creates an Analyzer. renderer may be nil for text-only output.
func New(src Source, renderer chart.Renderer) *Analyzer {
	return &Analyzer{Source: src, Renderer: renderer}
}

// Compute fetches the window for code and computes the indicator over it.
func (a *Analyzer) Compute(ctx context.Context, symbol, code string) (model.PriceSeries, model.IndicatorResult, error) {
	fn, err := calculator.Lookup(code)
	if err != nil {
		return model.PriceSeries{}, model.IndicatorResult{}, err
	}
	plan := PlanFor(code)
	series, err := a.Source.Fetch(ctx, symbol, plan.Interval, plan.Period)
	if err != nil {
		return model.PriceSeries{}, model.IndicatorResult{}, err
	}
	res, err := fn(series)
	if err != nil {
		return series, model.IndicatorResult{}, err
	}
	return series, res, nil
}

// Analyze computes one indicator for symbol and returns a chart with a summary.
// Failures come back as a nil image with an explanatory text.
func (a *Analyzer) Analyze(ctx context.Context, symbol, code string) Result {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	code = calculator.Normalize(code)

	series, res, err := a.Compute(ctx, symbol, code)
	if err != nil {
		log.Printf("[WARN] analyze %s/%s: %v", symbol, code, err)
		return Result{Text: Explain(symbol, code, err)}
	}

	plan := PlanFor(code)
	text := FormatSummary(symbol, plan, series, res)
	if a.Renderer == nil {
		return Result{Text: text}
	}

	plot, overlays := chartInputs(plan, series, res)
	title := fmt.Sprintf("%s - %s %s", symbol, plan.Label, indicatorTitle(code))
	img, err := a.Renderer.Render(plot, overlays, title)
	if err != nil {
		log.Printf("[ERROR] render %s/%s: %v", symbol, code, err)
		return Result{Text: text}
	}
	return Result{Image: img, Text: text}
}

// Price returns the last close of symbol as a one-line quote.
func (a *Analyzer) Price(ctx context.Context, symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	series, err := a.Source.Fetch(ctx, symbol, "1d", "5d")
	if err != nil {
		log.Printf("[WARN] price %s: %v", symbol, err)
		return fmt.Sprintf("%s bulunamadı veya veri yok.", symbol)
	}
	return fmt.Sprintf("%s: %.2f TL", symbol, series.Last().Close)
}

// Prices quotes several symbols concurrently, keeping the input order.
func (a *Analyzer) Prices(ctx context.Context, symbols []string) []string {
	out := make([]string, len(symbols))
	var g errgroup.Group
	g.SetLimit(5)
	for i, sym := range symbols {
		g.Go(func() error {
			out[i] = a.Price(ctx, sym)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Explain turns a pipeline error into a user-facing message.
func Explain(symbol, code string, err error) string {
	switch {
	case errors.Is(err, collector.ErrDataUnavailable):
		return fmt.Sprintf("%s bulunamadı veya veri yok.", symbol)
	case errors.Is(err, calculator.ErrInsufficientHistory):
		return fmt.Sprintf("%s için %s hesaplamaya yetecek kadar veri yok.", symbol, indicatorTitle(code))
	case errors.Is(err, calculator.ErrUnknownIndicator):
		return fmt.Sprintf("Bilinmeyen indikatör: %s\nKullanılabilir kodlar: %s", code, strings.Join(calculator.Codes(), ", "))
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Sprintf("%s için istek zaman aşımına uğradı.", symbol)
	default:
		return fmt.Sprintf("Hata oluştu: %v", err)
	}
}

// chartInputs selects the bars to plot and the overlays for an indicator.
func chartInputs(plan Plan, series model.PriceSeries, res model.IndicatorResult) (model.PriceSeries, []chart.Overlay) {
	overlays := overlaysFor(res)
	if !plan.LastDayOnly {
		return series, overlays
	}
	day := series.LastDay()
	offset := series.Len() - day.Len()
	for i := range overlays {
		overlays[i].Values = overlays[i].Values[offset:]
	}
	return day, overlays
}

func overlaysFor(res model.IndicatorResult) []chart.Overlay {
	ov := func(name string, v []float64, c color.RGBA, p chart.Panel) chart.Overlay {
		return chart.Overlay{Name: name, Values: v, Color: c, Panel: p}
	}
	switch res.Code {
	case "t3":
		return []chart.Overlay{
			ov("T3 up", res.Line("up"), chart.ColorUp, chart.PanelPrice),
			ov("T3 down", res.Line("down"), chart.ColorDown, chart.PanelPrice),
		}
	case "bb":
		return []chart.Overlay{
			ov("BB upper", res.Line("upper"), chart.ColorBlue, chart.PanelPrice),
			ov("BB mid", res.Values, chart.ColorOrange, chart.PanelPrice),
			ov("BB lower", res.Line("lower"), chart.ColorBlue, chart.PanelPrice),
		}
	case "macd":
		return []chart.Overlay{
			ov("hist", res.Line("hist"), chart.ColorGrey, chart.PanelLower),
			ov("MACD", res.Values, chart.ColorBlue, chart.PanelLower),
			ov("signal", res.Line("signal"), chart.ColorOrange, chart.PanelLower),
		}
	case "stoch":
		return []chart.Overlay{
			ov("%K", res.Values, chart.ColorBlue, chart.PanelLower),
			ov("%D", res.Line("d"), chart.ColorOrange, chart.PanelLower),
		}
	case "adx":
		return []chart.Overlay{
			ov("ADX", res.Values, chart.ColorPurple, chart.PanelLower),
			ov("+DI", res.Line("plus_di"), chart.ColorUp, chart.PanelLower),
			ov("-DI", res.Line("minus_di"), chart.ColorDown, chart.PanelLower),
		}
	case "rsi", "cci":
		return []chart.Overlay{ov(strings.ToUpper(res.Code), res.Values, chart.ColorPurple, chart.PanelLower)}
	default:
		return []chart.Overlay{ov(strings.ToUpper(res.Code), res.Values, chart.ColorOrange, chart.PanelPrice)}
	}
}
