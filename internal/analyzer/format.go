package analyzer

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"BistSentinel/internal/calculator"
	"BistSentinel/internal/model"
	"BistSentinel/internal/strategy"
)

var titles = map[string]string{
	"t3":     "T3(6, 0.9)",
	"rsi":    "RSI(14)",
	"macd":   "MACD(12, 26, 9)",
	"bb":     "Bollinger(20, 2)",
	"stoch":  "Stokastik(14, 3)",
	"adx":    "ADX(14)",
	"cci":    "CCI(20)",
	"sma50":  "SMA50",
	"sma200": "SMA200",
	"ema20":  "EMA20",
	"ema50":  "EMA50",
}

func indicatorTitle(code string) string {
	if t, ok := titles[calculator.Normalize(code)]; ok {
		return t
	}
	return strings.ToUpper(code)
}

// TrendLabel renders a trend for chat output.
func TrendLabel(t model.Trend) string {
	switch t {
	case model.TrendUp:
		return "YÜKSELİŞ 🟢"
	case model.TrendDown:
		return "DÜŞÜŞ 🔴"
	default:
		return "-"
	}
}

// FormatSummary renders the plain-text caption for a single-indicator analysis.
func FormatSummary(symbol string, plan Plan, series model.PriceSeries, res model.IndicatorResult) string {
	var b strings.Builder
	price := series.Last().Close
	b.WriteString(fmt.Sprintf("📊 %s Analizi (%s)\n", symbol, plan.Label))
	b.WriteString(fmt.Sprintf("Fiyat: %.2f\n", price))

	title := indicatorTitle(res.Code)
	switch res.Code {
	case "macd":
		b.WriteString(fmt.Sprintf("%s: %.3f | Sinyal: %.3f | Histogram: %.3f\n",
			title, res.Latest, lastDefined(res.Line("signal")), res.Score))
	case "bb":
		b.WriteString(fmt.Sprintf("%s: Üst %.2f | Orta %.2f | Alt %.2f\n",
			title, lastDefined(res.Line("upper")), res.Latest, lastDefined(res.Line("lower"))))
		b.WriteString(fmt.Sprintf("%%B: %.2f\n", res.Score))
	case "stoch":
		b.WriteString(fmt.Sprintf("%s: %%K %.2f | %%D %.2f\n", title, res.Latest, lastDefined(res.Line("d"))))
	case "adx":
		b.WriteString(fmt.Sprintf("%s: %.2f | +DI %.2f | -DI %.2f\n",
			title, res.Latest, lastDefined(res.Line("plus_di")), lastDefined(res.Line("minus_di"))))
	default:
		b.WriteString(fmt.Sprintf("%s: %.2f\n", title, res.Latest))
	}
	if note := zoneNote(res); note != "" {
		b.WriteString(fmt.Sprintf("Durum: %s\n", note))
	}
	b.WriteString(fmt.Sprintf("Trend: %s", TrendLabel(res.Trend)))
	return b.String()
}

// zoneNote flags overbought/oversold readings of bounded oscillators.
func zoneNote(res model.IndicatorResult) string {
	switch res.Code {
	case "rsi":
		return band(res.Latest, 30, 70)
	case "stoch":
		return band(res.Latest, 20, 80)
	case "cci":
		return band(res.Latest, -100, 100)
	case "adx":
		if res.Latest >= 25 {
			return "Güçlü trend"
		}
		return "Zayıf trend"
	}
	return ""
}

func band(v, low, high float64) string {
	switch {
	case v >= high:
		return "Aşırı alım"
	case v <= low:
		return "Aşırı satım"
	default:
		return "Nötr"
	}
}

func lastDefined(values []float64) float64 {
	for i := len(values) - 1; i >= 0; i-- {
		if !math.IsNaN(values[i]) {
			return values[i]
		}
	}
	return math.NaN()
}

// SummaryCodes are the indicators aggregated by TechnicalSummary, in report order.
var SummaryCodes = []string{"rsi", "macd", "bb", "stoch", "adx", "cci", "sma50", "sma200", "ema20", "ema50"}

// TechnicalSummary aggregates the latest value of several daily indicators
// into one multi-line report.
func (a *Analyzer) TechnicalSummary(ctx context.Context, symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	series, err := a.Source.Fetch(ctx, symbol, dailyPlan.Interval, dailyPlan.Period)
	if err != nil {
		log.Printf("[WARN] technical summary %s: %v", symbol, err)
		return Explain(symbol, "", err)
	}

	var b strings.Builder
	price := series.Last().Close
	b.WriteString(fmt.Sprintf("📋 %s Teknik Analiz Özeti (Günlük)\n", symbol))
	b.WriteString(fmt.Sprintf("Fiyat: %.2f\n", price))
	if high, low, err := calculator.HighLow(series.Bars, 252); err == nil {
		pos, _ := calculator.RangePosition(price, high, low)
		b.WriteString(fmt.Sprintf("52H Aralık: %.2f - %.2f (konum %%%.0f)\n", low, high, pos*100))
	}
	b.WriteString("\n")

	results := make(map[string]model.IndicatorResult, len(SummaryCodes))
	up, down := 0, 0
	for _, code := range SummaryCodes {
		res, err := calculator.Compute(code, series)
		if err != nil {
			b.WriteString(fmt.Sprintf("%s: veri yetersiz\n", indicatorTitle(code)))
			continue
		}
		results[code] = res
		switch res.Trend {
		case model.TrendUp:
			up++
		case model.TrendDown:
			down++
		}
		b.WriteString(summaryLine(res))
	}

	signal := strategy.Evaluate(results)
	b.WriteString("\nFaktörler:\n")
	for _, f := range signal.Factors {
		b.WriteString(fmt.Sprintf("  %s (%s): %+.1f x %.2f = %+.3f\n", f.Name, f.Commentary, f.RawScore, f.Weight, f.Weighted))
	}
	b.WriteString(fmt.Sprintf("\nGenel Görünüm: %s (skor %+.2f, %d pozitif / %d negatif)", signal.Label, signal.TotalScore, up, down))
	if signal.WarningMsg != "" {
		b.WriteString("\n" + signal.WarningMsg)
	}
	return b.String()
}

func summaryLine(res model.IndicatorResult) string {
	title := indicatorTitle(res.Code)
	arrow := "▼"
	if res.Trend == model.TrendUp {
		arrow = "▲"
	}
	switch res.Code {
	case "macd":
		return fmt.Sprintf("%s: %.3f / Sinyal %.3f %s\n", title, res.Latest, lastDefined(res.Line("signal")), arrow)
	case "bb":
		return fmt.Sprintf("%s: %.2f - %.2f (%%B %.2f) %s\n",
			title, lastDefined(res.Line("lower")), lastDefined(res.Line("upper")), res.Score, arrow)
	case "rsi", "stoch", "cci", "adx":
		return fmt.Sprintf("%s: %.2f (%s) %s\n", title, res.Latest, zoneNote(res), arrow)
	default:
		return fmt.Sprintf("%s: %.2f (%+.2f%%) %s\n", title, res.Latest, res.Score, arrow)
	}
}
