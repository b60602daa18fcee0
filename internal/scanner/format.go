package scanner

import (
	"errors"
	"fmt"
	"strings"

	"BistSentinel/internal/calculator"
	"BistSentinel/internal/model"
)

// FormatReport renders a scan report as plain text. limit caps the ranked
// lines (0 means all).
func FormatReport(r *model.ScanReport, limit int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔎 %s Taraması (%d hisse)\n", strings.ToUpper(r.Indicator), len(r.Entries)))
	b.WriteString(fmt.Sprintf("✅ %d başarılı | ❌ %d başarısız\n\n", r.Succeeded, r.Failed))

	if r.Succeeded == 0 {
		b.WriteString("Raporlanacak sonuç yok: hiçbir hisse için veri alınamadı.")
		return b.String()
	}

	rank := 0
	var failed []string
	for _, e := range r.Entries {
		if !e.OK() {
			failed = append(failed, fmt.Sprintf("%s (%s)", e.Symbol, reason(e.Err)))
			continue
		}
		rank++
		if limit > 0 && rank > limit {
			continue
		}
		arrow := "🔴"
		if e.Trend == model.TrendUp {
			arrow = "🟢"
		}
		b.WriteString(fmt.Sprintf("%2d. %-6s %s %s\n", rank, e.Symbol, formatValue(r.Indicator, e), arrow))
	}
	if limit > 0 && rank > limit {
		b.WriteString(fmt.Sprintf("... ve %d hisse daha\n", rank-limit))
	}
	if len(failed) > 0 {
		b.WriteString("\nVeri alınamadı: " + strings.Join(failed, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatValue(code string, e model.ScanEntry) string {
	switch code {
	case "t3", "sma50", "sma200", "ema20", "ema50":
		return fmt.Sprintf("%+.2f%% (%.2f)", e.Value, e.Latest)
	case "bb":
		return fmt.Sprintf("%%B %.2f", e.Value)
	case "macd":
		return fmt.Sprintf("hist %+.3f", e.Value)
	default:
		return fmt.Sprintf("%.2f", e.Value)
	}
}

func reason(err error) string {
	switch {
	case errors.Is(err, calculator.ErrInsufficientHistory):
		return "yetersiz geçmiş"
	case errors.Is(err, ErrUndefinedValue):
		return "değer tanımsız"
	}
	return "veri yok"
}
