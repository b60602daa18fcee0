// Package strategy folds several indicator readings into one weighted verdict.
package strategy

import "BistSentinel/internal/model"

// Tiers maps a total score to a verdict label, highest first.
var Tiers = []struct {
	MinScore float64
	Label    string
}{
	{1.0, "GÜÇLÜ AL 🟢🟢"},
	{0.3, "AL 🟢"},
	{-0.3, "NÖTR ⚪"},
	{-1.0, "SAT 🔴"},
}

// DefaultLabel is used for scores below the last tier.
const DefaultLabel = "GÜÇLÜ SAT 🔴🔴"

// Codes lists the indicators Evaluate reads.
var Codes = []string{"sma200", "ema20", "ema50", "macd", "rsi", "adx"}

// mapTier maps a total score to a verdict label.
func mapTier(totalScore float64) string {
	for _, t := range Tiers {
		if totalScore >= t.MinScore {
			return t.Label
		}
	}
	return DefaultLabel
}

// Evaluate computes the composite signal from indicator results keyed by code.
// Missing or undefined indicators contribute a zero score.
func Evaluate(results map[string]model.IndicatorResult) *model.Signal {
	factors := []model.FactorScore{
		scoreSMA200Deviation(results),
		scoreEMACross(results),
		scoreMACD(results),
		scoreRSI(results),
		scoreADX(results),
	}

	var total float64
	for _, f := range factors {
		total += f.Weighted
	}

	signal := &model.Signal{
		Factors:    factors,
		TotalScore: total,
		Label:      mapTier(total),
	}

	if rsi, ok := results["rsi"]; ok && rsi.Latest > 85 {
		signal.WarningMsg = "⚠️ RSI > 85: aşırı alım, kâr realizasyonu riski"
	}
	return signal
}
