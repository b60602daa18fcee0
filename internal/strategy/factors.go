package strategy

import (
	"fmt"
	"math"

	"BistSentinel/internal/model"
)

func unavailable(name string, weight float64) model.FactorScore {
	return model.FactorScore{Name: name, Weight: weight, Commentary: "veri yok"}
}

func factor(name string, score, weight float64, commentary string) model.FactorScore {
	return model.FactorScore{Name: name, RawScore: score, Weight: weight, Weighted: score * weight, Commentary: commentary}
}

// scoreSMA200Deviation scores how far the close sits above or below SMA200.
// Weight: 0.30
func scoreSMA200Deviation(results map[string]model.IndicatorResult) model.FactorScore {
	const name, weight = "SMA200 sapması", 0.30
	res, ok := results["sma200"]
	if !ok || !model.Defined(res.Score) {
		return unavailable(name, weight)
	}
	dev := res.Score

	var score float64
	switch {
	case dev >= 20:
		score = 2.0
	case dev >= 10:
		score = 1.5
	case dev >= 0:
		score = 1.0
	case dev >= -10:
		score = -1.0
	case dev >= -20:
		score = -1.5
	default:
		score = -2.0
	}
	return factor(name, score, weight, fmt.Sprintf("sapma %+.1f%%", dev))
}

// scoreEMACross scores the EMA20/EMA50 alignment.
// Weight: 0.20
func scoreEMACross(results map[string]model.IndicatorResult) model.FactorScore {
	const name, weight = "EMA20/EMA50", 0.20
	fast, ok1 := results["ema20"]
	slow, ok2 := results["ema50"]
	if !ok1 || !ok2 || !model.Defined(fast.Latest) || !model.Defined(slow.Latest) || slow.Latest == 0 {
		return unavailable(name, weight)
	}
	gap := (fast.Latest - slow.Latest) / slow.Latest * 100
	if gap >= 0 {
		return factor(name, 1.0, weight, fmt.Sprintf("EMA20 üstte (%+.1f%%)", gap))
	}
	return factor(name, -1.0, weight, fmt.Sprintf("EMA20 altta (%+.1f%%)", gap))
}

// scoreMACD scores the MACD histogram sign.
// Weight: 0.20
func scoreMACD(results map[string]model.IndicatorResult) model.FactorScore {
	const name, weight = "MACD", 0.20
	res, ok := results["macd"]
	if !ok || !model.Defined(res.Score) {
		return unavailable(name, weight)
	}
	if res.Score >= 0 {
		return factor(name, 1.0, weight, fmt.Sprintf("histogram %+.3f", res.Score))
	}
	return factor(name, -1.0, weight, fmt.Sprintf("histogram %+.3f", res.Score))
}

// scoreRSI rewards momentum but penalizes overbought readings and gives a
// small bounce credit to deeply oversold ones.
// Weight: 0.15
func scoreRSI(results map[string]model.IndicatorResult) model.FactorScore {
	const name, weight = "RSI", 0.15
	res, ok := results["rsi"]
	if !ok || !model.Defined(res.Latest) {
		return unavailable(name, weight)
	}
	rsi := res.Latest

	var score float64
	switch {
	case rsi >= 80:
		score = -1.5
	case rsi >= 70:
		score = -0.5
	case rsi >= 50:
		score = 1.0
	case rsi >= 30:
		score = -1.0
	default:
		score = 0.5
	}
	return factor(name, score, weight, fmt.Sprintf("RSI=%.0f", rsi))
}

// scoreADX scores trend direction from the DI lines, scaled by ADX strength.
// Weight: 0.15
func scoreADX(results map[string]model.IndicatorResult) model.FactorScore {
	const name, weight = "ADX/DI", 0.15
	res, ok := results["adx"]
	if !ok || !model.Defined(res.Latest) {
		return unavailable(name, weight)
	}
	plus, minus := lastValue(res.Line("plus_di")), lastValue(res.Line("minus_di"))
	if !model.Defined(plus) || !model.Defined(minus) {
		return unavailable(name, weight)
	}

	score := 0.5
	if res.Latest >= 25 {
		score = 1.5
	}
	if minus > plus {
		score = -score
	}
	return factor(name, score, weight, fmt.Sprintf("ADX=%.0f +DI=%.0f -DI=%.0f", res.Latest, plus, minus))
}

func lastValue(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}
