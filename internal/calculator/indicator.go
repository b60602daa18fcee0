package calculator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"BistSentinel/internal/model"
)

// Func computes one indicator over a price series.
type Func func(model.PriceSeries) (model.IndicatorResult, error)

var registry = map[string]Func{
	"t3":     func(s model.PriceSeries) (model.IndicatorResult, error) { return T3(s, T3Length, T3VolumeFactor) },
	"rsi":    func(s model.PriceSeries) (model.IndicatorResult, error) { return RSI(s, 14) },
	"macd":   func(s model.PriceSeries) (model.IndicatorResult, error) { return MACD(s, 12, 26, 9) },
	"bb":     func(s model.PriceSeries) (model.IndicatorResult, error) { return Bollinger(s, 20, 2) },
	"stoch":  func(s model.PriceSeries) (model.IndicatorResult, error) { return Stochastic(s, 14, 3) },
	"adx":    func(s model.PriceSeries) (model.IndicatorResult, error) { return ADX(s, 14) },
	"cci":    func(s model.PriceSeries) (model.IndicatorResult, error) { return CCI(s, 20) },
	"sma50":  func(s model.PriceSeries) (model.IndicatorResult, error) { return SMA(s, 50) },
	"sma200": func(s model.PriceSeries) (model.IndicatorResult, error) { return SMA(s, 200) },
	"ema20":  func(s model.PriceSeries) (model.IndicatorResult, error) { return EMA(s, 20) },
	"ema50":  func(s model.PriceSeries) (model.IndicatorResult, error) { return EMA(s, 50) },
}

var aliases = map[string]string{
	"till":   "t3",
	"tilson": "t3",
}

// Normalize lower-cases an indicator code and resolves aliases.
func Normalize(code string) string {
	c := strings.ToLower(strings.TrimSpace(code))
	if a, ok := aliases[c]; ok {
		return a
	}
	return c
}

// Lookup returns the indicator function for code.
func Lookup(code string) (Func, error) {
	fn, ok := registry[Normalize(code)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIndicator, code)
	}
	return fn, nil
}

// Compute runs the indicator named by code over s.
func Compute(code string, s model.PriceSeries) (model.IndicatorResult, error) {
	fn, err := Lookup(code)
	if err != nil {
		return model.IndicatorResult{}, err
	}
	return fn(s)
}

// Codes lists the supported indicator codes.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for c := range registry {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

func itoa(n int) string { return strconv.Itoa(n) }
