// Package scanner ranks a fixed universe of symbols by one indicator.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"BistSentinel/internal/calculator"
	"BistSentinel/internal/metrics"
	"BistSentinel/internal/model"

	"golang.org/x/sync/errgroup"
)

// ErrUndefinedValue marks a symbol whose indicator produced no finite ranking value.
var ErrUndefinedValue = errors.New("indicator value undefined")

// Computer runs the fetch + indicator step for one symbol.
type Computer interface {
	Compute(ctx context.Context, symbol, code string) (model.PriceSeries, model.IndicatorResult, error)
}

// Scanner fans the indicator step out over a universe with bounded parallelism.
type Scanner struct {
	Computer      Computer
	Concurrency   int
	SymbolTimeout time.Duration
	Metrics       *metrics.Metrics
}

// New creates a Scanner.
func New(c Computer, concurrency int, symbolTimeout time.Duration, m *metrics.Metrics) *Scanner {
	if concurrency <= 0 {
		concurrency = 5
	}
	return &Scanner{Computer: c, Concurrency: concurrency, SymbolTimeout: symbolTimeout, Metrics: m}
}

// Scan computes code for every symbol of universe. Per-symbol failures are
// kept as error entries; the only returned error is an unknown indicator code.
func (s *Scanner) Scan(ctx context.Context, code string, universe []string) (*model.ScanReport, error) {
	code = calculator.Normalize(code)
	if _, err := calculator.Lookup(code); err != nil {
		return nil, err
	}

	started := time.Now()
	entries := make([]model.ScanEntry, len(universe))

	var g errgroup.Group
	g.SetLimit(s.Concurrency)
	for i, sym := range universe {
		g.Go(func() error {
			entries[i] = s.scanOne(ctx, sym, code)
			return nil
		})
	}
	_ = g.Wait()

	report := &model.ScanReport{
		Indicator: code,
		Entries:   Order(entries),
		StartedAt: started,
		Duration:  time.Since(started),
	}
	for _, e := range report.Entries {
		if e.OK() {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	s.Metrics.ObserveScan(code, report.Succeeded, report.Failed, report.Duration)
	log.Printf("[INFO] scan %s: %d ok, %d failed in %v", code, report.Succeeded, report.Failed, report.Duration.Round(time.Millisecond))
	return report, nil
}

func (s *Scanner) scanOne(ctx context.Context, symbol, code string) model.ScanEntry {
	if s.SymbolTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.SymbolTimeout)
		defer cancel()
	}
	_, res, err := s.Computer.Compute(ctx, symbol, code)
	if err != nil {
		return model.ScanEntry{Symbol: symbol, Err: fmt.Errorf("%s: %w", symbol, err)}
	}
	if math.IsNaN(res.Score) || math.IsInf(res.Score, 0) {
		return model.ScanEntry{Symbol: symbol, Err: fmt.Errorf("%s: %w", symbol, ErrUndefinedValue)}
	}
	return model.ScanEntry{Symbol: symbol, Value: res.Score, Latest: res.Latest, Trend: res.Trend}
}

// Order sorts successful entries by value descending (ties by symbol) and
// appends failed entries in their original order. NaN values rank after
// every number.
func Order(entries []model.ScanEntry) []model.ScanEntry {
	ok := make([]model.ScanEntry, 0, len(entries))
	var failed []model.ScanEntry
	for _, e := range entries {
		if e.OK() {
			ok = append(ok, e)
		} else {
			failed = append(failed, e)
		}
	}
	sort.SliceStable(ok, func(i, j int) bool {
		ni, nj := math.IsNaN(ok[i].Value), math.IsNaN(ok[j].Value)
		if ni != nj {
			return nj
		}
		if !ni && ok[i].Value != ok[j].Value {
			return ok[i].Value > ok[j].Value
		}
		return ok[i].Symbol < ok[j].Symbol
	})
	return append(ok, failed...)
}
