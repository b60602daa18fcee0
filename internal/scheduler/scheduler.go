// Package scheduler runs the periodic universe scan broadcast.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"
	_ "time/tzdata"

	"BistSentinel/internal/dispatcher"
	"BistSentinel/internal/model"
	"BistSentinel/internal/recorder"
	"BistSentinel/internal/scanner"

	"github.com/robfig/cron/v3"
)

// DefaultTimezone is the exchange's local time.
const DefaultTimezone = "Europe/Istanbul"

// ScanRunner ranks a universe by one indicator.
type ScanRunner interface {
	Scan(ctx context.Context, code string, universe []string) (*model.ScanReport, error)
}

// Broadcaster delivers a scan report to every recipient.
type Broadcaster interface {
	BroadcastScan(ctx context.Context, report *model.ScanReport, text string) dispatcher.Result
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron        *cron.Cron
	Scanner     ScanRunner
	Broadcaster Broadcaster
	Recorder    recorder.Recorder
	Indicator   string
	Universe    []string
	ReportLimit int
	Ctx         context.Context
}

// NewScheduler creates a Scheduler whose cron expressions are evaluated in timezone.
func NewScheduler(ctx context.Context, timezone string, sc ScanRunner, b Broadcaster, rec recorder.Recorder) (*Scheduler, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Scanner:     sc,
		Broadcaster: b,
		Recorder:    rec,
		Indicator:   "t3",
		Universe:    model.BIST30,
		Ctx:         ctx,
	}, nil
}

// RegisterScan registers the scan broadcast. An empty expression disables it.
func (s *Scheduler) RegisterScan(scanCron string) error {
	if scanCron == "" {
		log.Println("[INFO] scheduled scan disabled")
		return nil
	}
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	log.Printf("[INFO] scheduled %s scan: %s", s.Indicator, scanCron)
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunScanNow executes the scan broadcast immediately.
func (s *Scheduler) RunScanNow() (*model.ScanReport, dispatcher.Result, error) {
	return s.runScan()
}

func (s *Scheduler) scanTask() {
	if _, _, err := s.runScan(); err != nil {
		log.Printf("[ERROR] scheduled scan: %v", err)
	}
}

func (s *Scheduler) runScan() (*model.ScanReport, dispatcher.Result, error) {
	log.Printf("[INFO] running %s scan over %d symbols", s.Indicator, len(s.Universe))
	report, err := s.Scanner.Scan(s.Ctx, s.Indicator, s.Universe)
	if err != nil {
		return nil, dispatcher.Result{}, err
	}
	if err := s.Recorder.RecordScan(report); err != nil {
		log.Printf("[ERROR] record scan: %v", err)
	}

	text := fmt.Sprintf("⏰ Planlı tarama | %s\n\n%s",
		report.StartedAt.In(s.Cron.Location()).Format("02.01.2006 15:04"),
		scanner.FormatReport(report, s.ReportLimit))
	res := s.Broadcaster.BroadcastScan(s.Ctx, report, text)
	return report, res, nil
}
