package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"BistSentinel/internal/analyzer"
	"BistSentinel/internal/bot"
	"BistSentinel/internal/chart"
	"BistSentinel/internal/collector"
	"BistSentinel/internal/config"
	"BistSentinel/internal/dispatcher"
	"BistSentinel/internal/metrics"
	"BistSentinel/internal/notifier"
	"BistSentinel/internal/recorder"
	"BistSentinel/internal/scanner"
	"BistSentinel/internal/scheduler"
	"BistSentinel/internal/subscription"
	"BistSentinel/internal/webhook"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] BistSentinel starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	adminID, _ := cfg.AdminID()

	m := metrics.New()

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "vstrader":
		fetcher = collector.NewVsTraderFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case "mock":
		fetcher = &collector.MockFetcher{}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	gw := collector.NewGateway(fetcher, cfg.DataSource.Suffix, m)
	an := analyzer.New(gw, chart.NewPNGRenderer())
	sc := scanner.New(an, cfg.Scan.Concurrency, cfg.Scan.SymbolTimeout, m)

	// Init subscriber registry
	reg, err := subscription.NewRegistry(subscription.NewFileStore(cfg.Subscribers.File), m)
	if err != nil {
		log.Fatalf("[FATAL] load subscribers: %v", err)
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init Telegram notifier and broadcaster
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Proxy)
	sender := notifier.RetrySender{Notifier: tn, MaxRetries: cfg.Telegram.SendRetries}
	disp := dispatcher.New(sender, reg, adminID, cfg.Telegram.SendConcurrency, rec, m)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched, err := scheduler.NewScheduler(ctx, cfg.Schedule.Timezone, sc, disp, rec)
	if err != nil {
		log.Fatalf("[FATAL] init scheduler: %v", err)
	}
	sched.Indicator = cfg.Schedule.ScanIndicator
	sched.Universe = cfg.Scan.Universe
	sched.ReportLimit = cfg.Scan.ReportLimit
	if err := sched.RegisterScan(cfg.Schedule.ScanCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	router := bot.NewRouter(an, sc, reg, rec, adminID)
	router.Universe = cfg.Scan.Universe
	router.ScanLimit = cfg.Scan.ReportLimit
	go tn.StartPolling(ctx, func(ctx context.Context, u notifier.Update) ([]byte, string) {
		r := router.Handle(ctx, u.ChatID, u.User, u.Text)
		return r.Image, r.Text
	})
	log.Println("[INFO] Telegram polling started")

	// Start webhook server
	srv := webhook.NewServer(cfg.Webhook.Addr, disp, m)
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("[FATAL] webhook server: %v", err)
		}
	}()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing scan now")
		go func() {
			if _, _, err := sched.RunScanNow(); err != nil {
				log.Printf("[ERROR] startup scan: %v", err)
			}
		}()
	}

	log.Println("[INFO] BistSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] webhook shutdown: %v", err)
	}
	cancel()
	log.Println("[INFO] BistSentinel stopped")
}
