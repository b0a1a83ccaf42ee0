package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PriceSentinel/internal/alert"
	"PriceSentinel/internal/api"
	"PriceSentinel/internal/collector"
	"PriceSentinel/internal/config"
	"PriceSentinel/internal/history"
	"PriceSentinel/internal/kvstore"
	"PriceSentinel/internal/metrics"
	"PriceSentinel/internal/notifier"
	"PriceSentinel/internal/recorder"
	"PriceSentinel/internal/scheduler"
	"PriceSentinel/internal/watchlist"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] PriceSentinel starting...")

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persistent state
	kv, err := kvstore.Open(ctx, cfg.StoreOptions())
	if err != nil {
		log.Fatalf("[FATAL] open %s store: %v", cfg.Store.Backend, err)
	}
	defer kv.Close()
	log.Printf("[INFO] state store: %s", cfg.Store.Backend)
	wl := watchlist.NewStore(kv)
	hist := history.NewLog(kv)

	fetcher := collector.NewHTTPFetcher(cfg.Source.BaseURL, cfg.Source.APIKey, cfg.Proxy)
	log.Printf("[INFO] data source: %s", fetcher.Name())
	col := collector.NewCollector(fetcher)

	// Alert channels
	var tn *notifier.TelegramNotifier
	notifiers := notifier.Multi{notifier.LogNotifier{}}
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		notifiers = append(notifiers, tn)
	}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := notifier.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kp.Close()
		notifiers = append(notifiers, kp)
		log.Printf("[INFO] publishing alerts to kafka topic %s", cfg.Kafka.Topic)
	}

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

	m := metrics.New()
	ev := alert.NewEvaluator(cfg.Alerts.DeviationThreshold, cfg.Alerts.ConfidenceThreshold)

	sched := scheduler.NewScheduler(ctx, cfg.SchedulerOptions(), col, wl, hist, ev, notifiers, rec, m)
	if err := sched.RegisterAll(); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.SetupRoutes(api.NewHandler(sched, wl, hist, m.Handler())),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("[INFO] HTTP API listening on %s", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] http server: %v", err)
		}
	}()

	if cfg.Schedule.RunOnStart {
		log.Println("[INFO] run_on_start enabled, executing primary cycle now")
		go sched.RunPrimaryNow(ctx)
	}

	log.Println("[INFO] PriceSentinel is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	select {
	case <-sched.Stop().Done():
	case <-shutdownCtx.Done():
		log.Println("[WARN] timed out waiting for running cycles")
	}
	cancel()
	log.Println("[INFO] PriceSentinel stopped")
}
