package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"forex-botv1/config"
	"forex-botv1/internal/alerts"
	"forex-botv1/internal/feed"
	"forex-botv1/internal/history"
	"forex-botv1/internal/logger"
	"forex-botv1/internal/metrics"
	"forex-botv1/internal/model"
	"forex-botv1/internal/notification"
	sqlitestore "forex-botv1/internal/store/sqlite"
	"forex-botv1/internal/telegram"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	logger.Init("forex-bot", slog.LevelInfo)
	log.Println("[bot] starting...")

	cfg := config.Load()
	symbols := cfg.ParsePairs()
	if len(symbols) == 0 {
		log.Fatal("[bot] no supported pairs configured")
	}
	log.Printf("[bot] supported pairs: %v", symbols)

	// ---- Metrics & health ----
	prom := metrics.New()
	health := metrics.NewHealthStatus()
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()

	// ---- Graceful shutdown ----
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// ---- Alert journal ----
	os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755)
	journal, err := sqlitestore.NewJournal(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("[bot] sqlite init failed: %v", err)
	}
	defer journal.Close()
	health.SetSQLiteOK(true)
	log.Println("[bot] alert journal ready")

	// ---- Notification backends ----
	tgClient := telegram.NewClient(cfg.TelegramToken)
	backends := []notification.Notifier{
		telegram.NewNotifier(tgClient, cfg.AssetsDir),
	}
	if cfg.AlertWebhookURL != "" {
		backends = append(backends, notification.NewWebhookNotifier(cfg.AlertWebhookURL))
		log.Printf("[bot] webhook sink enabled: %s", cfg.AlertWebhookURL)
	}
	var redisClient *goredis.Client
	if cfg.RedisAddr != "" {
		stream, err := notification.NewStreamNotifier(notification.StreamConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			log.Printf("[bot] WARNING: redis init failed: %v (continuing without alert stream)", err)
		} else {
			backends = append(backends, stream)
			defer stream.Close()
			redisClient = stream.Client()
			log.Println("[bot] redis alert stream ready")
		}
	}
	health.StartLivenessChecker(ctx, redisClient, journal.Ping, 15*time.Second)
	fanout := &notification.Fanout{Backends: backends}

	// ---- Alert service ----
	store := history.New(symbols, cfg.HistoryLength)
	service := alerts.New(ctx, alerts.Config{
		Period:    cfg.IndicatorPeriod,
		Threshold: cfg.SignalThreshold,
		Symbols:   symbols,
	}, store, fanout)
	service.OnAlert = func(a notification.Alert) {
		prom.AlertsSent.WithLabelValues(a.Signal).Inc()
		if err := journal.Record(a); err != nil {
			log.Printf("[bot] journal: %v", err)
		}
	}
	service.OnWorker = func(delta int) {
		prom.ActiveWorkers.Add(float64(delta))
	}
	service.OnNotifyError = func() {
		prom.NotifyErrors.Inc()
	}

	// ---- Price feed ----
	feedClient := feed.New(feed.Config{
		AppID:    cfg.DerivAppID,
		APIToken: cfg.DerivAPIToken,
		Symbols:  symbols,
	})
	feedClient.OnTick = func(tk model.Tick) {
		prom.TicksTotal.Inc()
		health.SetFeedConnected(true)
		health.SetLastTickTime(tk.TickTS)
		store.RecordTick(tk.Symbol, tk.Quote)
	}
	feedClient.OnReconnect = func() {
		prom.FeedReconnects.Inc()
		health.SetFeedConnected(false)
	}
	feedClient.OnParseError = func() {
		prom.ParseErrors.Inc()
	}
	go feedClient.Run(ctx)

	// ---- Telegram front end ----
	bot := telegram.NewBot(tgClient, service, journal, symbols, cfg.AssetsDir)
	go bot.Run(ctx)

	log.Println("[bot] running, press Ctrl+C to stop")
	<-sigCh
	log.Println("[bot] shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Stop(shutdownCtx)

	// Give in-flight alert sends a moment to finish.
	time.Sleep(500 * time.Millisecond)
	log.Println("[bot] stopped")
}
