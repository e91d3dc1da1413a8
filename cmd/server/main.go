package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"InsiderWatch/internal/cache"
	"InsiderWatch/internal/classifier"
	"InsiderWatch/internal/collector"
	"InsiderWatch/internal/config"
	"InsiderWatch/internal/enrichment"
	"InsiderWatch/internal/notifier"
	"InsiderWatch/internal/politics"
	"InsiderWatch/internal/recorder"
	"InsiderWatch/internal/scheduler"
	"InsiderWatch/internal/server"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Info().Msg("InsiderWatch starting...")

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel())
	if cfg.LogLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Data sources
	var prices collector.PriceFetcher
	if cfg.DataSource.BaseURL != "" {
		prices = collector.NewRESTPriceFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.DataSource.RequestsPerSec)
	} else {
		prices = collector.NewYahooFetcher(cfg.Proxy, cfg.DataSource.RequestsPerSec)
	}
	insiders := &collector.ScraperSource{Runner: &collector.ScriptRunner{
		Command: cfg.Scraper.Command,
		Args:    cfg.Scraper.Args,
		Dir:     cfg.Scraper.Dir,
	}}
	log.Info().Str("prices", prices.Name()).Str("insiders", insiders.Name()).Msg("data sources configured")

	col := collector.NewCollector(prices, insiders)
	col.Timeout = time.Duration(cfg.Enrichment.TimeoutSeconds) * time.Second
	col.HistoryDays = cfg.DataSource.HistoryDays

	cls := classifier.New(cfg.Classifier)
	enr := enrichment.New(col,
		enrichment.WithClassifier(cls),
		enrichment.WithConcurrency(cfg.Enrichment.Concurrency),
	)

	store, err := cache.NewStore(cfg.Enrichment.SnapshotFile)
	if err != nil {
		log.Fatal().Err(err).Msg("load enrichment snapshot")
	}

	// Run history
	var rec recorder.Recorder
	if sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath); err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		rec = recorder.NewNoopRecorder()
	} else {
		rec = sr
	}
	defer rec.Close()

	// Political trades are optional
	var trades politics.Store
	if cfg.Political.DSN != "" {
		pool, err := politics.NewPool(ctx, cfg.Political.DSN)
		if err != nil {
			log.Warn().Err(err).Msg("postgres unavailable, political trade endpoints disabled")
		} else {
			defer pool.Close()
			trades = politics.NewPostgresStore(pool)
		}
	}

	// Notifier
	var n notifier.Notifier = notifier.LogNotifier{}
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		chatID, _ := cfg.TelegramChatID()
		tn, err = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, chatID, cfg.Proxy)
		if err != nil {
			log.Warn().Err(err).Msg("init telegram failed, alerts go to the log")
		} else {
			n = tn
		}
	}

	sched := scheduler.NewScheduler(ctx, enr, store, n, rec)
	sched.Watchlist = cfg.Enrichment.Watchlist
	sched.Politics = trades
	sched.PoliticalLookbackDays = cfg.Political.LookbackDays
	for _, s := range cfg.Political.Scripts {
		sched.PoliticalScripts = append(sched.PoliticalScripts, &collector.ScriptRunner{Command: s.Command, Args: s.Args, Dir: s.Dir})
	}
	if err := sched.RegisterAll(cfg.Enrichment.Cron, cfg.Political.RefreshCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	if cfg.Enrichment.RunOnStart {
		log.Info().Msg("run_on_start enabled, enriching watchlist now")
		go sched.RunEnrichNow()
	}

	srv := server.New(cfg.Server.Addr, server.Deps{
		Classifier: cls,
		Enricher:   enr,
		Runner:     sched,
		Cache:      store,
		Prices:     col,
		Politics:   trades,
		Recorder:   rec,
	})

	log.Info().Msg("InsiderWatch is running. Press Ctrl+C to stop.")
	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("http server stopped")
	}
	log.Info().Msg("shutdown signal received, stopping...")
}
