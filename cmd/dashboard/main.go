package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"InvestmentDashboard/internal/collector"
	"InvestmentDashboard/internal/config"
	"InvestmentDashboard/internal/notifier"
	"InvestmentDashboard/internal/recorder"
	"InvestmentDashboard/internal/scheduler"
	"InvestmentDashboard/internal/server"
	"InvestmentDashboard/internal/watchlist"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "path to the YAML config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("dashboard %s (commit %s, built %s)\n", config.Version, config.Commit, config.BuildDate)
		return
	}

	path := *cfgPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	setupLogging(cfg.Logging.Level, cfg.Logging.Format)
	log.Info().Str("version", config.Version).Str("config", path).Msg("InvestmentDashboard starting")

	fetcher := collector.NewYahooFetcher(collector.YahooOptions{
		BaseURL:   cfg.DataSource.BaseURL,
		CookieURL: cfg.DataSource.CookieURL,
		Range:     cfg.DataSource.Range,
		Interval:  cfg.DataSource.Interval,
		Proxy:     cfg.Proxy,
		Timeout:   cfg.DataSource.Timeout,
	})
	log.Info().Str("source", fetcher.Name()).Msg("data source ready")
	ctrl := watchlist.NewController(collector.NewCollector(fetcher))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Snapshot journal and bot are optional.
	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, "")
		sender = tn
	}

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Snapshot.Cron != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Snapshot.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			rec = sr
			defer sr.Close()
		}
	}

	sched := scheduler.NewScheduler(ctx, ctrl, sender, rec, cfg.Snapshot.Tickers)
	if cfg.Snapshot.Cron != "" {
		if err := sched.Register(cfg.Snapshot.Cron); err != nil {
			log.Fatal().Err(err).Msg("register snapshot task")
		}
		sched.Start()
		defer sched.Stop()
	}

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("Telegram polling started")
	}

	srv := server.New(cfg, ctrl)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received, stopping...")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("HTTP server exited")
		}
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
	log.Info().Msg("InvestmentDashboard stopped")
}

func setupLogging(level, format string) {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime})
	}
}
