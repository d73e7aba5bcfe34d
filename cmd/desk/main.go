package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"SignalDesk/internal/api"
	"SignalDesk/internal/classifier"
	"SignalDesk/internal/collector"
	"SignalDesk/internal/config"
	"SignalDesk/internal/logging"
	"SignalDesk/internal/metrics"
	"SignalDesk/internal/model"
	"SignalDesk/internal/notifier"
	"SignalDesk/internal/recorder"
	"SignalDesk/internal/scheduler"
	"SignalDesk/internal/workbook"
)

func main() {
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootLog := logging.Setup("info", "console")
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logging.Setup(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("SignalDesk starting")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	var fetcher collector.Fetcher
	if cfg.DataSource.BaseURL != "" {
		fetcher = collector.NewRestFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source selected")

	col := collector.NewCollector(fetcher, collector.IndicatorParams{
		StochWindow:  cfg.Indicators.StochWindow,
		StochKSmooth: cfg.Indicators.StochKSmooth,
		StochDSmooth: cfg.Indicators.StochDSmooth,
		CCIPeriod:    cfg.Indicators.CCIPeriod,
		DMIPeriod:    cfg.Indicators.DMIPeriod,
		SlopePeriod:  cfg.Indicators.SlopePeriod,
	}, log)

	cls, err := classifier.New(cfg.Classifier.SlopeThreshold)
	if err != nil {
		log.Fatal().Err(err).Msg("init classifier")
	}

	wb := workbook.Open(cfg.Workbook.Path, cfg.Workbook.SymbolsSheet)

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("sqlite recorder unavailable, signal history disabled")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
	m := metrics.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(ctx, col, cls, wb, rec, tn, m, cfg.Symbols, log)
	if err := sched.RegisterAll(map[model.Timeframe]string{
		model.TimeframeMonthly: cfg.Schedule.MonthlyCron,
		model.TimeframeWeekly:  cfg.Schedule.WeeklyCron,
		model.TimeframeDaily:   cfg.Schedule.DailyCron,
		model.Timeframe4h:      cfg.Schedule.FourHourCron,
	}); err != nil {
		log.Fatal().Err(err).Msg("register cron schedules")
	}
	sched.Start()
	defer sched.Stop()

	if tn.Enabled() {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	srv := api.NewServer(sched, wb, cfg.Classifier.SlopeThreshold, cfg.Server.MetricsEnabled, log)
	go func() {
		if err := srv.Start(cfg.Server.ListenAddr); err != nil {
			log.Error().Err(err).Msg("http server stopped")
		}
	}()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, scanning daily timeframe now")
		go func() {
			if err := sched.Refresh(model.TimeframeDaily); err != nil {
				log.Error().Err(err).Msg("startup refresh failed")
			}
		}()
	}

	log.Info().Msg("SignalDesk is running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	log.Info().Msg("SignalDesk stopped")
}
