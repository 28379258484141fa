package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	kafkaadapter "github.com/harithj/lanka-sitrep/internal/adapter/kafka"
	"github.com/harithj/lanka-sitrep/internal/adapter/weatherapi"
	"github.com/harithj/lanka-sitrep/internal/api"
	"github.com/harithj/lanka-sitrep/internal/collector"
	"github.com/harithj/lanka-sitrep/internal/config"
	"github.com/harithj/lanka-sitrep/internal/observability"
	"github.com/harithj/lanka-sitrep/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		logger.Error("failed to load sources", "error", err)
		os.Exit(1)
	}

	st, err := store.New(cfg.DataDir, logger, metrics)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}

	// Alert publishing is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var publisher collector.AlertPublisher
	var closePublisher func() error
	if cfg.KafkaEnabled {
		p := kafkaadapter.NewPublisher(cfg, logger)
		publisher = p
		closePublisher = p.Close
		metrics.PublishEnabled.Set(1)
		logger.Info("alert publishing enabled", "topic", cfg.KafkaAlertTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("alert publishing disabled")
	}

	weatherClient := weatherapi.NewClient(cfg.WeatherAPIKey, cfg.WeatherAPIBaseURL, cfg.WeatherTimeout, logger)

	news := collector.NewNewsCollector(sources.News, st, cfg.ScrapeTimeout, logger, metrics)
	weather := collector.NewWeatherCollector(sources.Districts, weatherClient, st, logger, metrics)
	fuel := collector.NewFuelCollector(sources.FuelURL, st, cfg.ScrapeTimeout, logger, metrics)
	alerts := collector.NewAlertGenerator(st, publisher, logger, metrics)

	sched := collector.NewScheduler([]collector.Task{
		{Name: "news", Interval: cfg.NewsInterval, Run: news.Run},
		{Name: "weather", Interval: cfg.WeatherInterval, Run: weather.Run},
		{Name: "fuel", Interval: cfg.FuelInterval, Run: fuel.Run},
		{Name: "alerts", Interval: cfg.AlertsInterval, Run: alerts.Run},
		{Name: "cleanup", Interval: cfg.CleanupInterval, Run: func(context.Context) error {
			_, err := st.Cleanup(cfg.RetentionPeriod)
			return err
		}},
	}, logger, metrics)

	handler := api.NewHandler(st, sources.Districts, logger)
	srv := api.NewServer(cfg.HTTPAddr, handler, sched, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start collectors.
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	<-done
	if closePublisher != nil {
		if err := closePublisher(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
