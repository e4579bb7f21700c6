package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	httpadapter "github.com/couchcryptid/jma-forecast/internal/adapter/http"
	"github.com/couchcryptid/jma-forecast/internal/adapter/jma"
	kafkaadapter "github.com/couchcryptid/jma-forecast/internal/adapter/kafka"
	"github.com/couchcryptid/jma-forecast/internal/adapter/sqlite"
	"github.com/couchcryptid/jma-forecast/internal/config"
	"github.com/couchcryptid/jma-forecast/internal/domain"
	"github.com/couchcryptid/jma-forecast/internal/forecast"
	"github.com/couchcryptid/jma-forecast/internal/observability"
	"github.com/couchcryptid/jma-forecast/internal/prefetch"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Interfaces stay nil when a feature is off so the service sees it as absent.
	var store domain.ForecastStore
	var db *sqlite.Store
	if cfg.StoreEnabled {
		db, err = sqlite.Open(ctx, cfg.StorePath, logger)
		if err != nil {
			logger.Error("failed to open forecast store", "path", cfg.StorePath, "error", err)
			os.Exit(1)
		}
		store = db
		logger.Info("forecast store enabled", "path", cfg.StorePath)
	} else {
		logger.Info("forecast store disabled")
	}

	var publisher domain.EventPublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("forecast events enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	client := jma.NewClient(cfg, metrics, logger)
	svc := forecast.New(jma.NewCachedAreaSource(client), client, store, publisher, logger, metrics)

	var scheduler *prefetch.Scheduler
	if len(cfg.PrefetchAreas) > 0 {
		scheduler, err = prefetch.New(cfg.PrefetchSchedule, cfg.PrefetchAreas, svc, logger, metrics)
		if err != nil {
			logger.Error("failed to configure prefetch", "error", err)
			os.Exit(1)
		}
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// Load the directory up front; on failure the first page view retries.
		dir, err := svc.Directory(gctx)
		if err != nil {
			logger.Warn("area directory not loaded", "error", err)
			return nil
		}
		logger.Info("area directory loaded", "centers", len(dir.Centers), "offices", len(dir.Offices))
		return nil
	})
	if scheduler != nil {
		scheduler.Start(gctx)
	}

	<-gctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if scheduler != nil {
		scheduler.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := g.Wait(); err != nil {
		logger.Error("http server error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("forecast store close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
