package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"stockroom/internal/catalog"
	"stockroom/internal/config"
	"stockroom/internal/events"
	"stockroom/internal/http/handlers"
	applog "stockroom/internal/log"
	"stockroom/internal/repos"
	"stockroom/internal/services"
	"stockroom/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	logger, err := applog.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(logger)
	logger.Info("starting", zap.Any("config", cfg.Redacted()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.OtelEndpoint)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.DBSeed {
		if err := repos.SeedDemo(db, logger); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	stockRepo := repos.NewStockRepo(db)
	var store services.StockStore = stockRepo
	if cfg.RedisAddr != "" {
		cache, err := repos.DialStockCache(ctx, cfg.RedisAddr, cfg.RedisTTL)
		if err != nil {
			return err
		}
		defer cache.Close()
		store = repos.NewCachedStockRepo(stockRepo, cache, logger.Named("cache"))
		logger.Info("stock cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		return err
	}
	defer publisher.Close()

	metrics := telemetry.NewMetrics()
	svc := services.NewInventoryService(store,
		catalog.New(catalog.Config{BaseURL: cfg.CatalogURL, Timeout: cfg.CatalogTimeout}),
		services.WithPublisher(publisher),
		services.WithLogger(logger.Named("inventory")),
		services.WithMetrics(metrics),
		services.WithListConcurrency(cfg.CatalogListConcurrency),
	)

	app := handlers.NewApp(cfg, handlers.NewDeps(svc, metrics))

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("port", cfg.Port))
		errc <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}

func newPublisher(cfg config.Config) (events.Publisher, error) {
	switch cfg.EventsBackend {
	case "amqp":
		return events.DialAMQP(cfg.AMQPURL, cfg.EventsTopic)
	case "kafka":
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.EventsTopic), nil
	default:
		return events.NopPublisher{}, nil
	}
}
