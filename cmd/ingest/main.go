package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/auth"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/config"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/delivery"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/events"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/observability"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/persistence"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/repository"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	dispatcher := events.NewInMemoryDispatcher()
	csvLogger, err := delivery.NewCSVLogger(cfg.Paths.DeliveryLogDir, cfg.Delivery.LogPrefix)
	if err != nil {
		logger.Fatal("failed to init delivery log", zap.Error(err))
	}
	csvLogger.Register(dispatcher)

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if pg.Enabled() {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
		store := delivery.NewStoreSink(repository.NewOutcomeRepository(pg.PoolHandle()), logger)
		store.Register(dispatcher)
	}

	metrics := observability.NewMetrics()
	tokens := auth.NewTokenManager(cfg.Auth, nil, logger)
	engine := delivery.NewEngine(cfg.Delivery, delivery.EngineDependencies{
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})

	ingestService := service.NewIngestService(cfg, engine, logger)
	outcomes, err := ingestService.Run(ctx, nil)
	if err != nil {
		logger.Error("ingestion failed", zap.Int("outcomes", len(outcomes)), zap.Error(err))
		os.Exit(1)
	}

	_, _, _, deliveries := metrics.Snapshot()
	logger.Info("ingestion finished",
		zap.Int("outcomes", len(outcomes)),
		zap.Int64("succeeded", deliveries["Success"]),
		zap.Int64("failed", deliveries["Error"]))
}
