package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/auth"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/config"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/delivery"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/events"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/observability"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/service"
)

func main() {
	ids := flag.String("ids", "", "comma-separated ticket identifiers to reingest")
	workers := flag.Int("workers", 5, "delivery worker count for the reingest pass")
	flag.Parse()

	if *ids == "" {
		log.Fatal("no target identifiers; pass -ids=1,2,3")
	}
	var targets []string
	for _, id := range strings.Split(*ids, ",") {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			targets = append(targets, trimmed)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	// Reingest runs are small and targeted; keep the pool modest.
	cfg.Delivery.Workers = *workers

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

	tokens := auth.NewTokenManager(cfg.Auth, nil, logger)
	engine := delivery.NewEngine(cfg.Delivery, delivery.EngineDependencies{
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Metrics:    observability.NewMetrics(),
		Logger:     logger,
	})

	ingestService := service.NewIngestService(cfg, engine, logger)
	outcomes, err := ingestService.Run(ctx, targets)
	if err != nil {
		logger.Error("reingestion failed", zap.Int("outcomes", len(outcomes)), zap.Error(err))
		os.Exit(1)
	}
	logger.Info("reingestion finished",
		zap.Int("targets", len(targets)),
		zap.Int("outcomes", len(outcomes)))
}
