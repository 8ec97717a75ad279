package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/config"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/events"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/observability"
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
	metrics := observability.NewMetrics()

	transformService := service.NewTransformService(cfg, dispatcher, metrics, logger)
	summary, err := transformService.Run(ctx)
	if err != nil {
		logger.Error("transform run failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("run finished",
		zap.Int("total_tickets", summary.TotalTickets),
		zap.Int("processed", summary.ProcessedTickets),
		zap.Int("errors", summary.Errors),
		zap.Int("batches", summary.Batches))
}
