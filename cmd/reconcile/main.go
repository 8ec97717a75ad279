package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/config"
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

	var repo repository.OutcomeRepository
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if pg.Enabled() {
		repo = repository.NewOutcomeRepository(pg.PoolHandle())
	}

	reconcileService := service.NewReconcileService(cfg, repo, logger)
	missing, err := reconcileService.Run(ctx)
	if err != nil {
		logger.Error("reconciliation failed", zap.Error(err))
		os.Exit(1)
	}

	for _, id := range missing {
		fmt.Println(id)
	}
	logger.Info("identifiers missing from ingestion", zap.Int("count", len(missing)))
}
