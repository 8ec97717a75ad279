package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/config"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/reconcile"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/repository"
)

// ReconcileService computes which source tickets have not yet been
// ingested successfully. The ingested set comes from the Postgres
// outcome store when configured, otherwise from the success-log CSVs.
type ReconcileService struct {
	cfg    *config.Config
	repo   repository.OutcomeRepository
	logger *zap.Logger
}

// NewReconcileService constructs the service. repo may be nil when the
// outcome store is disabled.
func NewReconcileService(cfg *config.Config, repo repository.OutcomeRepository, logger *zap.Logger) *ReconcileService {
	return &ReconcileService{cfg: cfg, repo: repo, logger: logger}
}

// Run returns the not-yet-ingested identifiers, sorted ascending.
func (s *ReconcileService) Run(ctx context.Context) ([]string, error) {
	tickets, err := LoadRawTickets(s.cfg.Paths.TicketsFile, s.logger)
	if err != nil {
		return nil, err
	}

	var ingested map[string]struct{}
	if s.repo != nil {
		ingested, err = s.repo.IngestedIdentifiers(ctx)
		if err != nil {
			return nil, err
		}
		s.logger.Info("loaded ingested identifiers from outcome store", zap.Int("count", len(ingested)))
	} else {
		ingested, err = reconcile.SuccessLogIdentifiers(s.cfg.Paths.DeliveryLogDir, s.logger)
		if err != nil {
			return nil, err
		}
		s.logger.Info("loaded ingested identifiers from success logs", zap.Int("count", len(ingested)))
	}

	missing := reconcile.Missing(tickets, ingested)
	s.logger.Info("reconciliation complete",
		zap.Int("total", len(tickets)),
		zap.Int("ingested", len(ingested)),
		zap.Int("missing", len(missing)))
	return missing, nil
}
