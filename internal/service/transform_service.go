package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/batch"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/childrecords"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/config"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/domain"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/events"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/normalize"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/observability"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/reference"
)

// TransformService coordinates the transform pass: load the reference
// tables and child-record indexes, normalize every raw ticket, and
// write the batched output files plus the run summary.
type TransformService struct {
	cfg        *config.Config
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewTransformService constructs the service.
func NewTransformService(cfg *config.Config, dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *TransformService {
	return &TransformService{cfg: cfg, dispatcher: dispatcher, metrics: metrics, logger: logger}
}

// Run executes one full transform run.
func (s *TransformService) Run(ctx context.Context) (domain.RunSummary, error) {
	tickets, err := LoadRawTickets(s.cfg.Paths.TicketsFile, s.logger)
	if err != nil {
		return domain.RunSummary{}, err
	}

	resolver := reference.Load(
		s.cfg.Paths.OrganizationsFile,
		s.cfg.Paths.SubmittersFile,
		s.cfg.Paths.AssigneesFile,
		s.logger,
	)
	children := childrecords.NewLoader(
		s.cfg.Paths.CommentsIndexFile,
		s.cfg.Paths.TimeEntriesIndexFile,
		s.logger,
	)
	normalizer := normalize.NewNormalizer(resolver, children, s.logger)

	writer, err := batch.NewWriter(s.cfg.Paths.OutputDir, s.cfg.Paths.ErrorDir)
	if err != nil {
		return domain.RunSummary{}, err
	}

	scheduler := batch.NewScheduler(batch.SchedulerDependencies{
		Normalizer: normalizer,
		Children:   children,
		Writer:     writer,
		Dispatcher: s.dispatcher,
		Metrics:    s.metrics,
		Logger:     s.logger,
		Workers:    s.cfg.Batch.Workers,
	})

	return scheduler.Run(ctx, tickets, s.cfg.Batch.Size)
}

// LoadRawTickets reads the extracted ticket collection.
func LoadRawTickets(path string, logger *zap.Logger) ([]domain.RawTicket, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tickets file: %w", err)
	}
	var tickets []domain.RawTicket
	if err := json.Unmarshal(data, &tickets); err != nil {
		return nil, fmt.Errorf("parse tickets file: %w", err)
	}
	logger.Info("loaded raw tickets", zap.String("file", path), zap.Int("records", len(tickets)))
	return tickets, nil
}
