package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/config"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/delivery"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/domain"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/ingest"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/wire"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/worker"
	"github.com/prash00b/ZenDesk-ETL-pipeline/pkg/util"
)

// IngestService loads previously transformed batch files, maps them to
// the wire format, and delivers them in batches. A reingest run is the
// same pass restricted to explicit target identifiers.
type IngestService struct {
	cfg    *config.Config
	engine *delivery.Engine
	logger *zap.Logger
}

// NewIngestService constructs the service.
func NewIngestService(cfg *config.Config, engine *delivery.Engine, logger *zap.Logger) *IngestService {
	return &IngestService{cfg: cfg, engine: engine, logger: logger}
}

// Run executes one ingestion pass. targets restricts the run to those
// identifiers; nil means everything. Every delivered record yields one
// outcome. The error return is non-nil only on fatal auth failure,
// after in-flight deliveries have drained.
func (s *IngestService) Run(ctx context.Context, targets []string) ([]domain.DeliveryOutcome, error) {
	tickets, err := ingest.LoadBatchFiles(s.cfg.Paths.OutputDir, s.logger)
	if err != nil {
		return nil, err
	}
	tickets = ingest.FilterTargets(tickets, targets, s.logger)
	if len(tickets) == 0 {
		s.logger.Warn("no tickets to ingest")
		return nil, nil
	}

	transformer := wire.NewTransformer(s.cfg.Delivery.IntegrationUUID)

	ticketList := make([]domain.CanonicalTicket, 0, len(tickets))
	for _, ticket := range tickets {
		ticketList = append(ticketList, ticket)
	}

	// Wire transformation is CPU-cheap but runs on a pool anyway so a
	// large run stays responsive ahead of the delivery queue.
	var mu sync.Mutex
	records := make([]domain.WireRecord, 0, len(ticketList))
	worker.Run(ctx, s.cfg.Delivery.Workers, ticketList, func(ticket domain.CanonicalTicket) {
		record := transformer.ToWireFormat(ticket)
		mu.Lock()
		records = append(records, record)
		mu.Unlock()
	})

	s.logger.Info("processing ticket identifiers", zap.Int("tickets", len(records)))

	batchSize := s.cfg.Batch.Size
	var outcomes []domain.DeliveryOutcome
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}

		s.logger.Info("sending batch to destination",
			zap.Int("records", end-start),
			zap.Int("sent_so_far", start))
		batchOutcomes, err := s.engine.Deliver(ctx, records[start:end])
		outcomes = append(outcomes, batchOutcomes...)
		if err != nil {
			if util.IsAuthFailure(err) {
				s.logger.Error("stopping ingestion after auth failure", zap.Error(err))
				return outcomes, err
			}
			return outcomes, err
		}
	}
	return outcomes, nil
}
