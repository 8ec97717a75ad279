package batch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/childrecords"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/domain"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/events"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/normalize"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/observability"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/worker"
	"github.com/prash00b/ZenDesk-ETL-pipeline/pkg/util"
)

// Scheduler runs batches on a bounded worker pool. Workers share only
// the read-only resolver and child-record loader; each owns one batch
// end-to-end and returns a BatchResult, which the scheduler
// aggregates. Failures inside one batch never abort siblings.
type Scheduler struct {
	normalizer *normalize.Normalizer
	children   *childrecords.Loader
	writer     *Writer
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	workers    int
}

// SchedulerDependencies bundles scheduler collaborators.
type SchedulerDependencies struct {
	Normalizer *normalize.Normalizer
	Children   *childrecords.Loader
	Writer     *Writer
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Workers    int
}

// NewScheduler constructs a scheduler. Worker count is deliberately
// small: batch work is dominated by shard reads and file writes, so
// oversubscription buys nothing against downstream rate limits.
func NewScheduler(deps SchedulerDependencies) *Scheduler {
	workers := deps.Workers
	if workers <= 0 {
		workers = 2
	}
	return &Scheduler{
		normalizer: deps.Normalizer,
		children:   deps.Children,
		writer:     deps.Writer,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		workers:    workers,
	}
}

// Run partitions the tickets and processes every batch, then writes
// the run summary. The returned summary counts processed tickets and
// errors across all batches.
func (s *Scheduler) Run(ctx context.Context, tickets []domain.RawTicket, batchSize int) (domain.RunSummary, error) {
	start := time.Now()
	batches := Partition(tickets, batchSize)
	s.logger.Info("starting transform run",
		zap.Int("tickets", len(tickets)),
		zap.Int("batches", len(batches)),
		zap.Int("batch_size", batchSize),
		zap.Int("workers", s.workers))
	s.metrics.RecordTicketsIn(len(tickets))

	var mu sync.Mutex
	results := make([]domain.BatchResult, 0, len(batches))

	worker.Run(ctx, s.workers, batches, func(b domain.Batch) {
		result := s.processBatch(ctx, b)
		mu.Lock()
		results = append(results, result)
		mu.Unlock()
		if s.dispatcher != nil {
			if err := s.dispatcher.Publish(ctx, events.NewBatchCompleted(result)); err != nil {
				s.logger.Warn("batch event handler failed", zap.Int("batch_id", b.ID), zap.Error(err))
			}
		}
	})

	summary := domain.RunSummary{
		StartTime:    start.Format("2006-01-02 15:04:05"),
		TotalTickets: len(tickets),
		Batches:      len(batches),
	}
	for _, res := range results {
		summary.ProcessedTickets += res.Processed
		summary.Errors += res.Errors
	}
	end := time.Now()
	summary.EndTime = end.Format("2006-01-02 15:04:05")
	summary.DurationSeconds = end.Sub(start).Seconds()

	if err := s.writer.WriteSummary(summary); err != nil {
		s.logger.Error("failed to write run summary", zap.Error(err))
		return summary, err
	}

	s.logger.Info("transform run completed",
		zap.Int("processed", summary.ProcessedTickets),
		zap.Int("errors", summary.Errors),
		zap.Float64("duration_seconds", summary.DurationSeconds))
	return summary, nil
}

// processBatch normalizes every ticket in the batch and writes the
// batch's files. Output ordering matches the sorted input order.
func (s *Scheduler) processBatch(ctx context.Context, b domain.Batch) domain.BatchResult {
	start := time.Now()
	s.logger.Info("processing batch", zap.Int("batch_id", b.ID), zap.Int("tickets", len(b.Tickets)))

	canonical := make([]domain.CanonicalTicket, 0, len(b.Tickets))
	var batchErrs []domain.BatchError

	for _, raw := range b.Tickets {
		ticket, err := s.normalizer.Normalize(raw)
		if err != nil {
			s.logger.Error("error processing ticket",
				zap.Int("batch_id", b.ID),
				zap.String("ticket_id", domain.CoerceString(raw["id"])),
				zap.Error(err))
			batchErrs = append(batchErrs, domain.BatchError{
				TicketID: raw["id"],
				Error:    err.Error(),
			})
			s.metrics.RecordTransform(false)
			continue
		}
		canonical = append(canonical, ticket)
		s.metrics.RecordTransform(true)
	}

	// Shard parses are only reusable within a batch; evict so a long
	// run's memory stays bounded.
	if s.children != nil {
		s.children.EvictAll()
	}

	if err := s.writer.WriteBatch(b.ID, canonical, batchErrs); err != nil {
		wrapped := util.NewBatchIOError(b.ID, err)
		s.logger.Error("batch output write failed", zap.Int("batch_id", b.ID), zap.Error(wrapped))
		return domain.BatchResult{BatchID: b.ID, Duration: time.Since(start), Err: wrapped}
	}

	result := domain.BatchResult{
		BatchID:   b.ID,
		Processed: len(canonical),
		Errors:    len(batchErrs),
		Duration:  time.Since(start),
	}
	s.logger.Info("completed batch",
		zap.Int("batch_id", b.ID),
		zap.Int("processed", result.Processed),
		zap.Int("errors", result.Errors),
		zap.Duration("duration", result.Duration))
	return result
}
