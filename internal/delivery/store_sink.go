package delivery

import (
	"context"

	"go.uber.org/zap"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/events"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/repository"
)

// StoreSink mirrors delivery outcomes into the Postgres outcome store.
// It runs alongside the CSV logger; a store failure is logged by the
// publisher but never blocks delivery.
type StoreSink struct {
	repo   repository.OutcomeRepository
	logger *zap.Logger
}

// NewStoreSink constructs the sink.
func NewStoreSink(repo repository.OutcomeRepository, logger *zap.Logger) *StoreSink {
	return &StoreSink{repo: repo, logger: logger}
}

// Register subscribes the sink on the dispatcher.
func (s *StoreSink) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventDeliveryRecorded, s.HandleEvent)
}

// HandleEvent inserts one outcome row.
func (s *StoreSink) HandleEvent(ctx context.Context, event events.Event) error {
	if event.Outcome == nil {
		return nil
	}
	return s.repo.Insert(ctx, *event.Outcome)
}
