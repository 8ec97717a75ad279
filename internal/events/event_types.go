package events

import (
	"time"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/domain"
)

// EventType labels pipeline events.
type EventType string

const (
	EventDeliveryRecorded EventType = "delivery.recorded"
	EventBatchCompleted   EventType = "batch.completed"
)

// Event is one published pipeline occurrence.
type Event struct {
	Type       EventType
	OccurredAt time.Time
	Outcome    *domain.DeliveryOutcome
	Batch      *domain.BatchResult
}

// NewDeliveryRecorded wraps a delivery outcome for publication.
func NewDeliveryRecorded(outcome domain.DeliveryOutcome) Event {
	return Event{
		Type:       EventDeliveryRecorded,
		OccurredAt: time.Now(),
		Outcome:    &outcome,
	}
}

// NewBatchCompleted wraps a batch result for publication.
func NewBatchCompleted(result domain.BatchResult) Event {
	return Event{
		Type:       EventBatchCompleted,
		OccurredAt: time.Now(),
		Batch:      &result,
	}
}
