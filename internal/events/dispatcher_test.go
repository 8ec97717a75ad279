package events

import (
	"context"
	"errors"
	"testing"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/domain"
)

func TestPublishInvokesSubscribersInOrder(t *testing.T) {
	d := NewInMemoryDispatcher()

	var order []string
	d.Subscribe(EventDeliveryRecorded, func(_ context.Context, e Event) error {
		order = append(order, "first:"+e.Outcome.Identifier)
		return nil
	})
	d.Subscribe(EventDeliveryRecorded, func(_ context.Context, e Event) error {
		order = append(order, "second:"+e.Outcome.Identifier)
		return nil
	})

	err := d.Publish(context.Background(), NewDeliveryRecorded(domain.DeliveryOutcome{Identifier: "100"}))
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(order) != 2 || order[0] != "first:100" || order[1] != "second:100" {
		t.Fatalf("handler order = %v", order)
	}
}

func TestPublishRunsAllHandlersDespiteFailure(t *testing.T) {
	d := NewInMemoryDispatcher()

	sinkErr := errors.New("sink unavailable")
	var secondRan bool
	d.Subscribe(EventDeliveryRecorded, func(context.Context, Event) error {
		return sinkErr
	})
	d.Subscribe(EventDeliveryRecorded, func(context.Context, Event) error {
		secondRan = true
		return nil
	})

	err := d.Publish(context.Background(), NewDeliveryRecorded(domain.DeliveryOutcome{}))
	if !errors.Is(err, sinkErr) {
		t.Fatalf("publish error = %v, want wrapped sink error", err)
	}
	if !secondRan {
		t.Fatal("second handler did not run after first failed")
	}
}

func TestPublishIgnoresOtherEventTypes(t *testing.T) {
	d := NewInMemoryDispatcher()

	var called bool
	d.Subscribe(EventBatchCompleted, func(context.Context, Event) error {
		called = true
		return nil
	})

	if err := d.Publish(context.Background(), NewDeliveryRecorded(domain.DeliveryOutcome{})); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if called {
		t.Fatal("batch handler ran for delivery event")
	}
}
