package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/auth"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/config"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/domain"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/events"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/observability"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/worker"
	"github.com/prash00b/ZenDesk-ETL-pipeline/pkg/util"
)

// Engine sends wire records to the destination API as individual
// calls drawn from one shared queue. The bottleneck is network latency,
// so the worker pool here is larger than the transform pool. Token
// state lives in the shared TokenManager; on fatal auth failure the
// engine stops sending and drains the remaining records as error
// outcomes so every record still gets exactly one outcome.
type Engine struct {
	url        string
	tokens     *auth.TokenManager
	client     *http.Client
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	workers    int
	maxRetries int
	backoff    time.Duration
}

// EngineDependencies bundles engine collaborators.
type EngineDependencies struct {
	Tokens     *auth.TokenManager
	Client     *http.Client
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewEngine constructs a delivery engine.
func NewEngine(cfg config.DeliveryConfig, deps EngineDependencies) *Engine {
	client := deps.Client
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}
	backoff := time.Duration(cfg.RetryBackoffMS) * time.Millisecond
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	return &Engine{
		url:        cfg.URL,
		tokens:     deps.Tokens,
		client:     client,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		workers:    workers,
		maxRetries: cfg.MaxRetries,
		backoff:    backoff,
	}
}

// Deliver sends every record in the batch and returns one outcome per
// record. Completion order is unordered; callers must not assume
// delivery order. The error return is non-nil only on fatal auth
// failure, after the remaining records have been drained as errors.
func (e *Engine) Deliver(ctx context.Context, records []domain.WireRecord) ([]domain.DeliveryOutcome, error) {
	e.logger.Info("delivering batch", zap.Int("records", len(records)), zap.Int("workers", e.workers))

	var authFailed atomic.Bool
	var mu sync.Mutex
	outcomes := make([]domain.DeliveryOutcome, 0, len(records))

	record := func(outcome domain.DeliveryOutcome) {
		mu.Lock()
		outcomes = append(outcomes, outcome)
		mu.Unlock()
		e.metrics.RecordDelivery(string(outcome.Status))
		if e.dispatcher != nil {
			if err := e.dispatcher.Publish(ctx, events.NewDeliveryRecorded(outcome)); err != nil {
				e.logger.Warn("outcome sink failed",
					zap.String("identifier", outcome.Identifier),
					zap.Error(err))
			}
		}
	}

	worker.Run(ctx, e.workers, records, func(rec domain.WireRecord) {
		identifier := recordIdentifier(rec)

		// Once the token is gone no further sends are attempted, but
		// in-flight workers finish and the rest drain as errors.
		if authFailed.Load() {
			record(errorOutcome(identifier, "authentication failed; record not sent", ""))
			return
		}

		outcome, fatal := e.sendRecord(ctx, rec, identifier)
		if fatal {
			authFailed.Store(true)
		}
		record(outcome)
	})

	if authFailed.Load() {
		return outcomes, util.NewAuthError(fmt.Errorf("delivery pass aborted after token failure"))
	}
	return outcomes, nil
}

// sendRecord performs one delivery call. The second return reports a
// fatal auth failure. Transport errors retry on a bounded loop with
// backoff; HTTP-level failures do not retry, matching the policy of
// log-and-continue over infinite retry.
func (e *Engine) sendRecord(ctx context.Context, rec domain.WireRecord, identifier string) (domain.DeliveryOutcome, bool) {
	token, err := e.tokens.Token(ctx)
	if err != nil {
		e.logger.Error("token unavailable for delivery",
			zap.String("identifier", identifier),
			zap.Error(err))
		return errorOutcome(identifier, err.Error(), ""), true
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return errorOutcome(identifier, fmt.Sprintf("marshal record: %v", err), ""), false
	}

	resp, body, err := e.post(ctx, token, payload)
	if err != nil {
		e.logger.Error("error sending record",
			zap.String("identifier", identifier),
			zap.Error(err))
		return errorOutcome(identifier, err.Error(), ""), false
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e.logger.Warn("destination rejected record",
			zap.String("identifier", identifier),
			zap.Int("status", resp.StatusCode))
		return errorOutcome(identifier, fmt.Sprintf("HTTP %d", resp.StatusCode), string(body)), false
	}

	e.logger.Debug("record delivered", zap.String("identifier", identifier))
	return domain.DeliveryOutcome{
		Identifier:   identifier,
		Status:       domain.OutcomeSuccess,
		ResponseText: string(body),
		Timestamp:    time.Now(),
	}, false
}

// post sends the payload, retrying transport-level failures on a
// bounded loop. The response body is always fully read for audit.
func (e *Engine) post(ctx context.Context, token string, payload []byte) (*http.Response, []byte, error) {
	var lastErr error
	attempts := e.maxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
		if err != nil {
			return nil, nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := e.client.Do(req)
		if err == nil {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				return nil, nil, readErr
			}
			return resp, body, nil
		}

		lastErr = err
		if attempt < attempts {
			e.logger.Warn("transport error; retrying",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", e.backoff),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(e.backoff):
			}
		}
	}
	return nil, nil, lastErr
}

// recordIdentifier extracts the identifier from the nested content
// block for logging. A record without one logs as "unknown" rather
// than aborting the log write.
func recordIdentifier(rec domain.WireRecord) string {
	if rec.Content.Identifier == "" {
		return "unknown"
	}
	return rec.Content.Identifier
}

func errorOutcome(identifier, message, responseText string) domain.DeliveryOutcome {
	return domain.DeliveryOutcome{
		Identifier:   identifier,
		Status:       domain.OutcomeError,
		ErrorMessage: message,
		ResponseText: responseText,
		Timestamp:    time.Now(),
	}
}
