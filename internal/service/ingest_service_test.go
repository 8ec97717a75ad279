package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/auth"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/config"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/delivery"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/domain"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/events"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/observability"
)

func writeBatchFile(t *testing.T, dir string, batchID int, tickets []domain.CanonicalTicket) {
	t.Helper()
	data, err := json.Marshal(tickets)
	if err != nil {
		t.Fatalf("marshal batch: %v", err)
	}
	name := fmt.Sprintf("batch_%d_tickets.json", batchID)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("write batch file: %v", err)
	}
}

func TestIngestRunDeliversAllLoadedTickets(t *testing.T) {
	outputDir := t.TempDir()
	logDir := t.TempDir()

	tickets := make([]domain.CanonicalTicket, 0, 7)
	for i := 1; i <= 7; i++ {
		tickets = append(tickets, domain.CanonicalTicket{
			Identifier:  float64(i),
			Title:       "t",
			CreatedDate: "2021-01-01T10:00:00+00:00",
		})
	}
	writeBatchFile(t, outputDir, 1, tickets[:4])
	writeBatchFile(t, outputDir, 2, tickets[4:])

	authServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"accessToken": "tok", "expiresOn": %d}`, time.Now().Add(time.Hour).Unix())
	}))
	defer authServer.Close()

	var mu sync.Mutex
	received := make(map[string]domain.WireRecord)
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var record domain.WireRecord
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			t.Errorf("decode wire record: %v", err)
		}
		mu.Lock()
		received[record.Content.Identifier] = record
		mu.Unlock()
		fmt.Fprint(w, "ok")
	}))
	defer api.Close()

	cfg := &config.Config{
		Paths: config.PathsConfig{OutputDir: outputDir, DeliveryLogDir: logDir},
		Batch: config.BatchConfig{Size: 3},
		Auth:  config.AuthConfig{URL: authServer.URL, ClientID: "c", ClientSecret: "s"},
		Delivery: config.DeliveryConfig{
			URL:     api.URL,
			Workers: 4,
		},
	}

	dispatcher := events.NewInMemoryDispatcher()
	csvLogger, err := delivery.NewCSVLogger(logDir, "api_logs")
	if err != nil {
		t.Fatalf("csv logger: %v", err)
	}
	csvLogger.Register(dispatcher)

	tokens := auth.NewTokenManager(cfg.Auth, nil, zap.NewNop())
	engine := delivery.NewEngine(cfg.Delivery, delivery.EngineDependencies{
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Metrics:    observability.NewMetrics(),
		Logger:     zap.NewNop(),
	})

	outcomes, err := NewIngestService(cfg, engine, zap.NewNop()).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(outcomes) != 7 {
		t.Fatalf("got %d outcomes, want 7", len(outcomes))
	}
	if len(received) != 7 {
		t.Fatalf("api received %d distinct records, want 7", len(received))
	}
	// Date normalization happens on the way out.
	if got := received["1"].Content.CreatedDate; got != "2021-01-01T10:00:00.000Z" {
		t.Fatalf("created date on wire = %q", got)
	}

	// The CSV sink saw every outcome.
	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatalf("read log dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("log dir has %d files, want 1 success log", len(entries))
	}
}

func TestIngestRunScopedToTargets(t *testing.T) {
	outputDir := t.TempDir()

	writeBatchFile(t, outputDir, 1, []domain.CanonicalTicket{
		{Identifier: float64(100), Title: "a"},
		{Identifier: float64(101), Title: "b"},
		{Identifier: float64(102), Title: "c"},
	})

	authServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"accessToken": "tok", "expiresOn": %d}`, time.Now().Add(time.Hour).Unix())
	}))
	defer authServer.Close()

	var mu sync.Mutex
	var sent []string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var record domain.WireRecord
		_ = json.NewDecoder(r.Body).Decode(&record)
		mu.Lock()
		sent = append(sent, record.Content.Identifier)
		mu.Unlock()
		fmt.Fprint(w, "ok")
	}))
	defer api.Close()

	cfg := &config.Config{
		Paths:    config.PathsConfig{OutputDir: outputDir, DeliveryLogDir: t.TempDir()},
		Batch:    config.BatchConfig{Size: 500},
		Auth:     config.AuthConfig{URL: authServer.URL},
		Delivery: config.DeliveryConfig{URL: api.URL, Workers: 2},
	}

	tokens := auth.NewTokenManager(cfg.Auth, nil, zap.NewNop())
	engine := delivery.NewEngine(cfg.Delivery, delivery.EngineDependencies{
		Tokens:  tokens,
		Metrics: observability.NewMetrics(),
		Logger:  zap.NewNop(),
	})

	outcomes, err := NewIngestService(cfg, engine, zap.NewNop()).Run(context.Background(), []string{"101"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].Identifier != "101" {
		t.Fatalf("outcomes = %+v, want only ticket 101", outcomes)
	}
	if len(sent) != 1 || sent[0] != "101" {
		t.Fatalf("sent = %v, want only 101", sent)
	}
}
