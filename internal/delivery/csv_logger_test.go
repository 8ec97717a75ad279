package delivery

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/domain"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC)
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestLogWritesHeaderOncePerFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewCSVLogger(dir, "api_logs")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.now = fixedClock

	for i := 0; i < 3; i++ {
		if err := logger.Log(domain.DeliveryOutcome{
			Identifier:   "100",
			Status:       domain.OutcomeSuccess,
			ResponseText: "ok",
		}); err != nil {
			t.Fatalf("log success %d: %v", i, err)
		}
	}

	rows := readRows(t, filepath.Join(dir, "2025-03-01_api_logs_success.csv"))
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want header + 3", len(rows))
	}
	if rows[0][0] != "Timestamp" || rows[0][3] != "ResponseText" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][1] != "100" || rows[1][2] != "Success" {
		t.Fatalf("first row = %v", rows[1])
	}
}

func TestLogSeparatesErrorFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewCSVLogger(dir, "api_logs")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.now = fixedClock

	if err := logger.Log(domain.DeliveryOutcome{
		Identifier:   "200",
		Status:       domain.OutcomeError,
		ErrorMessage: "HTTP 409",
		ResponseText: "duplicate",
	}); err != nil {
		t.Fatalf("log error: %v", err)
	}

	rows := readRows(t, filepath.Join(dir, "2025-03-01_api_logs_error.csv"))
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header + 1", len(rows))
	}
	if rows[0][3] != "ErrorMessage" {
		t.Fatalf("error header = %v", rows[0])
	}
	if rows[1][1] != "200" || rows[1][3] != "HTTP 409" || rows[1][4] != "duplicate" {
		t.Fatalf("error row = %v", rows[1])
	}

	if _, err := os.Stat(filepath.Join(dir, "2025-03-01_api_logs_success.csv")); !os.IsNotExist(err) {
		t.Fatal("success file should not exist for error-only run")
	}
}
