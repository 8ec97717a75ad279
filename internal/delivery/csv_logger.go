package delivery

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/domain"
	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/events"
)

var (
	successHeader = []string{"Timestamp", "Identifier", "Status", "ResponseText"}
	errorHeader   = []string{"Timestamp", "Identifier", "Status", "ErrorMessage", "ResponseText"}
)

// CSVLogger appends delivery outcomes to date-prefixed CSV files, one
// file per status per day, writing each file's header exactly once.
// It subscribes to delivery.recorded events.
type CSVLogger struct {
	dir    string
	prefix string

	mu  sync.Mutex
	now func() time.Time
}

// NewCSVLogger creates the log directory if needed.
func NewCSVLogger(dir, prefix string) (*CSVLogger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create delivery log dir: %w", err)
	}
	return &CSVLogger{dir: dir, prefix: prefix, now: time.Now}, nil
}

// Register subscribes the logger on the dispatcher.
func (l *CSVLogger) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventDeliveryRecorded, l.HandleEvent)
}

// HandleEvent appends one outcome row.
func (l *CSVLogger) HandleEvent(_ context.Context, event events.Event) error {
	if event.Outcome == nil {
		return nil
	}
	return l.Log(*event.Outcome)
}

// Log appends the outcome to the success or error file for today.
func (l *CSVLogger) Log(outcome domain.DeliveryOutcome) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := l.now().Format("2006-01-02 15:04:05")
	date := timestamp[:10]

	if outcome.Status == domain.OutcomeSuccess {
		filename := fmt.Sprintf("%s_%s_success.csv", date, l.prefix)
		row := []string{timestamp, outcome.Identifier, string(outcome.Status), outcome.ResponseText}
		return l.append(filename, successHeader, row)
	}

	filename := fmt.Sprintf("%s_%s_error.csv", date, l.prefix)
	row := []string{timestamp, outcome.Identifier, string(outcome.Status), outcome.ErrorMessage, outcome.ResponseText}
	return l.append(filename, errorHeader, row)
}

func (l *CSVLogger) append(filename string, header, row []string) error {
	path := filepath.Join(l.dir, filename)
	_, statErr := os.Stat(path)
	needsHeader := os.IsNotExist(statErr)

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open delivery log %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if needsHeader {
		if err := writer.Write(header); err != nil {
			return err
		}
	}
	if err := writer.Write(row); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}
