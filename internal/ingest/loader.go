package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/domain"
)

// LoadBatchFiles reads every batch_*_tickets.json in dir and returns
// the union keyed by identifier. Individual files that are missing or
// malformed are logged and skipped; only an unreadable directory is an
// error.
func LoadBatchFiles(dir string, logger *zap.Logger) (map[string]domain.CanonicalTicket, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read batch dir: %w", err)
	}

	tickets := make(map[string]domain.CanonicalTicket)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matched, err := filepath.Match("batch_*_tickets.json", entry.Name())
		if err != nil || !matched {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("failed to read batch file", zap.String("file", path), zap.Error(err))
			continue
		}
		var batchTickets []domain.CanonicalTicket
		if err := json.Unmarshal(data, &batchTickets); err != nil {
			logger.Warn("failed to parse batch file", zap.String("file", path), zap.Error(err))
			continue
		}
		for _, ticket := range batchTickets {
			tickets[ticket.IdentifierString()] = ticket
		}
		logger.Info("loaded batch file", zap.String("file", entry.Name()), zap.Int("tickets", len(batchTickets)))
	}

	logger.Info("total tickets retrieved", zap.Int("tickets", len(tickets)))
	return tickets, nil
}

// FilterTargets restricts the loaded set to explicit identifiers, for
// reingestion runs. Targets absent from the loaded set are logged.
func FilterTargets(tickets map[string]domain.CanonicalTicket, targets []string, logger *zap.Logger) map[string]domain.CanonicalTicket {
	if len(targets) == 0 {
		return tickets
	}
	filtered := make(map[string]domain.CanonicalTicket, len(targets))
	for _, id := range targets {
		ticket, ok := tickets[id]
		if !ok {
			logger.Warn("target ticket not found in batch files", zap.String("identifier", id))
			continue
		}
		filtered[id] = ticket
	}
	return filtered
}
