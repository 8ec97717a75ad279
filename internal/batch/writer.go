package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/domain"
)

// Writer persists batch output, batch errors, and the run summary.
// Each batch writes only its own files, so concurrent batch workers
// never contend on a path.
type Writer struct {
	outputDir string
	errorDir  string
}

// NewWriter creates the output directories if needed.
func NewWriter(outputDir, errorDir string) (*Writer, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.MkdirAll(errorDir, 0o755); err != nil {
		return nil, fmt.Errorf("create error dir: %w", err)
	}
	return &Writer{outputDir: outputDir, errorDir: errorDir}, nil
}

// WriteBatch writes the batch's canonical tickets and, only when
// errors exist, its error file.
func (w *Writer) WriteBatch(batchID int, tickets []domain.CanonicalTicket, errs []domain.BatchError) error {
	outputPath := filepath.Join(w.outputDir, fmt.Sprintf("batch_%d_tickets.json", batchID))
	if err := writeJSON(outputPath, tickets); err != nil {
		return err
	}
	if len(errs) > 0 {
		errorPath := filepath.Join(w.errorDir, fmt.Sprintf("batch_%d_errors.json", batchID))
		if err := writeJSON(errorPath, errs); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary writes the aggregate run summary into the output dir.
func (w *Writer) WriteSummary(summary domain.RunSummary) error {
	return writeJSON(filepath.Join(w.outputDir, "processing_summary.json"), summary)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
