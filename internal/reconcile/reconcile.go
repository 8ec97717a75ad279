package reconcile

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/domain"
)

// SuccessLogIdentifiers reads every *_success.csv delivery log in dir
// and returns the distinct set of successfully ingested identifiers.
func SuccessLogIdentifiers(dir string, logger *zap.Logger) (map[string]struct{}, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read delivery log dir: %w", err)
	}

	ingested := make(map[string]struct{})
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "_success.csv") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := readIdentifierColumn(path, ingested); err != nil {
			logger.Warn("failed to read success log", zap.String("file", path), zap.Error(err))
		}
	}
	return ingested, nil
}

func readIdentifierColumn(path string, into map[string]struct{}) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	idCol := -1
	for i, name := range rows[0] {
		if name == "Identifier" {
			idCol = i
			break
		}
	}
	if idCol < 0 {
		return fmt.Errorf("no Identifier column in %s", path)
	}

	for _, row := range rows[1:] {
		if idCol < len(row) {
			into[row[idCol]] = struct{}{}
		}
	}
	return nil
}

// Missing returns the identifiers of tickets present in the source set
// but absent from the ingested set, sorted numerically ascending.
func Missing(tickets []domain.RawTicket, ingested map[string]struct{}) []string {
	seen := make(map[string]struct{}, len(tickets))
	var missing []string
	for _, ticket := range tickets {
		id := domain.CoerceString(ticket["id"])
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := ingested[id]; !ok {
			missing = append(missing, id)
		}
	}

	sort.Slice(missing, func(i, j int) bool {
		a, errA := strconv.ParseInt(missing[i], 10, 64)
		b, errB := strconv.ParseInt(missing[j], 10, 64)
		if errA != nil || errB != nil {
			return missing[i] < missing[j]
		}
		return a < b
	})
	return missing
}
