package reconcile

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/domain"
)

func tickets(ids ...int) []domain.RawTicket {
	out := make([]domain.RawTicket, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.RawTicket{"id": float64(id)})
	}
	return out
}

func TestMissingAgainstEmptyLog(t *testing.T) {
	got := Missing(tickets(3, 1, 2), map[string]struct{}{})
	want := []string{"1", "2", "3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("missing = %v, want %v", got, want)
	}
}

func TestMissingExcludesIngestedAndDuplicates(t *testing.T) {
	ingested := map[string]struct{}{"2": {}, "4": {}}
	all := append(tickets(1, 2, 3, 4, 10), tickets(3)...) // 3 appears twice

	got := Missing(all, ingested)
	want := []string{"1", "3", "10"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("missing = %v, want %v", got, want)
	}
}

func TestSuccessLogIdentifiers(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("2025-03-01_api_logs_success.csv",
		"Timestamp,Identifier,Status,ResponseText\n"+
			"2025-03-01 10:00:00,100,Success,ok\n"+
			"2025-03-01 10:00:01,101,Success,ok\n")
	write("2025-03-02_api_logs_success.csv",
		"Timestamp,Identifier,Status,ResponseText\n"+
			"2025-03-02 10:00:00,100,Success,ok\n"+
			"2025-03-02 10:00:02,102,Success,ok\n")
	write("2025-03-01_api_logs_error.csv",
		"Timestamp,Identifier,Status,ErrorMessage,ResponseText\n"+
			"2025-03-01 10:00:00,999,Error,HTTP 500,boom\n")

	ingested, err := SuccessLogIdentifiers(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("read logs: %v", err)
	}

	want := map[string]struct{}{"100": {}, "101": {}, "102": {}}
	if !reflect.DeepEqual(ingested, want) {
		t.Fatalf("ingested = %v, want %v", ingested, want)
	}
}
