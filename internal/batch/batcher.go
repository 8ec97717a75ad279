package batch

import (
	"sort"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/domain"
)

// Partition sorts tickets by numeric identifier ascending and splits
// them into batches of at most size tickets. Batch IDs start at 1 and
// increase in order; the last batch may be smaller. Sorting first
// makes batch contents deterministic so reruns are comparable.
func Partition(tickets []domain.RawTicket, size int) []domain.Batch {
	if size <= 0 || len(tickets) == 0 {
		return nil
	}

	sorted := make([]domain.RawTicket, len(tickets))
	copy(sorted, tickets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID() < sorted[j].ID()
	})

	batches := make([]domain.Batch, 0, (len(sorted)+size-1)/size)
	for start := 0; start < len(sorted); start += size {
		end := start + size
		if end > len(sorted) {
			end = len(sorted)
		}
		batches = append(batches, domain.Batch{
			ID:      len(batches) + 1,
			Tickets: sorted[start:end],
		})
	}
	return batches
}
