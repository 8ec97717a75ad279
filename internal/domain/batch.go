package domain

import "time"

// Batch is one bounded, ordered group of raw tickets. ID starts at 1
// and increases monotonically in sorted-ticket order; it names the
// batch's output files.
type Batch struct {
	ID      int
	Tickets []RawTicket
}

// BatchError records a single ticket that failed normalization inside
// a batch. These are serialized into the batch's error file.
type BatchError struct {
	TicketID any    `json:"ticket_id"`
	Error    string `json:"error"`
}

// BatchResult is the value a batch worker returns to the scheduler.
// Workers share no mutable state; the scheduler aggregates results.
type BatchResult struct {
	BatchID   int
	Processed int
	Errors    int
	Duration  time.Duration
	// Err is set when the batch as a whole failed (output write), in
	// which case Processed is zero regardless of transform results.
	Err error
}

// RunSummary is the aggregate written at the end of a transform run.
type RunSummary struct {
	StartTime        string  `json:"start_time"`
	EndTime          string  `json:"end_time"`
	DurationSeconds  float64 `json:"duration_seconds"`
	TotalTickets     int     `json:"total_tickets"`
	ProcessedTickets int     `json:"processed_tickets"`
	Errors           int     `json:"errors"`
	Batches          int     `json:"batches"`
}
