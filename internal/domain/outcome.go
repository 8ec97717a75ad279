package domain

import "time"

// OutcomeStatus enumerates terminal delivery states for one record.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "Success"
	OutcomeError   OutcomeStatus = "Error"
)

// DeliveryOutcome is the per-record result of a delivery attempt.
// Exactly one outcome exists per record that entered the pipeline;
// outcomes are never mutated after creation.
type DeliveryOutcome struct {
	Identifier   string
	Status       OutcomeStatus
	ResponseText string
	ErrorMessage string
	Timestamp    time.Time
}
