package util

import (
	"errors"
	"fmt"
)

// Error codes for the pipeline failure taxonomy.
const (
	CodeReferenceLoad = "REFERENCE_LOAD_FAILED"
	CodeTransform     = "TRANSFORM_FAILED"
	CodeBatchIO       = "BATCH_IO_FAILED"
	CodeAuth          = "AUTH_FAILED"
	CodeDelivery      = "DELIVERY_FAILED"
)

// PipelineError standardizes application errors.
type PipelineError struct {
	Code    string
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError constructs a PipelineError.
func NewPipelineError(code, message string, err error) *PipelineError {
	return &PipelineError{Code: code, Message: message, Err: err}
}

func NewTransformError(ticketID string, err error) error {
	return NewPipelineError(CodeTransform, fmt.Sprintf("transform failed for ticket %s", ticketID), err)
}

func NewBatchIOError(batchID int, err error) error {
	return NewPipelineError(CodeBatchIO, fmt.Sprintf("batch %d output write failed", batchID), err)
}

func NewAuthError(err error) error {
	return NewPipelineError(CodeAuth, "authentication failed", err)
}

func NewDeliveryError(identifier string, err error) error {
	return NewPipelineError(CodeDelivery, fmt.Sprintf("delivery failed for record %s", identifier), err)
}

// IsAuthFailure reports whether err is an authentication failure, which
// is fatal to the current delivery pass.
func IsAuthFailure(err error) bool {
	var pe *PipelineError
	return errors.As(err, &pe) && pe.Code == CodeAuth
}
