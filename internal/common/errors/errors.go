// Package errors provides standardized error handling for CRM pipeline handlers.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Downstream data-service failures. The component distinguishes exactly
	// one failure class for data operations; the operation name travels in
	// the error details, not the code.
	ErrCodeDataServiceCallFailed ErrorCode = "DATA_SERVICE_CALL_FAILED"

	// Host boundary failures.
	ErrCodeEnvelopeParsingFailed    ErrorCode = "ENVELOPE_PARSING_FAILED"
	ErrCodeEnvelopeValidationFailed ErrorCode = "ENVELOPE_VALIDATION_FAILED"
	ErrCodePostImageMissing         ErrorCode = "POST_IMAGE_MISSING"

	// Infrastructure failures.
	ErrCodeAuthTokenFailed ErrorCode = "AUTH_TOKEN_FAILED"
	ErrCodeHandlerPanic    ErrorCode = "HANDLER_PANIC"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewDataServiceCallFailedError wraps a failed create/update call against the
// platform's data service. Retryable is true; the host's replay policy decides
// whether a retry actually happens.
func NewDataServiceCallFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDataServiceCallFailed,
		Message:   "Data service call failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEnvelopeParsingFailedError wraps a malformed service-hook body.
func NewEnvelopeParsingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEnvelopeParsingFailed,
		Message:   "Failed to parse event envelope",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEnvelopeValidationFailedError wraps schema validation failures.
func NewEnvelopeValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEnvelopeValidationFailed,
		Message:   "Event envelope validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuthTokenFailedError wraps a failed token acquisition for the data API.
func NewAuthTokenFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthTokenFailed,
		Message:   "Failed to acquire data API access token",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// CodeOf extracts the error code for metric labels.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}
