package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardError_Error(t *testing.T) {
	err := NewDataServiceCallFailedError("create contacts", fmt.Errorf("status 503"))
	assert.Contains(t, err.Error(), "DATA_SERVICE_CALL_FAILED")
	assert.Contains(t, err.Error(), "create contacts")
	assert.Contains(t, err.Error(), "status 503")
	assert.True(t, err.Retryable)

	bare := &StandardError{Code: ErrCodeInternal, Message: "Unexpected error"}
	assert.Equal(t, "StandardError[INTERNAL_ERROR]: Unexpected error", bare.Error())
}

func TestNormalize(t *testing.T) {
	std := NewAuthTokenFailedError(fmt.Errorf("401"))
	assert.Same(t, std, Normalize(std))

	wrapped := Normalize(fmt.Errorf("plain failure"))
	assert.Equal(t, ErrCodeInternal, wrapped.Code)
	assert.Equal(t, "plain failure", wrapped.Details)
	assert.False(t, wrapped.Retryable)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeEnvelopeParsingFailed, CodeOf(NewEnvelopeParsingFailedError(fmt.Errorf("bad json"))))
	assert.Equal(t, ErrCodeInternal, CodeOf(fmt.Errorf("plain")))
}
