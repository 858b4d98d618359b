package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStructuredError_Error(t *testing.T) {
	err := New(ErrorTypeValidation, "build", "K must be less than N")
	assert.Equal(t, "[validation] build: K must be less than N", err.Error())

	cause := errors.New("heap invariant broken")
	err = Wrap(cause, ErrorTypeInternal, "deheap_sort", "row 3 not a valid max-heap")
	assert.Contains(t, err.Error(), "[internal] deheap_sort: row 3 not a valid max-heap")
	assert.Contains(t, err.Error(), "heap invariant broken")
	assert.Equal(t, cause, err.Unwrap())
}

func TestStructuredError_WithContext(t *testing.T) {
	err := New(ErrorTypeValidation, "build", "bad input")
	err = err.WithContext("n_points", 100).WithContext("k", 5)

	assert.Equal(t, 100, err.Context["n_points"])
	assert.Equal(t, 5, err.Context["k"])
}

func TestErrorConstructors(t *testing.T) {
	assert.Equal(t, ErrorTypeValidation, NewValidationError("op", "msg").Type)
	assert.Equal(t, ErrorTypeConfiguration, NewConfigurationError("op", "msg").Type)
	assert.Equal(t, ErrorTypeInternal, NewInternalError("op", "msg").Type)
}

func TestErrorWrapping(t *testing.T) {
	originalErr := errors.New("original error")

	wrapped := WrapValidationError(originalErr, "validate", "validation failed")
	assert.Equal(t, ErrorTypeValidation, wrapped.Type)
	assert.Equal(t, "validate", wrapped.Operation)
	assert.Equal(t, "validation failed", wrapped.Message)
	assert.Equal(t, originalErr, wrapped.Unwrap())

	assert.Nil(t, Wrap(nil, ErrorTypeInternal, "op", "msg"))
}

func TestErrorTypeString(t *testing.T) {
	assert.Equal(t, "validation", string(ErrorTypeValidation))
	assert.Equal(t, "configuration", string(ErrorTypeConfiguration))
	assert.Equal(t, "internal", string(ErrorTypeInternal))
}

func TestStackTraceCapture(t *testing.T) {
	err := New(ErrorTypeValidation, "test", "message")
	assert.Greater(t, len(err.Stack), 0)
}
