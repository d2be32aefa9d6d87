package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorString(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "perfume not found"}
	assert.Equal(t, "NOT_FOUND: perfume not found", appErr.Error())

	wrapped := &AppError{Code: "INTERNAL_ERROR", Message: "boom", Err: fmt.Errorf("db down")}
	assert.Contains(t, wrapped.Error(), "db down")
}

func TestNotFound(t *testing.T) {
	err := NotFound("perfume", "p-1")
	require.NotNil(t, err)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Contains(t, err.Message, "p-1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestServiceUnavailable_HidesCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp 10.0.0.1:5432: connection refused")
	err := ServiceUnavailable(cause)

	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.Equal(t, GenericFailureMessage, err.Message)
	assert.NotContains(t, err.Message, "connection refused")
	assert.True(t, errors.Is(err, ErrServiceUnavail))
	assert.True(t, errors.Is(err, cause))
}

func TestServiceUnavailable_NilCause(t *testing.T) {
	err := ServiceUnavailable(nil)
	assert.True(t, errors.Is(err, ErrServiceUnavail))
}

func TestInternal_UsesGenericMessage(t *testing.T) {
	err := Internal(fmt.Errorf("secret detail"))
	assert.Equal(t, GenericFailureMessage, err.Message)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", InvalidInput("bad"), http.StatusBadRequest},
		{"wrapped app error", fmt.Errorf("ctx: %w", Unauthorized("no")), http.StatusUnauthorized},
		{"sentinel not found", fmt.Errorf("x: %w", ErrNotFound), http.StatusNotFound},
		{"sentinel conflict", ErrConflict, http.StatusConflict},
		{"sentinel unavailable", fmt.Errorf("x: %w", ErrServiceUnavail), http.StatusServiceUnavailable},
		{"unknown", fmt.Errorf("mystery"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestWrap(t *testing.T) {
	err := Wrap(ErrNotFound, "load perfume")
	assert.Equal(t, "load perfume: resource not found", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
}
