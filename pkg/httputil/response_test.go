package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/ScentGo/pkg/errors"
	"github.com/utafrali/ScentGo/pkg/logger"
	"github.com/utafrali/ScentGo/pkg/validator"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestWriteData(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteData(rec, http.StatusCreated, map[string]string{"id": "local_1000"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"id":"local_1000"}}`, rec.Body.String())
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{"app not found", apperrors.NotFound("perfume", "p1"), http.StatusNotFound, "NOT_FOUND", "perfume with id p1 not found"},
		{"wrapped sentinel", fmt.Errorf("get perfume: %w", apperrors.ErrNotFound), http.StatusNotFound, "NOT_FOUND", "resource not found"},
		{"invalid input", apperrors.InvalidInput("please fill in all fields"), http.StatusBadRequest, "INVALID_INPUT", "please fill in all fields"},
		{"unavailable", apperrors.ServiceUnavailable(errors.New("dial tcp: refused")), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", apperrors.GenericFailureMessage},
		{"raw error", errors.New("pq: relation missing"), http.StatusInternalServerError, "INTERNAL_ERROR", apperrors.GenericFailureMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/perfumes/p1", nil)
			WriteError(rec, req, tt.err, logger.Discard())

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decode(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMessage, resp.Error.Message)
		})
	}
}

func TestWriteError_LogsBackendTextButHidesIt(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter("test", "error", &buf)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/favorites", nil)
	req = req.WithContext(logger.WithCorrelationID(req.Context(), "corr-9"))
	WriteError(rec, req, errors.New("connection reset by peer"), l)

	assert.NotContains(t, rec.Body.String(), "connection reset")
	assert.Contains(t, buf.String(), "connection reset")
	assert.Equal(t, "corr-9", decode(t, rec).Error.RequestID)
}

func TestWriteValidationError(t *testing.T) {
	type req struct {
		Comment string `json:"comment" validate:"notblank"`
	}
	rec := httptest.NewRecorder()
	WriteValidationError(rec, validator.Validate(req{}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "is required", resp.Error.Fields["comment"])

	rec = httptest.NewRecorder()
	WriteValidationError(rec, errors.New("decode request body: EOF"))
	assert.Equal(t, "INVALID_INPUT", decode(t, rec).Error.Code)
}
