package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/ScentGo/pkg/errors"
)

// RemoteError is the error body returned by the hosted backend's REST layer.
type RemoteError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// translates it into an AppError. The remote message is kept in the wrapped
// error for logging; client-facing messages never include it for 5xx.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", upstream, resp.StatusCode, err)
	}

	var remote RemoteError
	detail := string(body)
	if json.Unmarshal(body, &remote) == nil && remote.Message != "" {
		detail = remote.Message
		if remote.Code != "" {
			detail = remote.Code + ": " + detail
		}
	}
	cause := fmt.Errorf("%s returned status %d: %s", upstream, resp.StatusCode, detail)

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusNotAcceptable:
		return &apperrors.AppError{Code: "NOT_FOUND", Message: "resource not found", Status: http.StatusNotFound, Err: fmt.Errorf("%w: %w", apperrors.ErrNotFound, cause)}
	case resp.StatusCode == http.StatusBadRequest:
		msg := remote.Message
		if msg == "" {
			msg = "invalid request"
		}
		return &apperrors.AppError{Code: "INVALID_INPUT", Message: msg, Status: http.StatusBadRequest, Err: fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, cause)}
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return &apperrors.AppError{Code: "UNAUTHORIZED", Message: "unauthorized", Status: http.StatusUnauthorized, Err: fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, cause)}
	case resp.StatusCode == http.StatusConflict:
		return &apperrors.AppError{Code: "ALREADY_EXISTS", Message: "resource already exists", Status: http.StatusConflict, Err: fmt.Errorf("%w: %w", apperrors.ErrAlreadyExists, cause)}
	case resp.StatusCode >= 500:
		return apperrors.ServiceUnavailable(cause)
	default:
		return apperrors.Internal(cause)
	}
}

// IsSuccess reports whether status is 2xx.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
