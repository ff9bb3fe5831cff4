package activityclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

// messageResponse is the body of a successful signup or removal.
type messageResponse struct {
	Message string `json:"message"`
}

// errorResponse is the body of a failed request. detail is a string for
// most errors and a list for request validation errors.
type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// APIError is returned when the backend answers with a non-2xx status.
type APIError struct {
	StatusCode int
	// Detail is the backend's "detail" string. Empty when the body was
	// missing, not JSON, or carried a non-string detail.
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status code: %d: %s", e.StatusCode, e.Detail)
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Detail) == 0 {
		return apiErr
	}
	var detail string
	if err := json.Unmarshal(resp.Detail, &detail); err == nil {
		apiErr.Detail = detail
	}
	return apiErr
}

// DetailOr returns the backend detail carried by err, or fallback when err
// is not an *APIError or has no detail.
func DetailOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
