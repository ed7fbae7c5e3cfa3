package genai

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidResponse is returned when a 2xx body lacks candidates[0].content.parts[0].text.
	ErrInvalidResponse = errors.New("invalid API response structure or no content")

	// ErrRetriesExhausted wraps the last transient error once the attempt budget is spent.
	ErrRetriesExhausted = errors.New("max retries exceeded")

	// ErrRequestBuild marks failures constructing the outgoing request.
	ErrRequestBuild = errors.New("build request")
)

// StatusError is a non-2xx answer from the model endpoint.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("genai: http %d: %s", e.Code, e.Message)
}

// Temporary reports whether the status is worth retrying (429 or 5xx).
func (e *StatusError) Temporary() bool {
	return ClassifyStatus(e.Code) == ActionRetry
}

// ErrorAction determines how to handle an error.
type ErrorAction int

const (
	ActionRetry ErrorAction = iota
	ActionFatal
)

func (a ErrorAction) String() string {
	if a == ActionFatal {
		return "permanent"
	}
	return "transient"
}

// ClassifyStatus maps an HTTP status to an action.
// Throttling (429) and server errors (>=500) are transient; every other
// non-2xx status is permanent.
func ClassifyStatus(code int) ErrorAction {
	if code == http.StatusTooManyRequests || code >= http.StatusInternalServerError {
		return ActionRetry
	}
	return ActionFatal
}

// ClassifyError determines the action for an error produced by one attempt.
func ClassifyError(err error) ErrorAction {
	if err == nil {
		return ActionRetry // Should not happen
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return ClassifyStatus(statusErr.Code)
	}

	// Bugs in request construction never heal on retry
	if errors.Is(err, ErrRequestBuild) {
		return ActionFatal
	}

	// Transport failures and malformed success bodies
	return ActionRetry
}
