package types

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies upstream API failures into the small taxonomy the
// rest of the system works with.
type ErrorKind string

const (
	ErrorBadRequest  ErrorKind = "bad-request"
	ErrorNotFound    ErrorKind = "not-found"
	ErrorForbidden   ErrorKind = "forbidden"
	ErrorConflict    ErrorKind = "conflict"
	ErrorRateLimited ErrorKind = "rate-limited"
	ErrorInternal    ErrorKind = "internal"
)

// APIError is a failure reported by the control-plane API.
type APIError struct {
	Kind      ErrorKind
	Status    int    // HTTP status, 0 for transport-level failures
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("catalog: %s (%s, request %s)", e.Message, e.Kind, e.RequestID)
	}
	return fmt.Sprintf("catalog: %s (%s)", e.Message, e.Kind)
}

// ErrorKindFromStatus maps an HTTP status to an ErrorKind.
func ErrorKindFromStatus(status int) ErrorKind {
	switch {
	case status == http.StatusNotFound:
		return ErrorNotFound
	case status == http.StatusForbidden || status == http.StatusUnauthorized:
		return ErrorForbidden
	case status == http.StatusConflict:
		return ErrorConflict
	case status == http.StatusTooManyRequests:
		return ErrorRateLimited
	case status >= 400 && status < 500:
		return ErrorBadRequest
	default:
		return ErrorInternal
	}
}

// StatusFromErrorKind is the inverse mapping, used when rendering upstream
// failures on our own HTTP surface.
func StatusFromErrorKind(kind ErrorKind) int {
	switch kind {
	case ErrorBadRequest:
		return http.StatusBadRequest
	case ErrorNotFound:
		return http.StatusNotFound
	case ErrorForbidden:
		return http.StatusForbidden
	case ErrorConflict:
		return http.StatusConflict
	case ErrorRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
