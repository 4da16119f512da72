package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrTransport         = errors.New("network request failed")
	ErrInvalidResponse   = errors.New("invalid response from server")
	ErrRateLimited       = errors.New("too many requests")
	ErrAdminRequired     = errors.New("administrator privileges required")
	ErrNotAuthenticated  = errors.New("not signed in")
	ErrValidation        = errors.New("invalid input")
	ErrAPIBaseURLMissing = errors.New("API base URL is not configured")
	ErrCourseNotFound    = errors.New("course not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidCourseLink = errors.New("invalid course link")
)

// APIError is a non-2xx answer from the backend. Message is the server's
// "error" field when it sent one, otherwise a fallback for the operation.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.Status)
	}
	return e.Message
}

func (e *APIError) Is(target error) bool {
	return target == ErrRateLimited && e.Status == http.StatusTooManyRequests
}

// UserMessage returns the text shown to the user for err, preferring the
// server-provided message over the wrapped chain.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, ErrInvalidResponse) {
		return "Invalid response from server"
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}
