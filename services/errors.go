package services

import "net/http"

// ServiceError is a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string { return e.Message }

// Unwrap returns the wrapped error.
func (e *ServiceError) Unwrap() error { return e.Err }

// NewValidationError marks malformed or missing input. Never retried.
func NewValidationError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Message: msg}
}

// NewNotFoundError marks an absent order or resource. Webhook handlers treat
// it as a silent no-op instead of surfacing it.
func NewNotFoundError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusNotFound, Message: msg}
}

// NewConflictError marks an optimistic-concurrency loss that exhausted its
// internal retries.
func NewConflictError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusConflict, Message: msg}
}

// NewUpstreamError marks a payment or shipping provider failure.
func NewUpstreamError(msg string, err error) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadGateway, Message: msg, Err: err}
}

// NewConfigurationError marks missing credentials or broken wiring. Fails
// fast at first use.
func NewConfigurationError(msg string, err error) *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Message: msg, Err: err}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(msg string, err error) *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Message: msg, Err: err}
}
