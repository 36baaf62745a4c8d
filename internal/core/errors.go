package core

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies console errors for HTTP rendering and for the
// propagation policy: read/list helpers degrade, everything else surfaces.
type ErrorType string

const (
	// ErrorTypeConfiguration indicates a missing or unusable credential or
	// setting. Fatal: the console cannot operate without it.
	ErrorTypeConfiguration ErrorType = "configuration_error"
	// ErrorTypeNotFound indicates a missing local path or remote resource.
	ErrorTypeNotFound ErrorType = "not_found_error"
	// ErrorTypeProvider indicates an upstream provider failure (5xx).
	ErrorTypeProvider ErrorType = "provider_error"
	// ErrorTypeInvalidRequest indicates a client error (4xx).
	ErrorTypeInvalidRequest ErrorType = "invalid_request_error"
	// ErrorTypeEmptyCacheContent indicates that nothing usable survived
	// content normalization. Raised before any remote call is made.
	ErrorTypeEmptyCacheContent ErrorType = "empty_cache_content_error"
	// ErrorTypeTransport indicates a URL download failure (non-2xx or
	// network error).
	ErrorTypeTransport ErrorType = "transport_error"
	// ErrorTypeAuthentication indicates a rejected master key.
	ErrorTypeAuthentication ErrorType = "authentication_error"
)

// ConsoleError is the base error type surfaced by the console's services.
type ConsoleError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	// Err is the underlying cause, kept for logs and never serialized.
	Err error `json:"-"`
}

func (e *ConsoleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *ConsoleError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the HTTP status the presentation layer should use.
func (e *ConsoleError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}
	switch e.Type {
	case ErrorTypeConfiguration:
		return http.StatusInternalServerError
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeInvalidRequest, ErrorTypeEmptyCacheContent:
		return http.StatusBadRequest
	case ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case ErrorTypeProvider, ErrorTypeTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ToJSON converts the error to the response shape the console UI expects.
func (e *ConsoleError) ToJSON() map[string]any {
	return map[string]any{
		"error": map[string]any{
			"type":    e.Type,
			"message": e.Message,
		},
	}
}

// NewConfigurationError creates a fatal configuration error.
func NewConfigurationError(message string) *ConsoleError {
	return &ConsoleError{Type: ErrorTypeConfiguration, Message: message}
}

// NewNotFoundError creates a not-found error.
func NewNotFoundError(message string, err error) *ConsoleError {
	return &ConsoleError{Type: ErrorTypeNotFound, Message: message, StatusCode: http.StatusNotFound, Err: err}
}

// NewProviderError creates an upstream provider error.
func NewProviderError(message string, err error) *ConsoleError {
	return &ConsoleError{Type: ErrorTypeProvider, Message: message, StatusCode: http.StatusBadGateway, Err: err}
}

// NewInvalidRequestError creates a client error.
func NewInvalidRequestError(message string, err error) *ConsoleError {
	return &ConsoleError{Type: ErrorTypeInvalidRequest, Message: message, StatusCode: http.StatusBadRequest, Err: err}
}

// NewEmptyCacheContentError creates the pre-flight error for a cache create
// whose contents normalized to nothing.
func NewEmptyCacheContentError() *ConsoleError {
	return &ConsoleError{
		Type:       ErrorTypeEmptyCacheContent,
		Message:    "no usable cache content after normalization",
		StatusCode: http.StatusBadRequest,
	}
}

// NewTransportError creates a URL download error.
func NewTransportError(message string, err error) *ConsoleError {
	return &ConsoleError{Type: ErrorTypeTransport, Message: message, StatusCode: http.StatusBadGateway, Err: err}
}

// TypeOf returns the console error type of err, or "" when err is not a
// ConsoleError.
func TypeOf(err error) ErrorType {
	var ce *ConsoleError
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ""
}
