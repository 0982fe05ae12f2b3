// Package llm provides a resilient client for an external structured-
// annotation service. It normalizes the heterogeneous reply envelopes the
// provider family is known to emit, retries transient failures with
// linear backoff, and classifies errors into standardized types for
// observability and diagnostics.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Common errors returned by the annotation client.
var (
	// ErrEmptyAPIKey indicates that an API key was required but not provided.
	ErrEmptyAPIKey = errors.New("API key cannot be empty")
	// ErrEmptyResponse indicates that the service returned an empty body.
	ErrEmptyResponse = errors.New("empty response from API")
	// ErrMalformedReply indicates that no known extraction strategy
	// applied to the reply body. A malformed reply is retried, never
	// silently replaced with a default label.
	ErrMalformedReply = errors.New("no known envelope shape matched the reply body")
	// ErrMissingLabel indicates the extracted JSON object had no label field.
	ErrMissingLabel = errors.New("reply object is missing the label field")
)

// maxBodyDiagnostic bounds the reply-body excerpt carried in errors so
// diagnostics stay readable without retaining whole payloads.
const maxBodyDiagnostic = 300

// TruncateBody returns at most maxBodyDiagnostic bytes of a reply body
// for error diagnostics.
func TruncateBody(body string) string {
	if len(body) > maxBodyDiagnostic {
		return body[:maxBodyDiagnostic]
	}
	return body
}

// ErrorType represents the category of an error returned by the
// annotation service. It helps classify errors for standardized handling.
type ErrorType int

const (
	// ErrorTypeUnknown indicates an error of an undetermined category.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeAuthentication indicates a problem with authentication or
	// authorization (e.g., invalid API key).
	ErrorTypeAuthentication
	// ErrorTypeRateLimit indicates that a rate limit has been exceeded.
	ErrorTypeRateLimit
	// ErrorTypeBadRequest indicates a malformed request or invalid parameters.
	ErrorTypeBadRequest
	// ErrorTypeNotFound indicates that a requested resource (e.g., a
	// model) could not be found.
	ErrorTypeNotFound
	// ErrorTypeServerError indicates a problem on the provider's end.
	ErrorTypeServerError
	// ErrorTypeNetwork indicates a client-side network problem.
	ErrorTypeNetwork
	// ErrorTypeTimeout indicates that the request timed out.
	ErrorTypeTimeout
	// ErrorTypeMalformed indicates a success status whose body could not
	// be parsed into a usable annotation.
	ErrorTypeMalformed
)

// ProviderError represents a structured error from the annotation
// service. It normalizes provider-specific failures into a common format
// carrying the HTTP status and a truncated body excerpt for diagnostics.
type ProviderError struct {
	// Type classifies the error into a standard category.
	Type ErrorType
	// Provider identifies the service that produced the error.
	Provider string
	// StatusCode holds the HTTP status code from the response, if applicable.
	StatusCode int
	// Message contains the user-facing error message.
	Message string
	// Body holds a truncated excerpt of the reply body, if one was read.
	Body string
	// WrappedError holds the original underlying error.
	WrappedError error
}

// Error returns a string representation of the ProviderError,
// satisfying the standard error interface.
func (e *ProviderError) Error() string {
	base := fmt.Sprintf("%s error", e.Provider)
	if e.StatusCode > 0 {
		base += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}

	if ts := e.typeString(); ts != "" {
		base += fmt.Sprintf(" [%s]", ts)
	}

	if e.Message != "" {
		base += ": " + e.Message
	}
	if e.Body != "" {
		base += fmt.Sprintf(": body=%q", e.Body)
	}
	if e.WrappedError != nil {
		base += fmt.Sprintf(": %v", e.WrappedError)
	}
	return base
}

// Unwrap returns the underlying wrapped error, allowing for error
// inspection with errors.Is and errors.As.
func (e *ProviderError) Unwrap() error { return e.WrappedError }

// Transient reports whether the failure class is likely to resolve on a
// later attempt. The annotation loop retries every failure regardless of
// class; this distinction is diagnostic only and flows into metrics
// labels, flagging runs that are burning retries on credential or
// request-shape problems no retry can cure.
func (e *ProviderError) Transient() bool {
	switch e.Type {
	case ErrorTypeAuthentication, ErrorTypeBadRequest, ErrorTypeNotFound:
		return false
	default:
		return true
	}
}

func (e *ProviderError) typeString() string {
	switch e.Type {
	case ErrorTypeAuthentication:
		return "authentication"
	case ErrorTypeRateLimit:
		return "rate_limit"
	case ErrorTypeBadRequest:
		return "bad_request"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeServerError:
		return "server_error"
	case ErrorTypeNetwork:
		return "network"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypeMalformed:
		return "malformed_reply"
	default:
		return ""
	}
}

// NewProviderError creates a new ProviderError.
func NewProviderError(provider string, errType ErrorType, statusCode int, message string, wrapped error) *ProviderError {
	return &ProviderError{
		Type:         errType,
		Provider:     provider,
		StatusCode:   statusCode,
		Message:      message,
		WrappedError: wrapped,
	}
}

// ErrorClassifier standardizes service failures into ProviderError
// instances, using the HTTP status code to determine the ErrorType.
type ErrorClassifier struct {
	// Provider is the name of the service for which this classifier works.
	Provider string
}

// ClassifyHTTPError creates a ProviderError from a non-success HTTP
// status, attaching a truncated excerpt of the reply body.
func (ec *ErrorClassifier) ClassifyHTTPError(statusCode int, body string, err error) *ProviderError {
	var errType ErrorType
	var message string

	switch statusCode {
	case 401, 403:
		errType = ErrorTypeAuthentication
		message = fmt.Sprintf("%s authentication failed", ec.Provider)
	case 429:
		errType = ErrorTypeRateLimit
		message = fmt.Sprintf("%s rate limit exceeded", ec.Provider)
	case 400:
		errType = ErrorTypeBadRequest
		message = "bad request"
	case 404:
		errType = ErrorTypeNotFound
		message = "not found"
	case 500, 502, 503, 504:
		errType = ErrorTypeServerError
		message = "server error"
	default:
		switch {
		case statusCode >= 400 && statusCode < 500:
			errType = ErrorTypeBadRequest
		case statusCode >= 500:
			errType = ErrorTypeServerError
		default:
			errType = ErrorTypeUnknown
		}
		message = "unexpected status"
	}

	pe := NewProviderError(ec.Provider, errType, statusCode, message, err)
	pe.Body = TruncateBody(body)
	return pe
}

// ClassifyMalformedBody creates a ProviderError for a success status
// whose body could not be parsed into an annotation.
func (ec *ErrorClassifier) ClassifyMalformedBody(statusCode int, body string, err error) *ProviderError {
	pe := NewProviderError(ec.Provider, ErrorTypeMalformed, statusCode, "unparseable reply", err)
	pe.Body = TruncateBody(body)
	return pe
}

// ClassifyContextError creates a ProviderError from a context-related
// failure such as context.DeadlineExceeded or context.Canceled.
func (ec *ErrorClassifier) ClassifyContextError(err error) *ProviderError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewProviderError(ec.Provider, ErrorTypeTimeout, 0, "context deadline exceeded", err)
	case errors.Is(err, context.Canceled):
		return NewProviderError(ec.Provider, ErrorTypeNetwork, 0, "request canceled", err)
	default:
		return NewProviderError(ec.Provider, ErrorTypeNetwork, 0, "request failed", err)
	}
}
