package proposal

import (
	"errors"
	"fmt"
	"net/http"

	"proposal-generator/pkg/models"
)

// Kind tags a generation failure
type Kind string

const (
	KindValidation        Kind = "ValidationError"
	KindConfiguration     Kind = "ConfigurationError"
	KindUpstream          Kind = "UpstreamError"
	KindMalformedResponse Kind = "MalformedResponseError"
	KindUnexpected        Kind = "UnexpectedError"
)

// Error is the only error type Generate returns. Status is the HTTP status
// the failure is reported with.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Details interface{}
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Response renders the error as the JSON body sent to callers
func (e *Error) Response() models.ErrorResponse {
	resp := models.ErrorResponse{
		Error:   e.Message,
		Details: e.Details,
	}
	if e.Kind == KindUnexpected && e.Cause != nil {
		resp.Message = e.Cause.Error()
	}
	return resp
}

// NewValidationError reports missing or invalid input
func NewValidationError(message string) *Error {
	return &Error{
		Kind:    KindValidation,
		Status:  http.StatusBadRequest,
		Message: message,
	}
}

// NewConfigurationError reports a missing provider credential
func NewConfigurationError(keyName string) *Error {
	return &Error{
		Kind:    KindConfiguration,
		Status:  http.StatusInternalServerError,
		Message: fmt.Sprintf("API key not configured. Please add %s to your environment variables.", keyName),
	}
}

// NewUpstreamError mirrors a non-2xx provider response
func NewUpstreamError(status int, details interface{}) *Error {
	return &Error{
		Kind:    KindUpstream,
		Status:  status,
		Message: fmt.Sprintf("API request failed: %s", http.StatusText(status)),
		Details: details,
	}
}

// NewMalformedResponseError reports a 2xx response without the expected text
func NewMalformedResponseError(details interface{}, cause error) *Error {
	return &Error{
		Kind:    KindMalformedResponse,
		Status:  http.StatusInternalServerError,
		Message: "Invalid response format from API",
		Details: details,
		Cause:   cause,
	}
}

// NewUnexpectedError wraps any other failure
func NewUnexpectedError(cause error) *Error {
	return &Error{
		Kind:    KindUnexpected,
		Status:  http.StatusInternalServerError,
		Message: "Failed to generate proposal",
		Cause:   cause,
	}
}

// AsError returns err as a tagged *Error, wrapping untagged errors as unexpected
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged
	}
	return NewUnexpectedError(err)
}
