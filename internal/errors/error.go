package errors

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyAuth       = errors.New("missing authorization")
	ErrTokenInvalid    = errors.New("invalid token")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("No autorizado")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("invalid request")
	ErrEmptyCart       = errors.New("Carrito vacío")
	ErrUpdateInFlight  = errors.New("status update already in flight")
)

// Kinds of failures reported by the api to the terminal.
var (
	ErrCartMutation = errors.New("cart mutation failed")
	ErrCheckout     = errors.New("checkout failed")
	ErrStatusUpdate = errors.New("status update failed")
	ErrLoad         = errors.New("load failed")
)

// Error carries the message the api answers with next to the kind used to
// pick the status code.
type Error struct {
	Kind    error
	Message string
}

func New(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field string, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ResponseError is a non 2xx answer from the api.
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("api responded statusCode=%d message=%s", e.StatusCode, e.Message)
}

// RemoteError is a failed remote operation as seen by the terminal. Message is
// the server's message when there is one, otherwise the fallback.
type RemoteError struct {
	Kind       error
	StatusCode int
	Message    string
	Err        error
}

func NewRemoteError(kind error, err error, fallback string) *RemoteError {
	remoteErr := &RemoteError{Kind: kind, Message: fallback, Err: err}
	var responseErr *ResponseError
	if errors.As(err, &responseErr) {
		remoteErr.StatusCode = responseErr.StatusCode
		if responseErr.Message != "" {
			remoteErr.Message = responseErr.Message
		}
	}
	return remoteErr
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RemoteError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// PublicMessage is the text shown to a caller for err.
func PublicMessage(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Message
	}
	for _, known := range []error{ErrEmptyCart, ErrForbidden, ErrUnauthenticated, ErrTokenInvalid, ErrEmptyAuth, ErrUpdateInFlight} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "Error interno del servidor"
}
