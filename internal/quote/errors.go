package quote

import (
	"errors"
	"net/http"
)

var (
	ErrQuoteNotFound       = errors.New("quote not found")
	ErrProviderNotFound    = errors.New("provider not found")
	ErrDuplicateQuote      = errors.New("quote already exists for coverage type and provider")
	ErrDuplicateProvider   = errors.New("provider name already exists")
	ErrInvalidPrice        = errors.New("price must be a non-negative decimal")
	ErrInvalidCoverageType = errors.New("unknown coverage type")
	ErrInvalidPolicy       = errors.New("unknown aggregation type")
	ErrNoStrategy          = errors.New("no aggregation strategy registered")
	ErrMissingField        = errors.New("required field missing")
	ErrMalformedRequest    = errors.New("malformed request")
)

// ErrorType is the stable classification exposed at the API boundary.
type ErrorType struct {
	Name       string
	Code       int
	Status     int
	MessageKey string
}

var (
	GeneralError = ErrorType{"GENERAL_ERROR", 8500, http.StatusInternalServerError, "insurance.general_error"}
	NotFound     = ErrorType{"NOT_FOUND", 8450, http.StatusNotFound, "insurance.not_found"}
	BadRequest   = ErrorType{"BAD_REQUEST", 8400, http.StatusBadRequest, "insurance.bad_request"}
)

var defaultMessages = map[string]string{
	GeneralError.MessageKey: "an internal error occurred",
	NotFound.MessageKey:     "requested resource was not found",
	BadRequest.MessageKey:   "request is invalid",
}

// Message returns the default English message for the error type.
func (t ErrorType) Message() string {
	return defaultMessages[t.MessageKey]
}

// Classify maps err onto the error taxonomy. Unknown errors are GeneralError.
func Classify(err error) ErrorType {
	switch {
	case err == nil:
		return ErrorType{}
	case errors.Is(err, ErrQuoteNotFound), errors.Is(err, ErrProviderNotFound):
		return NotFound
	case errors.Is(err, ErrDuplicateQuote),
		errors.Is(err, ErrDuplicateProvider),
		errors.Is(err, ErrInvalidPrice),
		errors.Is(err, ErrInvalidCoverageType),
		errors.Is(err, ErrInvalidPolicy),
		errors.Is(err, ErrMissingField),
		errors.Is(err, ErrMalformedRequest):
		return BadRequest
	default:
		return GeneralError
	}
}

// FieldError attaches the name of the offending request field to err.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Err.Error() }

func (e *FieldError) Unwrap() error { return e.Err }

func WithField(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}

// ErrorField returns the request field err refers to, or "".
func ErrorField(err error) string {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Field
	}
	return ""
}
