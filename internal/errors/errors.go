package errors

import (
	"errors"
	"net/http"
)

// Kind classifies a failure for the result envelope and the HTTP layer.
type Kind int

const (
	// KindStore is an unexpected persistence failure.
	KindStore Kind = iota
	// KindNotFound is returned when an entity is absent or not owned by the caller.
	KindNotFound
	// KindValidation is returned when input breaks a business rule.
	KindValidation
	// KindConflict is returned when the current state forbids the transition.
	KindConflict
	// KindUnauthorized is returned when credentials are rejected.
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindValidation:
		return "VALIDATION_FAILED"
	case KindConflict:
		return "CONFLICT"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	default:
		return "STORE_FAILURE"
	}
}

// GenericMessage is shown when a store failure has no friendlier text.
const GenericMessage = "An error occurred."

// Error is a domain failure carrying the user-facing message.
type Error struct {
	Kind    Kind
	Message string
	// Detail fills the envelope's error field when set.
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Message + " " + e.Detail
	}
	if e.Err != nil {
		return e.Message + " " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound creates a KindNotFound error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Validation creates a KindValidation error. Detail names the violated rule.
func Validation(message, detail string) *Error {
	return &Error{Kind: KindValidation, Message: message, Detail: detail}
}

// Conflict creates a KindConflict error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Unauthorized creates a KindUnauthorized error.
func Unauthorized(message, detail string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message, Detail: detail}
}

// Store wraps an unexpected persistence error.
func Store(err error) *Error {
	return &Error{Kind: KindStore, Message: GenericMessage, Err: err}
}

// From returns err as a domain error, wrapping unknown errors as store failures.
func From(err error) *Error {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return Store(err)
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	var domainErr *Error
	return errors.As(err, &domainErr) && domainErr.Kind == kind
}

// HTTPStatus maps a failure kind to an HTTP status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the body returned for failures raised outside the services,
// such as malformed requests or rejected tokens.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
