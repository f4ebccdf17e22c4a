package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error into one of the failure modes
// shared by all three services.
type Kind int

const (
	// Unexpected covers any downstream failure that is not specially recovered.
	Unexpected Kind = iota
	// NotFound means the entity is missing, blocked or (for a sender) unaffordable.
	NotFound
	// InvalidInput means a malformed or semantically invalid request.
	InvalidInput
	// Conflict means an optimistic-lock version mismatch on a balance write.
	Conflict
	// RateLimited means the spend admission check rejected the request.
	RateLimited
)

// Error carries a failure kind alongside its message. Unexpected errors
// keep the HTTP status of the failing peer so it can be passed through.
type Error struct {
	Kind    Kind
	Message string
	Status  int
}

func (e *Error) Error() string {
	return e.Message
}

// NotFoundf builds a NotFound error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidInputf builds an InvalidInput error.
func InvalidInputf(format string, args ...any) *Error {
	return &Error{Kind: InvalidInput, Message: fmt.Sprintf(format, args...)}
}

// Conflictf builds a Conflict error.
func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: Conflict, Message: fmt.Sprintf(format, args...)}
}

// RateLimitedf builds a RateLimited error.
func RateLimitedf(format string, args ...any) *Error {
	return &Error{Kind: RateLimited, Message: fmt.Sprintf(format, args...)}
}

// Unexpectedf builds an Unexpected error that remembers the peer's status code.
func Unexpectedf(status int, format string, args ...any) *Error {
	return &Error{Kind: Unexpected, Message: fmt.Sprintf(format, args...), Status: status}
}

// KindOf extracts the Kind from err, or Unexpected for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unexpected
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps an error to the HTTP status it should surface with.
// Unexpected errors reuse the failing peer's status when one was recorded.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case NotFound:
		return http.StatusNotFound
	case InvalidInput:
		return http.StatusUnprocessableEntity
	case Conflict:
		return http.StatusConflict
	case RateLimited:
		return http.StatusTooManyRequests
	default:
		if e.Status != 0 {
			return e.Status
		}
		return http.StatusInternalServerError
	}
}
