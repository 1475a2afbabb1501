package errs

import (
	"errors"
	"net/http"
)

// Sentinel errors for every failure class the core can report. Handlers
// wrap these with fmt.Errorf("%w: ...") and map them to HTTP at the edge.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrExpired           = errors.New("expired")
	ErrMismatch          = errors.New("code mismatch")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrTooManyItems      = errors.New("too many items")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInternal          = errors.New("internal error")
)

// HTTPStatus maps an error from the core to a response status code
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrExpired),
		errors.Is(err, ErrMismatch),
		errors.Is(err, ErrTooManyItems):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
