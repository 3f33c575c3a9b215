package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is the sentinel for missing users, admins or modules.
	ErrNotFound = errors.New("not found")
	// ErrConflict is the sentinel for duplicate registrations.
	ErrConflict = errors.New("conflict")
	// ErrValidation is the sentinel for malformed or missing input.
	ErrValidation = errors.New("invalid input")
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// Collaborator wraps a failed external call with the collaborator's name so
// the orchestrator can report which branch died.
func Collaborator(name string, err error) error {
	return fmt.Errorf("collaborator %s: %w", name, err)
}

// StatusFor maps the error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
