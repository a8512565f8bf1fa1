package types

import "errors"

// Domain error taxonomy. Services return these (usually wrapped with
// context via fmt.Errorf and %w); controllers map them onto HTTP statuses
// with StatusForError.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
)

// StatusForError maps a domain error to its HTTP status code. Unknown
// errors are treated as internal failures.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return 401
	case errors.Is(err, ErrForbidden):
		return 403
	case errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrConflict):
		return 409
	case errors.Is(err, ErrValidation):
		return 422
	default:
		return 500
	}
}
