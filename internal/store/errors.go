package store

import "net/http"

// Error is a storage failure that already knows how the API reports it.
// Callers match with errors.Is against the sentinels below; copies made
// with WithCause still match.
type Error struct {
	Code    int    // HTTP status
	Message string // safe to show to clients
	Err     error  // optional cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPCode returns the status the error maps to.
func (e *Error) HTTPCode() int { return e.Code }

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: err}
}

// Is matches on status and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code && e.Message == t.Message
}

var (
	// ErrNotFound is returned for a missing row, and by updates that touch none.
	ErrNotFound = &Error{Code: http.StatusNotFound, Message: "resource not found"}
	// ErrAlreadyExists is returned when a unique key is taken: a username,
	// a writer's second review of a song, a second post for a song, or a
	// second week with the same Monday.
	ErrAlreadyExists = &Error{Code: http.StatusConflict, Message: "resource already exists"}

	ErrSessionNotFound = &Error{Code: http.StatusUnauthorized, Message: "session not found"}
	ErrSessionExpired  = &Error{Code: http.StatusUnauthorized, Message: "session expired"}
)
