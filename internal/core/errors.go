package core

import "errors"

// Error codes carried on the wire.
const (
	ErrCodeUnauthorized        = "unauthorized"
	ErrCodeValidation          = "validation_error"
	ErrCodePersistence         = "persistence_error"
	ErrCodeLocationUnavailable = "location_unavailable"
	ErrCodeNotFound            = "not_found"
	ErrCodeBadRequest          = "bad_request"
)

var (
	// ErrInvalidCredential means authentication was rejected; the session
	// owning the connection must close.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrValidation means a request was malformed; the session stays open.
	ErrValidation = errors.New("validation error")
	// ErrPersistence means storage was unavailable for the operation.
	ErrPersistence = errors.New("persistence error")
	// ErrLocationUnavailable means a proximity query has no reference point.
	ErrLocationUnavailable = errors.New("location unavailable")
	// ErrNotFound means an operation referenced a nonexistent user.
	ErrNotFound = errors.New("not found")
	// ErrSessionClosed means a command arrived after the session terminated.
	ErrSessionClosed = errors.New("session closed")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

// codeFor maps a domain error to its wire code.
func codeFor(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredential):
		return ErrCodeUnauthorized
	case errors.Is(err, ErrValidation):
		return ErrCodeValidation
	case errors.Is(err, ErrPersistence):
		return ErrCodePersistence
	case errors.Is(err, ErrLocationUnavailable):
		return ErrCodeLocationUnavailable
	case errors.Is(err, ErrNotFound):
		return ErrCodeNotFound
	default:
		return ErrCodeBadRequest
	}
}
