package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ConflictError indicates a uniqueness rule was violated
	ConflictError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ConflictError) Error() string     { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ConflictError) StatusCode() int     { return http.StatusConflict }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
	ErrValidation = errors.New("validation failed")

	// ErrUnknownBot means the webhook path referenced a bot id with no
	// stored configuration. Request-fatal.
	ErrUnknownBot = errors.New("bot not found")

	// ErrMissingSignatureHeaders is raised before verification is
	// attempted when either signature header is absent.
	ErrMissingSignatureHeaders = errors.New("missing signature headers")

	// ErrInvalidSignature means the ed25519 check over the raw body
	// failed. Maps to 401 at the boundary, never retried.
	ErrInvalidSignature = errors.New("invalid signature")
)
