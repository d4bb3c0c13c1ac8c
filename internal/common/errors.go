// Package common defines shared constants and sentinel errors used across
// the server layers. Callers should use errors.Is to match these values;
// services attach client-facing messages with Detail.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")
	ErrorConflict     = errors.New("already exists")
	ErrorRateLimited  = errors.New("rate limit exceeded")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// ErrUpstream is returned when the language model provider fails or
	// answers with something that cannot be decoded.
	ErrUpstream = errors.New("upstream error")
)

// Detail attaches a client-facing message to one of the sentinels above.
// The result matches kind with errors.Is and prints only msg.
func Detail(kind error, msg string) error {
	return &detailError{kind: kind, msg: msg}
}

// Detailf is Detail with formatting.
func Detailf(kind error, format string, args ...any) error {
	return Detail(kind, fmt.Sprintf(format, args...))
}

type detailError struct {
	kind error
	msg  string
}

func (e *detailError) Error() string { return e.msg }
func (e *detailError) Unwrap() error { return e.kind }
