package services

import "errors"

// Failure kinds surfaced to the HTTP layer. Every service error wraps exactly
// one of these so controllers can map it with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)
