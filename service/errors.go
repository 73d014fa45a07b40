package service

import (
	"errors"
	"fmt"
)

// Domain failure kinds. Every error leaving the service wraps exactly one of
// these so the HTTP layer can map it to a status without inspecting text.
//
// ErrNotFound covers both "id does not resolve" and "resolves but the caller
// has no visibility" - callers must not be able to tell those apart.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("invalid input")
)

func unauthorizedError(reason string) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, reason)
}

func forbiddenError(reason string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, reason)
}

func notFoundError(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

func conflictError(reason string) error {
	return fmt.Errorf("%w: %s", ErrConflict, reason)
}

func validationError(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}
