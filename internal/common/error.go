// Package common defines shared sentinel errors used across the ModuleForge
// server layers. Callers should use errors.Is to match these values;
// ErrValidation is typically wrapped with a reason, e.g.
// fmt.Errorf("%w: title is required", common.ErrValidation).
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Authorization errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Input errors.
	ErrValidation    = errors.New("validation error")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
