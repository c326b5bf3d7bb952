// Package common defines shared constants and sentinel errors used across
// the service and its HTTP layer. Callers should use errors.Is to match
// these values.
package common

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Store failures (transaction/commit/driver). Wrapped together with the
	// underlying error.
	ErrStore = errors.New("store error")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Input did not pass validation. Returned errors are *ValidationError.
	ErrValidation = errors.New("validation error")

	// Uniqueness conflicts among live users.
	ErrConflict          = errors.New("conflict")
	ErrDuplicateUsername = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrDuplicateEmail    = fmt.Errorf("%w: email already taken", ErrConflict)

	// Reset token errors. Both collapse to ErrInvalidOrExpiredToken for end users.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrInvalidSignature      = fmt.Errorf("%w: invalid signature", ErrInvalidOrExpiredToken)
	ErrTokenExpired          = fmt.Errorf("%w: token expired", ErrInvalidOrExpiredToken)
)

// ValidationError carries per-field messages for rejected input.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidation) true for any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StoreError classifies a driver or transaction failure as ErrStore while
// keeping the cause reachable through errors.Is/As.
func StoreError(err error) error {
	return fmt.Errorf("%w: db error: %w", ErrStore, err)
}
