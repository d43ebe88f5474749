package ats

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound covers stale IDs and, deliberately, invalid or inactive
	// apply tokens: the public form must not reveal whether a posting exists.
	ErrNotFound = errors.New("ats: not found")

	// ErrAlreadyApplied is returned when a (job, candidate) pair already has
	// an application row.
	ErrAlreadyApplied = errors.New("ats: already applied")
)

// ValidationError carries per-field messages rendered next to the offending
// inputs. It is user-correctable and never aborts the request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// newFieldError builds a single-field ValidationError.
func newFieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// DuplicateError reports a business-rule collision with an existing record,
// carrying a reference so the UI can link to it.
type DuplicateError struct {
	ExistingID string
	Field      string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s matches existing record %s", e.Field, e.ExistingID)
}

// ConflictError reports a state-dependent refusal, such as deactivating a
// client that still has open jobs.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }
