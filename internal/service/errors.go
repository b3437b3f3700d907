package service

import (
	"errors"
	"sort"
	"strings"
)

// Common service errors. Handlers map them to API error codes.
var (
	ErrNotFound            = errors.New("not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrAlreadyEnrolled     = errors.New("already enrolled")
	ErrUpstreamUnavailable = errors.New("language model unavailable and no fallback questions")
)

// FieldError is a validation failure the service detected after binding.
// Fields maps the offending request field to a reason.
type FieldError struct {
	Fields map[string]string
}

func (e *FieldError) Error() string {
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

func fieldError(field, reason string) *FieldError {
	return &FieldError{Fields: map[string]string{field: reason}}
}
