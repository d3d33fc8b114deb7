package models

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrForbidden = errors.New("you are not allowed to manage this record")
	ErrBanned    = errors.New("you have been banned from the system")
	ErrConflict  = errors.New("record was modified concurrently, reload and try again")
	ErrNotDraft  = errors.New("only drafts can be changed, published snapshots are read-only")
	ErrDuplicate = errors.New("record already exists")
)

// ValidationError lists failing constraints keyed by snake_case field name.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
