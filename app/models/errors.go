package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shashiranjanraj/bazaar/pkg/validate"
)

// Error kinds. Every failure surfaced by models, repositories and services
// wraps exactly one of these so callers can branch with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrConflict          = errors.New("conflict")
)

// ValidationError carries field → message pairs.
type ValidationError struct {
	Entity string
	Fields map[string]string
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
	return fmt.Sprintf("%s: %s: %s", e.Entity, ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// invalid builds a single-field ValidationError.
func invalid(entity, field, msg string) error {
	return &ValidationError{Entity: entity, Fields: map[string]string{field: msg}}
}

// check runs struct-tag validation on v and returns a *ValidationError when
// any rule fails.
func check(entity string, v interface{}) error {
	if errs := validate.Struct(v); validate.HasErrors(errs) {
		return &ValidationError{Entity: entity, Fields: errs}
	}
	return nil
}

// TransitionError reports a status change outside the legal edge set.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s from %s to %s", e.Entity, ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
