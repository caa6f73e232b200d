// ABOUTME: Validation errors for entity construction and decoding, plus the decode report.
// ABOUTME: Nested decode failures are collected as SkipErrors instead of aborting the parent.
package core

import (
	"errors"
	"fmt"
)

// ErrValidation is the sentinel wrapped by every ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError indicates a required field was missing, empty, or out of range.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s %s", e.Entity, e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func missingField(entity, field string) *ValidationError {
	return &ValidationError{Entity: entity, Field: field, Reason: "is required"}
}

func emptyField(entity, field string) *ValidationError {
	return &ValidationError{Entity: entity, Field: field, Reason: "cannot be empty"}
}

// SkipError records a nested entity that was dropped during a tolerant decode.
type SkipError struct {
	Path string
	Err  error
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *SkipError) Unwrap() error {
	return e.Err
}

// DecodeReport collects the nested entities skipped while decoding a collection.
// A nil *DecodeReport is valid and discards everything.
type DecodeReport struct {
	Skipped []*SkipError
}

// Skip records a dropped entity at path.
func (r *DecodeReport) Skip(path string, err error) {
	if r == nil {
		return
	}
	r.Skipped = append(r.Skipped, &SkipError{Path: path, Err: err})
}

// Len returns the number of skipped entities.
func (r *DecodeReport) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Skipped)
}

// Err joins all skip errors, or returns nil when nothing was skipped.
func (r *DecodeReport) Err() error {
	if r.Len() == 0 {
		return nil
	}
	errs := make([]error, len(r.Skipped))
	for i, s := range r.Skipped {
		errs[i] = s
	}
	return errors.Join(errs...)
}
