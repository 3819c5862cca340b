package engine

import (
	"errors"
	"fmt"
	"strings"
)

// CycleError reports that a computed field sits inside a dependency
// cycle and was skipped for the settling pass. One CycleError is
// produced per affected field; unrelated fields still evaluate.
type CycleError struct {
	// Target is the computed field that was skipped.
	Target string

	// Path is the cycle membership, e.g. ["a", "b", "a"].
	Path []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("computed field %q is part of a dependency cycle: %s",
			e.Target, strings.Join(e.Path, " -> "))
	}
	return fmt.Sprintf("computed field %q is part of a dependency cycle", e.Target)
}

// IsCycleError returns true if the error is a cycle detection error.
// Uses errors.As to handle wrapped errors.
func IsCycleError(err error) bool {
	var ce *CycleError
	return errors.As(err, &ce)
}

// RuleFailure wraps a failure evaluating one rule's condition or
// applying its actions. The failing rule is identified by declaration
// index; later rules are unaffected.
type RuleFailure struct {
	Rule int
	Err  error
}

// Error implements the error interface.
func (e *RuleFailure) Error() string {
	return fmt.Sprintf("rule %d: %v", e.Rule, e.Err)
}

// Unwrap returns the underlying evaluation error.
func (e *RuleFailure) Unwrap() error { return e.Err }

// ComputedFailure wraps a failure evaluating one computed field.
type ComputedFailure struct {
	Target string
	Err    error
}

// Error implements the error interface.
func (e *ComputedFailure) Error() string {
	return fmt.Sprintf("computed field %q: %v", e.Target, e.Err)
}

// Unwrap returns the underlying evaluation error.
func (e *ComputedFailure) Unwrap() error { return e.Err }
