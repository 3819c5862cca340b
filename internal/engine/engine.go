// Package engine applies a schema's rules and computed fields to live
// field values. One settling pass runs per external value change: rules
// first, in declaration order, then computed fields in dependency order.
// Failures are isolated per rule and per field; a pass always completes.
package engine

import (
	"log/slog"

	"github.com/fieldline/fieldline/internal/form"
)

// Engine evaluates rules and computed fields through an Evaluator.
// It holds no per-form state; callers keep the FieldState between
// passes.
type Engine struct {
	eval Evaluator
	log  *slog.Logger
}

// New creates an engine. A nil logger falls back to slog.Default().
func New(eval Evaluator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{eval: eval, log: logger}
}

// Settle runs one settling pass for a schema: evaluate every rule in
// declaration order, then recompute computed fields in topological
// order. The prior state is not mutated; the returned state is a fresh
// value. Errors are the isolated per-rule and per-field failures; the
// returned state is valid even when errors are present.
func (e *Engine) Settle(s *form.Schema, prior *FieldState) (*FieldState, []error) {
	if prior == nil {
		prior = NewFieldState(s)
	}
	st := prior.clone()

	var failures []error
	failures = append(failures, e.applyRules(s.Rules, st)...)
	failures = append(failures, e.resolveComputed(s.Computed, st)...)

	return st, failures
}
