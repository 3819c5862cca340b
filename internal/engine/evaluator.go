package engine

import (
	"github.com/fieldline/fieldline/internal/expr"
)

// Evaluator abstracts where expression evaluation runs. The engine never
// cares whether a call executed inline on the caller's goroutine or was
// dispatched to the execution host; the two must be behaviorally
// equivalent.
//
// Implemented by Inline (this package) and host.Host.
type Evaluator interface {
	// EvaluateCondition evaluates a rule condition and coerces the
	// result to a boolean.
	EvaluateCondition(condition string, ctx expr.Context) (bool, error)

	// EvaluateExpr evaluates a computed-field expression to a scalar.
	EvaluateExpr(expression string, ctx expr.Context) (expr.Value, error)
}

// Inline evaluates expressions synchronously on the caller's goroutine.
// This is the fallback path when no execution host is running, and the
// reference behavior the host must match.
type Inline struct{}

// EvaluateCondition implements Evaluator.
func (Inline) EvaluateCondition(condition string, ctx expr.Context) (bool, error) {
	return expr.EvaluateCondition(condition, ctx)
}

// EvaluateExpr implements Evaluator.
func (Inline) EvaluateExpr(expression string, ctx expr.Context) (expr.Value, error) {
	return expr.Evaluate(expression, ctx)
}
