package engine

import (
	"github.com/fieldline/fieldline/internal/expr"
	"github.com/fieldline/fieldline/internal/form"
)

// resolveComputed recomputes every computed field in topological order:
// a computed field that references another computed field's target sees
// the already-updated value within the same pass.
//
// Fields belonging to a dependency cycle are skipped for the pass with a
// CycleError reported per field. Cycles are never retried and never
// abort evaluation of unrelated fields. Evaluation failures on a single
// field are likewise isolated.
//
// A field whose declared dependencies are not all set yet waits: it is
// skipped without an error and its target stays unassigned. A fresh
// form with empty numeric inputs settles cleanly; the field computes on
// the first pass where every input has a value.
func (e *Engine) resolveComputed(computed []form.ComputedField, st *FieldState) []error {
	if len(computed) == 0 {
		return nil
	}

	byTarget := make(map[string]form.ComputedField, len(computed))
	nodes := make([]string, 0, len(computed))
	for _, c := range computed {
		byTarget[c.Target] = c
		nodes = append(nodes, c.Target)
	}

	graph := buildDependencyGraph(computed)
	sccs := tarjanSCC(graph, nodes)

	var failures []error
	for _, scc := range sccs {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			path := cyclePath(scc, graph)
			for _, target := range scc {
				failure := &CycleError{Target: target, Path: path}
				e.log.Warn("computed field skipped: dependency cycle",
					"target", target,
					"cycle", path)
				failures = append(failures, failure)
			}
			continue
		}

		target := scc[0]
		c := byTarget[target]

		if dep := unsetDependency(c, st.Values); dep != "" {
			e.log.Debug("computed field waiting on unset dependency",
				"target", target,
				"dependency", dep)
			continue
		}

		result, err := e.eval.EvaluateExpr(c.Expr, st.Values)
		if err != nil {
			failure := &ComputedFailure{Target: target, Err: err}
			e.log.Warn("computed field evaluation failed",
				"target", target,
				"expr", c.Expr,
				"error", err)
			failures = append(failures, failure)
			continue
		}

		// Write the result without re-entering rule or computed
		// evaluation; downstream fields in this pass read it from Values.
		st.Values[target] = result
	}

	return failures
}

// unsetDependency returns the first declared dependency that has no
// usable value: absent from the context or null. Returns "" when every
// dependency is set.
func unsetDependency(c form.ComputedField, values expr.Context) string {
	for _, dep := range c.Dependencies {
		v, ok := values[dep]
		if !ok {
			return dep
		}
		if _, isNull := v.(expr.Null); isNull {
			return dep
		}
	}
	return ""
}
