package engine

import (
	"fmt"

	"github.com/fieldline/fieldline/internal/expr"
	"github.com/fieldline/fieldline/internal/form"
)

// applyRules evaluates every rule in declaration order against the
// working state and applies its actions. Failures are isolated per rule:
// a rule that cannot evaluate is logged and reported, and the pass moves
// on to the next rule.
//
// This is a full re-evaluation on every tracked change, O(rules x
// expression size) per pass. Rule counts are small; no incremental
// diffing is attempted.
func (e *Engine) applyRules(rules []form.Rule, st *FieldState) []error {
	var failures []error

	for i, rule := range rules {
		result, err := e.eval.EvaluateCondition(rule.Condition, st.Values)
		if err != nil {
			failure := &RuleFailure{Rule: i, Err: err}
			e.log.Warn("rule condition failed",
				"rule", i,
				"condition", rule.Condition,
				"error", err)
			failures = append(failures, failure)
			continue
		}

		for _, action := range rule.Actions {
			if err := applyAction(action, result, st); err != nil {
				failure := &RuleFailure{Rule: i, Err: err}
				e.log.Warn("rule action failed",
					"rule", i,
					"action", string(action.Action),
					"target", action.Target,
					"error", err)
				failures = append(failures, failure)
			}
		}
	}

	return failures
}

// applyAction applies one rule action given its condition result.
//
// show/hide always assign the hidden flag from the condition. enable and
// disable are one-directional: they only act when the condition holds,
// and a condition turning false later never reverses a previous
// enable/disable. This asymmetry is part of the rule contract.
func applyAction(action form.RuleAction, conditionResult bool, st *FieldState) error {
	switch action.Action {
	case form.ActionShow:
		st.Hidden[action.Target] = !conditionResult
	case form.ActionHide:
		st.Hidden[action.Target] = conditionResult
	case form.ActionEnable:
		if conditionResult {
			st.Disabled[action.Target] = false
		}
	case form.ActionDisable:
		if conditionResult {
			st.Disabled[action.Target] = true
		}
	case form.ActionSetValue:
		// Assign without re-entering the settling pass. The new value is
		// visible to later rules and to computed fields in this pass.
		if conditionResult && action.Value != nil {
			st.Values[action.Target] = expr.FromAny(action.Value)
		}
	default:
		return fmt.Errorf("unknown action %q", action.Action)
	}
	return nil
}
