package engine

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldline/fieldline/internal/expr"
	"github.com/fieldline/fieldline/internal/form"
)

func testEngine() *Engine {
	return New(Inline{}, slog.Default())
}

func schemaWithRules(rules ...form.Rule) *form.Schema {
	return &form.Schema{
		ID:      "form-1",
		Version: "1.0.0",
		Pages: []form.Page{{
			ID: "page-1",
			Elements: []form.Element{
				{ID: "age", Type: form.ElementNumber},
				{ID: "consent", Type: form.ElementCheckbox},
				{ID: "discount", Type: form.ElementNumber},
				{ID: "notes", Type: form.ElementText},
			},
		}},
		Rules: rules,
	}
}

func settleWith(t *testing.T, s *form.Schema, values expr.Context) (*FieldState, []error) {
	t.Helper()
	st := NewFieldState(s)
	for k, v := range values {
		st.Values[k] = v
	}
	return testEngine().Settle(s, st)
}

func TestSettle_ShowRule(t *testing.T) {
	s := schemaWithRules(form.Rule{
		Condition: "age >= 18",
		Actions:   []form.RuleAction{{Action: form.ActionShow, Target: "consent"}},
	})

	st, errs := settleWith(t, s, expr.Context{"age": expr.Number(20)})
	require.Empty(t, errs)
	assert.False(t, st.Hidden["consent"])

	st, errs = settleWith(t, s, expr.Context{"age": expr.Number(16)})
	require.Empty(t, errs)
	assert.True(t, st.Hidden["consent"])
}

func TestSettle_HideRule(t *testing.T) {
	s := schemaWithRules(form.Rule{
		Condition: "age < 18",
		Actions:   []form.RuleAction{{Action: form.ActionHide, Target: "notes"}},
	})

	st, errs := settleWith(t, s, expr.Context{"age": expr.Number(16)})
	require.Empty(t, errs)
	assert.True(t, st.Hidden["notes"])

	st, errs = settleWith(t, s, expr.Context{"age": expr.Number(30)})
	require.Empty(t, errs)
	assert.False(t, st.Hidden["notes"])
}

func TestSettle_DisableIsOneDirectional(t *testing.T) {
	s := schemaWithRules(form.Rule{
		Condition: "age < 18",
		Actions:   []form.RuleAction{{Action: form.ActionDisable, Target: "consent"}},
	})
	e := testEngine()

	// Condition true: target becomes disabled.
	st := NewFieldState(s)
	st.Values["age"] = expr.Number(16)
	st, errs := e.Settle(s, st)
	require.Empty(t, errs)
	assert.True(t, st.Disabled["consent"])

	// Condition turns false: a previously disabled target stays disabled.
	st.Values["age"] = expr.Number(21)
	st, errs = e.Settle(s, st)
	require.Empty(t, errs)
	assert.True(t, st.Disabled["consent"], "false condition must not re-enable")
}

func TestSettle_EnableIsOneDirectional(t *testing.T) {
	s := schemaWithRules(form.Rule{
		Condition: "age >= 18",
		Actions:   []form.RuleAction{{Action: form.ActionEnable, Target: "discount"}},
	})
	s.Pages[0].Elements[2].Disabled = true // discount starts disabled
	e := testEngine()

	st := NewFieldState(s)
	require.True(t, st.Disabled["discount"])

	// Condition false: stays disabled.
	st.Values["age"] = expr.Number(10)
	st, errs := e.Settle(s, st)
	require.Empty(t, errs)
	assert.True(t, st.Disabled["discount"])

	// Condition true: enabled.
	st.Values["age"] = expr.Number(20)
	st, errs = e.Settle(s, st)
	require.Empty(t, errs)
	assert.False(t, st.Disabled["discount"])

	// Condition false again: stays enabled.
	st.Values["age"] = expr.Number(10)
	st, errs = e.Settle(s, st)
	require.Empty(t, errs)
	assert.False(t, st.Disabled["discount"])
}

func TestSettle_SetValue(t *testing.T) {
	s := schemaWithRules(form.Rule{
		Condition: "age >= 65",
		Actions:   []form.RuleAction{{Action: form.ActionSetValue, Target: "discount", Value: 0.2}},
	})

	st, errs := settleWith(t, s, expr.Context{"age": expr.Number(70)})
	require.Empty(t, errs)
	assert.True(t, expr.Equal(st.Values["discount"], expr.Number(0.2)))

	// False condition leaves the value untouched.
	st, errs = settleWith(t, s, expr.Context{"age": expr.Number(30)})
	require.Empty(t, errs)
	_, present := st.Values["discount"]
	assert.False(t, present)
}

func TestSettle_SetValueVisibleToLaterRules(t *testing.T) {
	s := schemaWithRules(
		form.Rule{
			Condition: "age >= 65",
			Actions:   []form.RuleAction{{Action: form.ActionSetValue, Target: "discount", Value: 0.2}},
		},
		form.Rule{
			Condition: "discount > 0",
			Actions:   []form.RuleAction{{Action: form.ActionShow, Target: "notes"}},
		},
	)

	st, errs := settleWith(t, s, expr.Context{
		"age":      expr.Number(70),
		"discount": expr.Number(0),
	})
	require.Empty(t, errs)
	assert.False(t, st.Hidden["notes"])
}

func TestSettle_RuleFailureIsIsolated(t *testing.T) {
	s := schemaWithRules(
		form.Rule{
			Condition: "missing > 1", // unknown variable
			Actions:   []form.RuleAction{{Action: form.ActionHide, Target: "notes"}},
		},
		form.Rule{
			Condition: "age >= 18",
			Actions:   []form.RuleAction{{Action: form.ActionShow, Target: "consent"}},
		},
	)

	st, errs := settleWith(t, s, expr.Context{"age": expr.Number(20)})

	require.Len(t, errs, 1)
	var rf *RuleFailure
	require.ErrorAs(t, errs[0], &rf)
	assert.Equal(t, 0, rf.Rule)
	assert.True(t, expr.IsUnknownVariableError(rf.Err))

	// The second rule still ran.
	assert.False(t, st.Hidden["consent"])
}

func TestSettle_ConditionCoercion(t *testing.T) {
	tests := []struct {
		name   string
		value  expr.Value
		hidden bool
	}{
		{"empty string is false", expr.String(""), true},
		{"zero is false", expr.Number(0), true},
		{"null is false", expr.Null{}, true},
		{"non-empty string is true", expr.String("x"), false},
		{"non-zero is true", expr.Number(2), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := schemaWithRules(form.Rule{
				Condition: "age",
				Actions:   []form.RuleAction{{Action: form.ActionShow, Target: "consent"}},
			})
			st, errs := settleWith(t, s, expr.Context{"age": tt.value})
			require.Empty(t, errs)
			assert.Equal(t, tt.hidden, st.Hidden["consent"])
		})
	}
}

func TestSettle_PriorStateNotMutated(t *testing.T) {
	s := schemaWithRules(form.Rule{
		Condition: "age >= 18",
		Actions:   []form.RuleAction{{Action: form.ActionHide, Target: "consent"}},
	})

	prior := NewFieldState(s)
	prior.Values["age"] = expr.Number(20)

	st, errs := testEngine().Settle(s, prior)
	require.Empty(t, errs)
	assert.True(t, st.Hidden["consent"])
	assert.False(t, prior.Hidden["consent"], "Settle must not mutate its input")
}
