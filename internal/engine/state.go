package engine

import (
	"github.com/fieldline/fieldline/internal/expr"
	"github.com/fieldline/fieldline/internal/form"
)

// FieldState is the evaluated presentation state of a form's fields
// after one settling pass: which fields are hidden, which are disabled,
// and the current values including computed results and rule
// assignments.
type FieldState struct {
	Hidden   map[string]bool
	Disabled map[string]bool
	Values   expr.Context
}

// NewFieldState builds the initial state for a schema: nothing hidden,
// only statically disabled elements disabled, values empty.
func NewFieldState(s *form.Schema) *FieldState {
	st := &FieldState{
		Hidden:   make(map[string]bool),
		Disabled: make(map[string]bool),
		Values:   make(expr.Context),
	}
	for _, p := range s.Pages {
		for _, el := range p.Elements {
			if el.Disabled {
				st.Disabled[el.ID] = true
			}
		}
	}
	return st
}

// clone copies the state so a settling pass never mutates its input.
func (st *FieldState) clone() *FieldState {
	out := &FieldState{
		Hidden:   make(map[string]bool, len(st.Hidden)),
		Disabled: make(map[string]bool, len(st.Disabled)),
		Values:   make(expr.Context, len(st.Values)),
	}
	for k, v := range st.Hidden {
		out.Hidden[k] = v
	}
	for k, v := range st.Disabled {
		out.Disabled[k] = v
	}
	for k, v := range st.Values {
		out.Values[k] = v
	}
	return out
}
