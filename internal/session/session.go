// Package session is the fill-out runtime: it binds a form schema to
// live values, re-settles rules and computed fields on every change,
// and validates and persists submissions.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fieldline/fieldline/internal/engine"
	"github.com/fieldline/fieldline/internal/expr"
	"github.com/fieldline/fieldline/internal/form"
)

// IDGenerator produces submission ids.
type IDGenerator interface {
	NewID() (string, error)
}

// UUIDv7Generator generates time-ordered UUIDs, so submission ids sort
// by creation time.
type UUIDv7Generator struct{}

func (UUIDv7Generator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return id.String(), nil
}

// Saver persists submissions. *store.Store satisfies it.
type Saver interface {
	SaveSubmission(ctx context.Context, sub *form.Submission) error
}

// Session holds the live state of one fill-out of a form.
// Not safe for concurrent use.
type Session struct {
	schema *form.Schema
	eng    *engine.Engine
	state  *engine.FieldState
	page   int
	ids    IDGenerator
	log    *slog.Logger
}

// New starts a session: every element gets its type's default value and
// an initial settle pass runs so rules and computed fields reflect the
// defaults. Settle failures from the initial pass are returned alongside
// the session; they are non-fatal.
func New(schema *form.Schema, eval engine.Evaluator, logger *slog.Logger) (*Session, []error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		schema: schema,
		eng:    engine.New(eval, logger),
		ids:    UUIDv7Generator{},
		log:    logger,
	}

	st := engine.NewFieldState(schema)
	for pi := range schema.Pages {
		for ei := range schema.Pages[pi].Elements {
			el := &schema.Pages[pi].Elements[ei]
			st.Values[el.ID] = expr.FromAny(defaultValue(el))
		}
	}

	var errs []error
	s.state, errs = s.eng.Settle(schema, st)
	return s, errs
}

// SetIDGenerator replaces the submission id source. Tests use this with
// a fixed generator.
func (s *Session) SetIDGenerator(g IDGenerator) {
	s.ids = g
}

// defaultValue picks the initial value for an element: checkboxes start
// false, numbers start null, everything else uses the declared default
// or the empty string.
func defaultValue(el *form.Element) any {
	switch el.Type {
	case form.ElementCheckbox:
		if b, ok := el.Default.(bool); ok {
			return b
		}
		return false
	case form.ElementNumber:
		if el.Default != nil {
			return el.Default
		}
		return nil
	default:
		if el.Default != nil {
			return el.Default
		}
		return ""
	}
}

// SetValue updates one field and runs a settle pass. Unknown element
// ids are ignored with a warning; rules and computed fields can target
// only declared elements, so an unknown id is always a caller bug.
func (s *Session) SetValue(id string, value any) []error {
	if s.schema.Element(id) == nil {
		s.log.Warn("set value for unknown element", "element", id)
		return nil
	}
	s.state.Values[id] = expr.FromAny(value)

	var errs []error
	s.state, errs = s.eng.Settle(s.schema, s.state)
	return errs
}

// Value returns the current value of a field as a plain Go value.
func (s *Session) Value(id string) any {
	return expr.ToAny(s.state.Values[id])
}

// Values returns all current field values as plain Go values.
func (s *Session) Values() map[string]any {
	out := make(map[string]any, len(s.state.Values))
	for k, v := range s.state.Values {
		out[k] = expr.ToAny(v)
	}
	return out
}

// Hidden reports whether an element is currently hidden by a rule.
func (s *Session) Hidden(id string) bool {
	return s.state.Hidden[id]
}

// Disabled reports whether an element is currently disabled.
func (s *Session) Disabled(id string) bool {
	return s.state.Disabled[id]
}

// Schema returns the schema this session fills out.
func (s *Session) Schema() *form.Schema {
	return s.schema
}

// CurrentPage returns the index of the page being filled out.
func (s *Session) CurrentPage() int {
	return s.page
}

// Page returns the current page.
func (s *Session) Page() form.Page {
	return s.schema.Pages[s.page]
}

// NextPage advances to the next page. Returns false when already on the
// last page.
func (s *Session) NextPage() bool {
	if s.page+1 >= len(s.schema.Pages) {
		return false
	}
	s.page++
	return true
}

// PreviousPage moves back one page. Returns false when already on the
// first page.
func (s *Session) PreviousPage() bool {
	if s.page == 0 {
		return false
	}
	s.page--
	return true
}

// Submit validates the current values and persists a submission. On
// validation failure it returns a ValidationFailedError listing every
// issue and persists nothing.
func (s *Session) Submit(ctx context.Context, saver Saver) (*form.Submission, error) {
	if issues := s.Validate(); len(issues) > 0 {
		return nil, &ValidationFailedError{Issues: issues}
	}

	id, err := s.ids.NewID()
	if err != nil {
		return nil, err
	}

	sub := &form.Submission{
		ID:          id,
		FormID:      s.schema.ID,
		FormVersion: s.schema.Version,
		Data:        s.Values(),
	}
	if err := saver.SaveSubmission(ctx, sub); err != nil {
		return nil, err
	}

	s.log.Info("submission saved",
		"submission", sub.ID,
		"form", sub.FormID,
		"version", sub.FormVersion,
	)
	return sub, nil
}
