// Package form defines the data model for declarative form schemas:
// pages of elements, conditional rules, computed fields, submissions, and
// the append-only audit trail kept by the store.
package form

import (
	"encoding/json"
	"time"
)

// Schema is the declarative description of a form. It is persisted as a
// unit and snapshotted into the audit trail on every create/update.
type Schema struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Version   string          `json:"version"`
	Pages     []Page          `json:"pages"`
	Rules     []Rule          `json:"rules,omitempty"`
	Computed  []ComputedField `json:"computed,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Page groups elements for multi-page forms.
type Page struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Elements []Element `json:"elements"`
}

// ElementType enumerates the supported field kinds.
type ElementType string

const (
	ElementText     ElementType = "text"
	ElementTextarea ElementType = "textarea"
	ElementNumber   ElementType = "number"
	ElementCheckbox ElementType = "checkbox"
	ElementSelect   ElementType = "select"
	ElementRadio    ElementType = "radio"
	ElementDate     ElementType = "date"
)

// Element is a single form field. IDs are unique within a schema.
type Element struct {
	ID          string      `json:"id"`
	Type        ElementType `json:"type"`
	Label       string      `json:"label"`
	Placeholder string      `json:"placeholder,omitempty"`
	Required    bool        `json:"required,omitempty"`
	Disabled    bool        `json:"disabled,omitempty"`
	Default     any         `json:"default,omitempty"`
	Validators  Validators  `json:"validators,omitempty"`
	Options     []string    `json:"options,omitempty"`
}

// Validators holds the optional per-element validation constraints.
// Pointer fields distinguish "not set" from zero.
type Validators struct {
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
}

// ActionType enumerates what a rule can do to its target element.
type ActionType string

const (
	ActionShow     ActionType = "show"
	ActionHide     ActionType = "hide"
	ActionEnable   ActionType = "enable"
	ActionDisable  ActionType = "disable"
	ActionSetValue ActionType = "setValue"
)

// RuleAction is one effect applied when a rule's condition evaluates.
type RuleAction struct {
	Action ActionType `json:"action"`
	Target string     `json:"target"`
	Value  any        `json:"value,omitempty"`
}

// Rule ties a boolean condition expression to an ordered list of actions.
type Rule struct {
	Condition string       `json:"if"`
	Actions   []RuleAction `json:"then"`
}

// ComputedField derives a target element's value from an expression.
// Dependencies must be a superset of the identifiers Expr references.
type ComputedField struct {
	Target       string   `json:"target"`
	Expr         string   `json:"expr"`
	Dependencies []string `json:"dependencies"`
}

// AuditAction enumerates the recorded mutation kinds.
type AuditAction string

const (
	AuditCreate     AuditAction = "create"
	AuditUpdate     AuditAction = "update"
	AuditDelete     AuditAction = "delete"
	AuditSubmission AuditAction = "submission"
	AuditSeed       AuditAction = "seed"
)

// SystemFormID is the FormID used for audit entries that concern the
// whole store rather than one form (currently only seed entries).
const SystemFormID = "system"

// AuditEntry is one immutable record in the append-only trail.
// PayloadHash is a domain-separated SHA-256 over the canonical JSON
// payload, so a trail can be integrity-checked offline. Payload is
// already canonical JSON and marshals inline, not as base64.
type AuditEntry struct {
	ID          int64           `json:"id"`
	FormID      string          `json:"formId"`
	Action      AuditAction     `json:"action"`
	Payload     json.RawMessage `json:"payload"`
	PayloadHash string          `json:"payloadHash"`
	At          time.Time       `json:"at"`
}

// Submission is one filled-out instance of a form. Its lifecycle is
// independent of the schema: deleting a form does not cascade here.
type Submission struct {
	ID          string         `json:"id"`
	FormID      string         `json:"formId"`
	FormVersion string         `json:"formVersion"`
	Data        map[string]any `json:"data"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Element returns the element with the given id, or nil.
func (s *Schema) Element(id string) *Element {
	for pi := range s.Pages {
		for ei := range s.Pages[pi].Elements {
			if s.Pages[pi].Elements[ei].ID == id {
				return &s.Pages[pi].Elements[ei]
			}
		}
	}
	return nil
}

// ElementIDs returns all element ids in page/declaration order.
func (s *Schema) ElementIDs() []string {
	var ids []string
	for _, p := range s.Pages {
		for _, e := range p.Elements {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// Clone returns a deep copy of the schema. Authoring operations always
// produce a fresh value; nothing edits a shared schema in place.
func (s *Schema) Clone() *Schema {
	out := *s
	out.Pages = make([]Page, len(s.Pages))
	for i, p := range s.Pages {
		np := p
		np.Elements = make([]Element, len(p.Elements))
		copy(np.Elements, p.Elements)
		for j := range np.Elements {
			np.Elements[j].Options = append([]string(nil), p.Elements[j].Options...)
		}
		out.Pages[i] = np
	}
	out.Rules = make([]Rule, len(s.Rules))
	for i, r := range s.Rules {
		nr := r
		nr.Actions = append([]RuleAction(nil), r.Actions...)
		out.Rules[i] = nr
	}
	out.Computed = make([]ComputedField, len(s.Computed))
	for i, c := range s.Computed {
		nc := c
		nc.Dependencies = append([]string(nil), c.Dependencies...)
		out.Computed[i] = nc
	}
	return &out
}
