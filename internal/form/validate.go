package form

import (
	"fmt"
	"regexp"

	"github.com/fieldline/fieldline/internal/expr"
)

// Validation error codes (E100-E199)
const (
	ErrSchemaIDEmpty       = "E100" // schema id is required
	ErrSchemaNoPages       = "E101" // at least one page required
	ErrInvalidVersion      = "E102" // malformed version string
	ErrDuplicateElementID  = "E103" // element id repeated within schema
	ErrElementIDEmpty      = "E104" // element without an id
	ErrInvalidElementType  = "E105" // unknown element type
	ErrInvalidPattern      = "E106" // validator pattern does not compile
	ErrUnknownRuleTarget   = "E110" // rule action targets a missing element
	ErrInvalidRuleAction   = "E111" // unknown action type
	ErrBadRuleCondition    = "E112" // rule condition does not parse
	ErrUnknownComputedDep  = "E120" // declared dependency not an element id
	ErrUnknownComputedTgt  = "E121" // computed target not an element id
	ErrBadComputedExpr     = "E122" // computed expression does not parse
	ErrUndeclaredComputDep = "E123" // expression references undeclared dependency
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a schema against the model invariants: unique element
// ids, resolvable rule/computed targets, parseable expressions, and
// declared dependencies covering the identifiers each computed expression
// references. Returns all errors found (does not fail-fast).
func Validate(s *Schema) []ValidationError {
	var errs []ValidationError

	if s.ID == "" {
		errs = append(errs, ValidationError{
			Field: "id", Code: ErrSchemaIDEmpty, Message: "schema id is required",
		})
	}
	if len(s.Pages) == 0 {
		errs = append(errs, ValidationError{
			Field: "pages", Code: ErrSchemaNoPages, Message: "at least one page is required",
		})
	}
	if s.Version != "" {
		if _, err := ParseVersion(s.Version); err != nil {
			errs = append(errs, ValidationError{
				Field: "version", Code: ErrInvalidVersion, Message: err.Error(),
			})
		}
	}

	elements := make(map[string]bool)
	for pi, page := range s.Pages {
		for ei, el := range page.Elements {
			field := fmt.Sprintf("pages[%d].elements[%d]", pi, ei)

			if el.ID == "" {
				errs = append(errs, ValidationError{
					Field: field, Code: ErrElementIDEmpty, Message: "element id is required",
				})
				continue
			}
			if elements[el.ID] {
				errs = append(errs, ValidationError{
					Field:   field,
					Code:    ErrDuplicateElementID,
					Message: fmt.Sprintf("duplicate element id %q", el.ID),
				})
			}
			elements[el.ID] = true

			if !validElementType(el.Type) {
				errs = append(errs, ValidationError{
					Field:   field + ".type",
					Code:    ErrInvalidElementType,
					Message: fmt.Sprintf("unknown element type %q", el.Type),
				})
			}
			if el.Validators.Pattern != "" {
				if _, err := regexp.Compile(el.Validators.Pattern); err != nil {
					errs = append(errs, ValidationError{
						Field:   field + ".validators.pattern",
						Code:    ErrInvalidPattern,
						Message: err.Error(),
					})
				}
			}
		}
	}

	errs = append(errs, validateRules(s, elements)...)
	errs = append(errs, validateComputed(s, elements)...)
	return errs
}

func validateRules(s *Schema, elements map[string]bool) []ValidationError {
	var errs []ValidationError

	for ri, rule := range s.Rules {
		field := fmt.Sprintf("rules[%d]", ri)

		if _, err := expr.Parse(rule.Condition); err != nil {
			errs = append(errs, ValidationError{
				Field: field + ".if", Code: ErrBadRuleCondition, Message: err.Error(),
			})
		}

		for ai, action := range rule.Actions {
			afield := fmt.Sprintf("%s.then[%d]", field, ai)
			switch action.Action {
			case ActionShow, ActionHide, ActionEnable, ActionDisable, ActionSetValue:
			default:
				errs = append(errs, ValidationError{
					Field:   afield + ".action",
					Code:    ErrInvalidRuleAction,
					Message: fmt.Sprintf("unknown action %q", action.Action),
				})
			}
			if !elements[action.Target] {
				errs = append(errs, ValidationError{
					Field:   afield + ".target",
					Code:    ErrUnknownRuleTarget,
					Message: fmt.Sprintf("target %q is not an element id", action.Target),
				})
			}
		}
	}

	return errs
}

func validateComputed(s *Schema, elements map[string]bool) []ValidationError {
	var errs []ValidationError

	for ci, comp := range s.Computed {
		field := fmt.Sprintf("computed[%d]", ci)

		if !elements[comp.Target] {
			errs = append(errs, ValidationError{
				Field:   field + ".target",
				Code:    ErrUnknownComputedTgt,
				Message: fmt.Sprintf("target %q is not an element id", comp.Target),
			})
		}

		declared := make(map[string]bool, len(comp.Dependencies))
		for di, dep := range comp.Dependencies {
			declared[dep] = true
			if !elements[dep] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.dependencies[%d]", field, di),
					Code:    ErrUnknownComputedDep,
					Message: fmt.Sprintf("dependency %q is not an element id", dep),
				})
			}
		}

		idents, err := expr.Identifiers(comp.Expr)
		if err != nil {
			errs = append(errs, ValidationError{
				Field: field + ".expr", Code: ErrBadComputedExpr, Message: err.Error(),
			})
			continue
		}
		// Dependencies must be a superset of the referenced identifiers.
		for name := range idents {
			if !declared[name] {
				errs = append(errs, ValidationError{
					Field:   field + ".dependencies",
					Code:    ErrUndeclaredComputDep,
					Message: fmt.Sprintf("expression references %q which is not declared", name),
				})
			}
		}
	}

	return errs
}

func validElementType(t ElementType) bool {
	switch t {
	case ElementText, ElementTextarea, ElementNumber, ElementCheckbox,
		ElementSelect, ElementRadio, ElementDate:
		return true
	}
	return false
}
