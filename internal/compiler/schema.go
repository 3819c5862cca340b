// Package compiler turns CUE form definitions into form.Schema values.
package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/fieldline/fieldline/internal/form"
)

// CompileSchema parses a CUE value into a form.Schema.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the form struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`form: order: { ... }`)
//	schema, err := CompileSchema(v.LookupPath(cue.ParsePath("form.order")))
//
// The form id is taken from the struct label. Compilation always yields
// a fresh Schema value; nothing is edited in place.
func CompileSchema(v cue.Value) (*form.Schema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	schema := &form.Schema{Version: form.InitialVersion}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		schema.ID = labels[len(labels)-1].String()
	}

	if titleVal := v.LookupPath(cue.ParsePath("title")); titleVal.Exists() {
		title, err := titleVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		schema.Title = title
	}

	if versionVal := v.LookupPath(cue.ParsePath("version")); versionVal.Exists() {
		version, err := versionVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		schema.Version = version
	}

	pages, err := parsePages(v)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, &CompileError{
			Field:   "pages",
			Message: "at least one page is required",
			Pos:     v.Pos(),
		}
	}
	schema.Pages = pages

	schema.Rules, err = parseRules(v)
	if err != nil {
		return nil, err
	}

	schema.Computed, err = parseComputed(v)
	if err != nil {
		return nil, err
	}

	return schema, nil
}

func parsePages(v cue.Value) ([]form.Page, error) {
	pagesVal := v.LookupPath(cue.ParsePath("pages"))
	if !pagesVal.Exists() {
		return nil, nil
	}

	iter, err := pagesVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var pages []form.Page
	for iter.Next() {
		pageVal := iter.Value()
		page := form.Page{}

		id, err := pageVal.LookupPath(cue.ParsePath("id")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		page.ID = id

		if titleVal := pageVal.LookupPath(cue.ParsePath("title")); titleVal.Exists() {
			title, err := titleVal.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			page.Title = title
		}

		page.Elements, err = parseElements(pageVal, page.ID)
		if err != nil {
			return nil, err
		}

		pages = append(pages, page)
	}
	return pages, nil
}

func parseElements(pageVal cue.Value, pageID string) ([]form.Element, error) {
	elementsVal := pageVal.LookupPath(cue.ParsePath("elements"))
	if !elementsVal.Exists() {
		return nil, nil
	}

	iter, err := elementsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var elements []form.Element
	for iter.Next() {
		elem, err := parseElement(iter.Value(), pageID)
		if err != nil {
			return nil, err
		}
		elements = append(elements, elem)
	}
	return elements, nil
}

func parseElement(v cue.Value, pageID string) (form.Element, error) {
	var elem form.Element

	id, err := v.LookupPath(cue.ParsePath("id")).String()
	if err != nil {
		return elem, formatCUEError(err)
	}
	elem.ID = id

	typeStr, err := v.LookupPath(cue.ParsePath("type")).String()
	if err != nil {
		return elem, &CompileError{
			Field:   fmt.Sprintf("pages.%s.elements.%s.type", pageID, id),
			Message: "element type is required",
			Pos:     v.Pos(),
		}
	}
	elem.Type = form.ElementType(typeStr)

	for path, dst := range map[string]*string{
		"label":       &elem.Label,
		"placeholder": &elem.Placeholder,
	} {
		if val := v.LookupPath(cue.ParsePath(path)); val.Exists() {
			s, err := val.String()
			if err != nil {
				return elem, formatCUEError(err)
			}
			*dst = s
		}
	}

	for path, dst := range map[string]*bool{
		"required": &elem.Required,
		"disabled": &elem.Disabled,
	} {
		if val := v.LookupPath(cue.ParsePath(path)); val.Exists() {
			b, err := val.Bool()
			if err != nil {
				return elem, formatCUEError(err)
			}
			*dst = b
		}
	}

	if defVal := v.LookupPath(cue.ParsePath("default")); defVal.Exists() {
		def, err := extractScalar(defVal)
		if err != nil {
			return elem, err
		}
		elem.Default = def
	}

	if optsVal := v.LookupPath(cue.ParsePath("options")); optsVal.Exists() {
		optIter, err := optsVal.List()
		if err != nil {
			return elem, formatCUEError(err)
		}
		for optIter.Next() {
			opt, err := optIter.Value().String()
			if err != nil {
				return elem, formatCUEError(err)
			}
			elem.Options = append(elem.Options, opt)
		}
	}

	validators, err := parseValidators(v)
	if err != nil {
		return elem, err
	}
	elem.Validators = validators

	return elem, nil
}

func parseValidators(v cue.Value) (form.Validators, error) {
	var out form.Validators

	valVal := v.LookupPath(cue.ParsePath("validators"))
	if !valVal.Exists() {
		return out, nil
	}

	for path, dst := range map[string]**int{
		"minLength": &out.MinLength,
		"maxLength": &out.MaxLength,
	} {
		if val := valVal.LookupPath(cue.ParsePath(path)); val.Exists() {
			n, err := val.Int64()
			if err != nil {
				return out, formatCUEError(err)
			}
			i := int(n)
			*dst = &i
		}
	}

	for path, dst := range map[string]**float64{
		"min": &out.Min,
		"max": &out.Max,
	} {
		if val := valVal.LookupPath(cue.ParsePath(path)); val.Exists() {
			f, err := val.Float64()
			if err != nil {
				return out, formatCUEError(err)
			}
			*dst = &f
		}
	}

	if val := valVal.LookupPath(cue.ParsePath("pattern")); val.Exists() {
		pattern, err := val.String()
		if err != nil {
			return out, formatCUEError(err)
		}
		out.Pattern = pattern
	}

	return out, nil
}

func parseRules(v cue.Value) ([]form.Rule, error) {
	rulesVal := v.LookupPath(cue.ParsePath("rules"))
	if !rulesVal.Exists() {
		return nil, nil
	}

	iter, err := rulesVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var rules []form.Rule
	for iter.Next() {
		ruleVal := iter.Value()
		var rule form.Rule

		condition, err := ruleVal.LookupPath(cue.ParsePath("if")).String()
		if err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("rules[%d].if", len(rules)),
				Message: "rule condition is required",
				Pos:     ruleVal.Pos(),
			}
		}
		rule.Condition = condition

		actionsVal := ruleVal.LookupPath(cue.ParsePath("then"))
		if !actionsVal.Exists() {
			return nil, &CompileError{
				Field:   fmt.Sprintf("rules[%d].then", len(rules)),
				Message: "rule actions are required",
				Pos:     ruleVal.Pos(),
			}
		}

		actIter, err := actionsVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for actIter.Next() {
			actVal := actIter.Value()
			var action form.RuleAction

			actionName, err := actVal.LookupPath(cue.ParsePath("action")).String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			action.Action = form.ActionType(actionName)

			target, err := actVal.LookupPath(cue.ParsePath("target")).String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			action.Target = target

			if valVal := actVal.LookupPath(cue.ParsePath("value")); valVal.Exists() {
				value, err := extractScalar(valVal)
				if err != nil {
					return nil, err
				}
				action.Value = value
			}

			rule.Actions = append(rule.Actions, action)
		}

		rules = append(rules, rule)
	}
	return rules, nil
}

func parseComputed(v cue.Value) ([]form.ComputedField, error) {
	computedVal := v.LookupPath(cue.ParsePath("computed"))
	if !computedVal.Exists() {
		return nil, nil
	}

	iter, err := computedVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var fields []form.ComputedField
	for iter.Next() {
		fieldVal := iter.Value()
		var cf form.ComputedField

		target, err := fieldVal.LookupPath(cue.ParsePath("target")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		cf.Target = target

		expression, err := fieldVal.LookupPath(cue.ParsePath("expr")).String()
		if err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("computed.%s.expr", target),
				Message: "computed expression is required",
				Pos:     fieldVal.Pos(),
			}
		}
		cf.Expr = expression

		depsVal := fieldVal.LookupPath(cue.ParsePath("dependencies"))
		if depsVal.Exists() {
			depIter, err := depsVal.List()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for depIter.Next() {
				dep, err := depIter.Value().String()
				if err != nil {
					return nil, formatCUEError(err)
				}
				cf.Dependencies = append(cf.Dependencies, dep)
			}
		}

		fields = append(fields, cf)
	}
	return fields, nil
}

// extractScalar converts a concrete CUE scalar to its Go value.
// Defaults and setValue payloads are scalars only; structured values
// have no meaning as a field value.
func extractScalar(v cue.Value) (any, error) {
	switch v.Kind() {
	case cue.StringKind:
		return v.String()
	case cue.BoolKind:
		return v.Bool()
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
		return v.Float64()
	case cue.NullKind:
		return nil, nil
	default:
		return nil, &CompileError{
			Field:   "value",
			Message: fmt.Sprintf("unsupported value kind: %v", v.Kind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
