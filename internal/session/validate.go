package session

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fieldline/fieldline/internal/expr"
	"github.com/fieldline/fieldline/internal/form"
)

// Issue is one validation failure for one element.
type Issue struct {
	Element string
	Rule    string // "required", "minLength", "maxLength", "min", "max", "pattern"
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Element, i.Message)
}

// ValidationFailedError aggregates all issues from a failed Submit.
type ValidationFailedError struct {
	Issues []Issue
}

func (e *ValidationFailedError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.String()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

// Validate checks every visible, enabled element against its validators.
// Hidden and disabled elements are skipped: the user could not have
// filled them in, so their values are not part of the submission
// contract.
func (s *Session) Validate() []Issue {
	var issues []Issue
	for pi := range s.schema.Pages {
		for ei := range s.schema.Pages[pi].Elements {
			el := &s.schema.Pages[pi].Elements[ei]
			if s.Hidden(el.ID) || s.Disabled(el.ID) {
				continue
			}
			issues = append(issues, validateElement(el, s.state.Values[el.ID])...)
		}
	}
	return issues
}

func validateElement(el *form.Element, v expr.Value) []Issue {
	var issues []Issue

	if el.Required && !hasValue(el, v) {
		issues = append(issues, Issue{
			Element: el.ID,
			Rule:    "required",
			Message: "a value is required",
		})
		return issues
	}
	if !hasValue(el, v) {
		// Nothing entered and nothing required: the other validators
		// only constrain entered values.
		return issues
	}

	switch val := v.(type) {
	case expr.String:
		issues = append(issues, validateString(el, string(val))...)
	case expr.Number:
		issues = append(issues, validateNumber(el, float64(val))...)
	}
	return issues
}

// hasValue reports whether the user entered something. A required
// checkbox must be checked; a required number must be non-null.
func hasValue(el *form.Element, v expr.Value) bool {
	switch val := v.(type) {
	case nil, expr.Null:
		return false
	case expr.String:
		return val != ""
	case expr.Bool:
		if el.Type == form.ElementCheckbox {
			return bool(val)
		}
		return true
	default:
		return true
	}
}

func validateString(el *form.Element, s string) []Issue {
	var issues []Issue
	v := el.Validators

	if v.MinLength != nil && len([]rune(s)) < *v.MinLength {
		issues = append(issues, Issue{
			Element: el.ID,
			Rule:    "minLength",
			Message: fmt.Sprintf("must be at least %d characters", *v.MinLength),
		})
	}
	if v.MaxLength != nil && len([]rune(s)) > *v.MaxLength {
		issues = append(issues, Issue{
			Element: el.ID,
			Rule:    "maxLength",
			Message: fmt.Sprintf("must be at most %d characters", *v.MaxLength),
		})
	}
	if v.Pattern != "" {
		// Invalid patterns are rejected at schema validation time, but a
		// session can run against an unvalidated schema; treat a bad
		// pattern as a failed match.
		re, err := regexp.Compile(v.Pattern)
		if err != nil || !re.MatchString(s) {
			issues = append(issues, Issue{
				Element: el.ID,
				Rule:    "pattern",
				Message: fmt.Sprintf("must match pattern %s", v.Pattern),
			})
		}
	}
	return issues
}

func validateNumber(el *form.Element, f float64) []Issue {
	var issues []Issue
	v := el.Validators

	if v.Min != nil && f < *v.Min {
		issues = append(issues, Issue{
			Element: el.ID,
			Rule:    "min",
			Message: fmt.Sprintf("must be at least %v", *v.Min),
		})
	}
	if v.Max != nil && f > *v.Max {
		issues = append(issues, Issue{
			Element: el.ID,
			Rule:    "max",
			Message: fmt.Sprintf("must be at most %v", *v.Max),
		})
	}
	return issues
}
