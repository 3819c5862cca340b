package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldline/fieldline/internal/form"
)

func compileString(t *testing.T, src, path string) (*form.Schema, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	return CompileSchema(v.LookupPath(cue.ParsePath(path)))
}

func TestCompileSchema_Minimal(t *testing.T) {
	schema, err := compileString(t, `
form: contact: {
	title: "Contact"
	pages: [{
		id: "main"
		elements: [{
			id:   "email"
			type: "text"
		}]
	}]
}
`, "form.contact")
	require.NoError(t, err)

	assert.Equal(t, "contact", schema.ID)
	assert.Equal(t, "Contact", schema.Title)
	assert.Equal(t, form.InitialVersion, schema.Version, "version defaults when omitted")
	require.Len(t, schema.Pages, 1)
	require.Len(t, schema.Pages[0].Elements, 1)
	assert.Equal(t, form.ElementText, schema.Pages[0].Elements[0].Type)
}

func TestCompileSchema_FullElement(t *testing.T) {
	schema, err := compileString(t, `
form: survey: {
	version: "2.1.0"
	pages: [{
		id: "main"
		elements: [{
			id:          "rating"
			type:        "select"
			label:       "Rating"
			placeholder: "pick one"
			required:    true
			default:     "3"
			options: ["1", "2", "3", "4", "5"]
		}, {
			id:   "comment"
			type: "textarea"
			validators: {
				minLength: 10
				maxLength: 500
				pattern:   "^[^<>]*$"
			}
		}, {
			id:   "score"
			type: "number"
			validators: {
				min: 0.5
				max: 9.5
			}
		}]
	}]
}
`, "form.survey")
	require.NoError(t, err)
	require.Len(t, schema.Pages[0].Elements, 3)

	rating := schema.Pages[0].Elements[0]
	assert.True(t, rating.Required)
	assert.Equal(t, "3", rating.Default)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, rating.Options)

	comment := schema.Pages[0].Elements[1]
	require.NotNil(t, comment.Validators.MinLength)
	assert.Equal(t, 10, *comment.Validators.MinLength)
	require.NotNil(t, comment.Validators.MaxLength)
	assert.Equal(t, 500, *comment.Validators.MaxLength)
	assert.Equal(t, "^[^<>]*$", comment.Validators.Pattern)

	score := schema.Pages[0].Elements[2]
	require.NotNil(t, score.Validators.Min)
	assert.Equal(t, 0.5, *score.Validators.Min)
	require.NotNil(t, score.Validators.Max)
	assert.Equal(t, 9.5, *score.Validators.Max)
}

func TestCompileSchema_RulesAndComputed(t *testing.T) {
	schema, err := compileString(t, `
form: order: {
	pages: [{
		id: "main"
		elements: [
			{id: "price", type: "number"},
			{id: "qty", type: "number"},
			{id: "total", type: "number"},
			{id: "note", type: "text"},
		]
	}]
	rules: [{
		"if": "total > 100"
		then: [
			{action: "show", target: "note"},
			{action: "setValue", target: "note", value: "bulk order"},
		]
	}]
	computed: [{
		target: "total"
		expr:   "price * qty"
		dependencies: ["price", "qty"]
	}]
}
`, "form.order")
	require.NoError(t, err)

	require.Len(t, schema.Rules, 1)
	rule := schema.Rules[0]
	assert.Equal(t, "total > 100", rule.Condition)
	require.Len(t, rule.Actions, 2)
	assert.Equal(t, form.ActionShow, rule.Actions[0].Action)
	assert.Equal(t, form.ActionSetValue, rule.Actions[1].Action)
	assert.Equal(t, "bulk order", rule.Actions[1].Value)

	require.Len(t, schema.Computed, 1)
	assert.Equal(t, "total", schema.Computed[0].Target)
	assert.Equal(t, "price * qty", schema.Computed[0].Expr)
	assert.Equal(t, []string{"price", "qty"}, schema.Computed[0].Dependencies)
}

func TestCompileSchema_NoPages(t *testing.T) {
	_, err := compileString(t, `form: empty: {title: "Empty"}`, "form.empty")

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "pages", ce.Field)
}

func TestCompileSchema_MissingElementType(t *testing.T) {
	_, err := compileString(t, `
form: broken: {
	pages: [{
		id: "main"
		elements: [{id: "x"}]
	}]
}
`, "form.broken")

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Field, "type")
}

func TestCompileSchema_MissingRuleCondition(t *testing.T) {
	_, err := compileString(t, `
form: broken: {
	pages: [{
		id: "main"
		elements: [{id: "x", type: "text"}]
	}]
	rules: [{then: [{action: "show", target: "x"}]}]
}
`, "form.broken")

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Field, "if")
}

func TestCompileSchema_CUESyntaxError(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`form: broken: { pages: [ }`)
	_, err := CompileSchema(v.LookupPath(cue.ParsePath("form.broken")))
	require.Error(t, err)
}

func TestCompileSchema_ValidatesCleanly(t *testing.T) {
	// A compiled schema should pass the form-level validation.
	schema, err := compileString(t, `
form: order: {
	pages: [{
		id: "main"
		elements: [
			{id: "price", type: "number"},
			{id: "qty", type: "number"},
			{id: "total", type: "number"},
		]
	}]
	computed: [{
		target: "total"
		expr:   "price * qty"
		dependencies: ["price", "qty"]
	}]
}
`, "form.order")
	require.NoError(t, err)
	assert.Empty(t, form.Validate(schema))
}
