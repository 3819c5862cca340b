package expr

import (
	"fmt"
	"math"
	"strconv"
)

// Value is a sealed interface over the scalar kinds an expression can
// produce or consume: string, number, boolean, and null. Only the four
// types in this file implement it.
type Value interface {
	value() // Sealed - only these types implement it

	// Inspect returns a display form for logs and CLI output.
	Inspect() string
}

// String represents a string value.
type String string

func (String) value() {}

// Inspect returns the string itself.
func (s String) Inspect() string { return string(s) }

// Number represents a numeric value. All numbers are float64; integral
// values render without a fractional part.
type Number float64

func (Number) value() {}

// Inspect formats the number with the shortest round-trip representation.
func (n Number) Inspect() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

// Bool represents a boolean value.
type Bool bool

func (Bool) value() {}

// Inspect returns "true" or "false".
func (b Bool) Inspect() string { return strconv.FormatBool(bool(b)) }

// Null represents an absent value.
type Null struct{}

func (Null) value() {}

// Inspect returns "null".
func (Null) Inspect() string { return "null" }

// Truthy reports whether a value coerces to true: empty string, zero,
// NaN, null, and false are all false. This is the coercion the rule
// engine applies to conditions.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil:
		return false
	case Null:
		return false
	case Bool:
		return bool(val)
	case Number:
		f := float64(val)
		return f != 0 && !math.IsNaN(f)
	case String:
		return val != ""
	default:
		return false
	}
}

// Equal reports whether two values are equal. Values of different kinds
// are never equal; there is no cross-kind coercion.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	default:
		return false
	}
}

// FromAny converts a plain Go scalar (as produced by encoding/json or
// yaml decoding) into a Value. Unsupported types become their string form.
func FromAny(v any) Value {
	switch val := v.(type) {
	case nil:
		return Null{}
	case string:
		return String(val)
	case bool:
		return Bool(val)
	case float64:
		return Number(val)
	case float32:
		return Number(val)
	case int:
		return Number(val)
	case int64:
		return Number(val)
	default:
		return String(fmt.Sprintf("%v", val))
	}
}

// ToAny converts a Value back to the plain Go scalar used for JSON
// serialization and submission data.
func ToAny(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case String:
		return string(val)
	case Number:
		return float64(val)
	case Bool:
		return bool(val)
	default:
		return nil
	}
}

// Context maps variable names to values for evaluation.
type Context map[string]Value

// ContextFromAny builds a Context from a map of plain Go scalars.
func ContextFromAny(m map[string]any) Context {
	ctx := make(Context, len(m))
	for k, v := range m {
		ctx[k] = FromAny(v)
	}
	return ctx
}
