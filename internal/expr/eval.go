package expr

import (
	"fmt"
	"math"
)

// Evaluate parses and evaluates an expression against a variable context.
//
// Evaluation is pure: identifiers resolve only from ctx, and no other
// capability is reachable from an expression. Identical (expression, ctx)
// inputs always produce identical output.
func Evaluate(expression string, ctx Context) (Value, error) {
	node, err := Parse(expression)
	if err != nil {
		return nil, err
	}
	return EvalNode(expression, node, ctx)
}

// EvaluateCondition evaluates an expression and coerces the result to a
// boolean using Truthy. Used for rule conditions.
func EvaluateCondition(condition string, ctx Context) (bool, error) {
	v, err := Evaluate(condition, ctx)
	if err != nil {
		return false, err
	}
	return Truthy(v), nil
}

// EvalNode evaluates a parsed AST against a context. The source text is
// carried for error reporting only.
func EvalNode(source string, node Node, ctx Context) (Value, error) {
	switch n := node.(type) {
	case *NumberLiteral:
		return Number(n.Value), nil
	case *StringLiteral:
		return String(n.Value), nil
	case *BoolLiteral:
		return Bool(n.Value), nil
	case *NullLiteral:
		return Null{}, nil

	case *Identifier:
		v, ok := ctx[n.Value]
		if !ok {
			return nil, newUnknownVariableError(source, n.Value)
		}
		if v == nil {
			return Null{}, nil
		}
		return v, nil

	case *PrefixExpression:
		return evalPrefix(source, n, ctx)

	case *InfixExpression:
		return evalInfix(source, n, ctx)

	case *ConditionalExpression:
		cond, err := EvalNode(source, n.Condition, ctx)
		if err != nil {
			return nil, err
		}
		if Truthy(cond) {
			return EvalNode(source, n.Then, ctx)
		}
		return EvalNode(source, n.Else, ctx)

	default:
		return nil, newEvaluationError(source, "unsupported expression node %T", node)
	}
}

func evalPrefix(source string, n *PrefixExpression, ctx Context) (Value, error) {
	right, err := EvalNode(source, n.Right, ctx)
	if err != nil {
		return nil, err
	}

	switch n.Operator {
	case "!":
		return Bool(!Truthy(right)), nil
	case "-":
		num, ok := right.(Number)
		if !ok {
			return nil, newEvaluationError(source, "operator '-' requires a number, got %s", kindName(right))
		}
		return Number(-float64(num)), nil
	default:
		return nil, newEvaluationError(source, "unknown prefix operator %q", n.Operator)
	}
}

func evalInfix(source string, n *InfixExpression, ctx Context) (Value, error) {
	// Logical operators short-circuit: the right side is only evaluated
	// when the left side does not decide the result.
	switch n.Operator {
	case "&&":
		left, err := EvalNode(source, n.Left, ctx)
		if err != nil {
			return nil, err
		}
		if !Truthy(left) {
			return Bool(false), nil
		}
		right, err := EvalNode(source, n.Right, ctx)
		if err != nil {
			return nil, err
		}
		return Bool(Truthy(right)), nil
	case "||":
		left, err := EvalNode(source, n.Left, ctx)
		if err != nil {
			return nil, err
		}
		if Truthy(left) {
			return Bool(true), nil
		}
		right, err := EvalNode(source, n.Right, ctx)
		if err != nil {
			return nil, err
		}
		return Bool(Truthy(right)), nil
	}

	left, err := EvalNode(source, n.Left, ctx)
	if err != nil {
		return nil, err
	}
	right, err := EvalNode(source, n.Right, ctx)
	if err != nil {
		return nil, err
	}

	switch n.Operator {
	case "==":
		return Bool(Equal(left, right)), nil
	case "!=":
		return Bool(!Equal(left, right)), nil
	case "+":
		return evalPlus(source, left, right)
	case "-", "*", "/", "%":
		return evalArithmetic(source, n.Operator, left, right)
	case "<", "<=", ">", ">=":
		return evalComparison(source, n.Operator, left, right)
	default:
		return nil, newEvaluationError(source, "unknown operator %q", n.Operator)
	}
}

// evalPlus adds numbers or concatenates when either operand is a string.
func evalPlus(source string, left, right Value) (Value, error) {
	if ls, ok := left.(String); ok {
		return String(string(ls) + stringify(right)), nil
	}
	if rs, ok := right.(String); ok {
		return String(stringify(left) + string(rs)), nil
	}

	ln, lok := left.(Number)
	rn, rok := right.(Number)
	if !lok || !rok {
		return nil, newEvaluationError(source, "operator '+' requires numbers or strings, got %s and %s",
			kindName(left), kindName(right))
	}
	return Number(float64(ln) + float64(rn)), nil
}

func evalArithmetic(source, op string, left, right Value) (Value, error) {
	ln, lok := left.(Number)
	rn, rok := right.(Number)
	if !lok || !rok {
		return nil, newEvaluationError(source, "operator %q requires numbers, got %s and %s",
			op, kindName(left), kindName(right))
	}

	l, r := float64(ln), float64(rn)
	switch op {
	case "-":
		return Number(l - r), nil
	case "*":
		return Number(l * r), nil
	case "/":
		if r == 0 {
			return nil, newEvaluationError(source, "division by zero")
		}
		return Number(l / r), nil
	case "%":
		if r == 0 {
			return nil, newEvaluationError(source, "modulo by zero")
		}
		return Number(math.Mod(l, r)), nil
	default:
		return nil, newEvaluationError(source, "unknown arithmetic operator %q", op)
	}
}

// evalComparison orders two numbers numerically or two strings
// lexicographically. Mixed kinds are a type error.
func evalComparison(source, op string, left, right Value) (Value, error) {
	var cmp int

	switch lv := left.(type) {
	case Number:
		rv, ok := right.(Number)
		if !ok {
			return nil, newEvaluationError(source, "operator %q requires matching kinds, got %s and %s",
				op, kindName(left), kindName(right))
		}
		switch {
		case float64(lv) < float64(rv):
			cmp = -1
		case float64(lv) > float64(rv):
			cmp = 1
		}
	case String:
		rv, ok := right.(String)
		if !ok {
			return nil, newEvaluationError(source, "operator %q requires matching kinds, got %s and %s",
				op, kindName(left), kindName(right))
		}
		switch {
		case lv < rv:
			cmp = -1
		case lv > rv:
			cmp = 1
		}
	default:
		return nil, newEvaluationError(source, "operator %q requires numbers or strings, got %s",
			op, kindName(left))
	}

	switch op {
	case "<":
		return Bool(cmp < 0), nil
	case "<=":
		return Bool(cmp <= 0), nil
	case ">":
		return Bool(cmp > 0), nil
	case ">=":
		return Bool(cmp >= 0), nil
	default:
		return nil, newEvaluationError(source, "unknown comparison operator %q", op)
	}
}

func stringify(v Value) string {
	if v == nil {
		return "null"
	}
	return v.Inspect()
}

func kindName(v Value) string {
	switch v.(type) {
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "boolean"
	case Null, nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
