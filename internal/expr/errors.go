package expr

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes expression errors.
type ErrorCode string

const (
	// ErrCodeParse indicates malformed expression syntax.
	ErrCodeParse ErrorCode = "PARSE_ERROR"

	// ErrCodeUnknownVariable indicates an identifier not present in the context.
	ErrCodeUnknownVariable ErrorCode = "UNKNOWN_VARIABLE"

	// ErrCodeEvaluation indicates a runtime fault such as division by zero
	// or an operator applied to operands of the wrong kind.
	ErrCodeEvaluation ErrorCode = "EVALUATION_ERROR"
)

// Error represents a failure while parsing or evaluating an expression.
//
// Expressions are user-authored, so every Error carries enough structure
// for the caller to report it back: the code, a message, the offending
// expression, and (for parse errors) the byte position.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Expression is the source text that failed.
	Expression string

	// Variable is the unresolved identifier (for ErrCodeUnknownVariable).
	Variable string

	// Pos is the byte offset in Expression (for ErrCodeParse), -1 if unknown.
	Pos int
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Code == ErrCodeParse && e.Pos >= 0:
		return fmt.Sprintf("%s at offset %d: %s", e.Code, e.Pos, e.Message)
	case e.Code == ErrCodeUnknownVariable:
		return fmt.Sprintf("%s: %q is not defined", e.Code, e.Variable)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsParseError returns true if the error is a parse error.
// Uses errors.As to handle wrapped errors.
func IsParseError(err error) bool {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeParse
	}
	return false
}

// IsUnknownVariableError returns true if the error is an unknown-variable error.
func IsUnknownVariableError(err error) bool {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeUnknownVariable
	}
	return false
}

// IsEvaluationError returns true if the error is a runtime evaluation error.
func IsEvaluationError(err error) bool {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeEvaluation
	}
	return false
}

// newParseError creates an Error for malformed syntax.
func newParseError(expression, message string, pos int) *Error {
	return &Error{
		Code:       ErrCodeParse,
		Message:    message,
		Expression: expression,
		Pos:        pos,
	}
}

// newUnknownVariableError creates an Error for an unresolvable identifier.
func newUnknownVariableError(expression, name string) *Error {
	return &Error{
		Code:       ErrCodeUnknownVariable,
		Message:    fmt.Sprintf("unknown variable %q", name),
		Expression: expression,
		Variable:   name,
		Pos:        -1,
	}
}

// newEvaluationError creates an Error for a runtime fault.
func newEvaluationError(expression, format string, args ...any) *Error {
	return &Error{
		Code:       ErrCodeEvaluation,
		Message:    fmt.Sprintf(format, args...),
		Expression: expression,
		Pos:        -1,
	}
}
