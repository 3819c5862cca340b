package expr

import (
	"bytes"
	"strconv"
)

// Node is an AST node. String() reproduces a normalized source form,
// useful for error messages and debugging.
type Node interface {
	String() string
}

// Identifier references a context variable.
type Identifier struct {
	Token Token
	Value string
}

func (i *Identifier) String() string { return i.Value }

// NumberLiteral is a numeric literal.
type NumberLiteral struct {
	Token Token
	Value float64
}

func (n *NumberLiteral) String() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

// StringLiteral is a quoted string literal.
type StringLiteral struct {
	Token Token
	Value string
}

func (s *StringLiteral) String() string { return strconv.Quote(s.Value) }

// BoolLiteral is a true/false literal.
type BoolLiteral struct {
	Token Token
	Value bool
}

func (b *BoolLiteral) String() string { return strconv.FormatBool(b.Value) }

// NullLiteral is the null literal.
type NullLiteral struct {
	Token Token
}

func (n *NullLiteral) String() string { return "null" }

// PrefixExpression is a unary operator application: !x or -x.
type PrefixExpression struct {
	Token    Token
	Operator string
	Right    Node
}

func (p *PrefixExpression) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(p.Operator)
	out.WriteString(p.Right.String())
	out.WriteString(")")
	return out.String()
}

// InfixExpression is a binary operator application.
type InfixExpression struct {
	Token    Token
	Left     Node
	Operator string
	Right    Node
}

func (i *InfixExpression) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(i.Left.String())
	out.WriteString(" ")
	out.WriteString(i.Operator)
	out.WriteString(" ")
	out.WriteString(i.Right.String())
	out.WriteString(")")
	return out.String()
}

// ConditionalExpression is the ternary operator: cond ? then : else.
type ConditionalExpression struct {
	Token     Token // the '?' token
	Condition Node
	Then      Node
	Else      Node
}

func (c *ConditionalExpression) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(c.Condition.String())
	out.WriteString(" ? ")
	out.WriteString(c.Then.String())
	out.WriteString(" : ")
	out.WriteString(c.Else.String())
	out.WriteString(")")
	return out.String()
}
