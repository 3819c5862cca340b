package expr

import (
	"fmt"
	"strconv"
)

// Operator precedence levels, lowest to highest.
const (
	_ int = iota
	LOWEST
	TERNARY     // ?:
	LOGICAL_OR  // ||
	LOGICAL_AND // &&
	EQUALS      // == !=
	LESSGREATER // < <= > >=
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // -x !x
)

var precedences = map[TokenType]int{
	QUESTION: TERNARY,
	OR:       LOGICAL_OR,
	AND:      LOGICAL_AND,
	EQ:       EQUALS,
	NOT_EQ:   EQUALS,
	LT:       LESSGREATER,
	GT:       LESSGREATER,
	LTE:      LESSGREATER,
	GTE:      LESSGREATER,
	PLUS:     SUM,
	MINUS:    SUM,
	ASTERISK: PRODUCT,
	SLASH:    PRODUCT,
	PERCENT:  PRODUCT,
}

type (
	prefixParseFn func() Node
	infixParseFn  func(Node) Node
)

// Parser builds an AST from a single expression using Pratt parsing.
type Parser struct {
	l     *Lexer
	input string

	curToken  Token
	peekToken Token

	err *Error // first error encountered

	prefixParseFns map[TokenType]prefixParseFn
	infixParseFns  map[TokenType]infixParseFn
}

// Parse parses an expression into an AST. It returns a ParseError if the
// source is malformed or has trailing tokens.
func Parse(input string) (Node, error) {
	p := newParser(input)

	node := p.parseExpression(LOWEST)
	if p.err != nil {
		return nil, p.err
	}
	if p.peekToken.Type != EOF {
		return nil, newParseError(input,
			fmt.Sprintf("unexpected token %q after expression", p.peekToken.Literal),
			p.peekToken.Pos)
	}
	return node, nil
}

// Identifiers returns the set of variable names referenced by the
// expression. Used to validate declared computed-field dependencies.
func Identifiers(input string) (map[string]bool, error) {
	node, err := Parse(input)
	if err != nil {
		return nil, err
	}
	idents := make(map[string]bool)
	collectIdentifiers(node, idents)
	return idents, nil
}

func collectIdentifiers(node Node, out map[string]bool) {
	switch n := node.(type) {
	case *Identifier:
		out[n.Value] = true
	case *PrefixExpression:
		collectIdentifiers(n.Right, out)
	case *InfixExpression:
		collectIdentifiers(n.Left, out)
		collectIdentifiers(n.Right, out)
	case *ConditionalExpression:
		collectIdentifiers(n.Condition, out)
		collectIdentifiers(n.Then, out)
		collectIdentifiers(n.Else, out)
	}
}

func newParser(input string) *Parser {
	p := &Parser{
		l:     NewLexer(input),
		input: input,
	}

	p.prefixParseFns = map[TokenType]prefixParseFn{
		IDENT:  p.parseIdentifier,
		NUMBER: p.parseNumberLiteral,
		STRING: p.parseStringLiteral,
		TRUE:   p.parseBoolLiteral,
		FALSE:  p.parseBoolLiteral,
		NULL:   p.parseNullLiteral,
		NOT:    p.parsePrefixExpression,
		MINUS:  p.parsePrefixExpression,
		LPAREN: p.parseGroupedExpression,
	}

	p.infixParseFns = map[TokenType]infixParseFn{
		PLUS:     p.parseInfixExpression,
		MINUS:    p.parseInfixExpression,
		ASTERISK: p.parseInfixExpression,
		SLASH:    p.parseInfixExpression,
		PERCENT:  p.parseInfixExpression,
		EQ:       p.parseInfixExpression,
		NOT_EQ:   p.parseInfixExpression,
		LT:       p.parseInfixExpression,
		GT:       p.parseInfixExpression,
		LTE:      p.parseInfixExpression,
		GTE:      p.parseInfixExpression,
		AND:      p.parseInfixExpression,
		OR:       p.parseInfixExpression,
		QUESTION: p.parseConditionalExpression,
	}

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) fail(message string, pos int) {
	if p.err == nil {
		p.err = newParseError(p.input, message, pos)
	}
}

func (p *Parser) parseExpression(precedence int) Node {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		if p.curToken.Type == EOF {
			p.fail("unexpected end of expression", p.curToken.Pos)
		} else {
			p.fail(fmt.Sprintf("unexpected token %q", p.curToken.Literal), p.curToken.Pos)
		}
		return nil
	}
	left := prefix()
	if p.err != nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
		if p.err != nil {
			return nil
		}
	}

	return left
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) parseIdentifier() Node {
	return &Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseNumberLiteral() Node {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.fail(fmt.Sprintf("invalid number literal %q", p.curToken.Literal), p.curToken.Pos)
		return nil
	}
	return &NumberLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseStringLiteral() Node {
	return &StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBoolLiteral() Node {
	return &BoolLiteral{Token: p.curToken, Value: p.curToken.Type == TRUE}
}

func (p *Parser) parseNullLiteral() Node {
	return &NullLiteral{Token: p.curToken}
}

func (p *Parser) parsePrefixExpression() Node {
	node := &PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}
	p.nextToken()
	node.Right = p.parseExpression(PREFIX)
	return node
}

func (p *Parser) parseInfixExpression(left Node) Node {
	node := &InfixExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Literal,
	}
	precedence := precedences[p.curToken.Type]
	p.nextToken()
	node.Right = p.parseExpression(precedence)
	return node
}

// parseConditionalExpression parses cond ? then : else. The branches are
// parsed at LOWEST so the operator is right-associative and nested
// ternaries group as a ? b : (c ? d : e).
func (p *Parser) parseConditionalExpression(condition Node) Node {
	node := &ConditionalExpression{
		Token:     p.curToken,
		Condition: condition,
	}

	p.nextToken()
	node.Then = p.parseExpression(LOWEST)
	if p.err != nil {
		return nil
	}

	if p.peekToken.Type != COLON {
		p.fail(fmt.Sprintf("expected ':' in conditional, got %q", p.peekToken.Literal), p.peekToken.Pos)
		return nil
	}
	p.nextToken() // consume ':'
	p.nextToken()
	node.Else = p.parseExpression(LOWEST)
	return node
}

func (p *Parser) parseGroupedExpression() Node {
	p.nextToken()
	node := p.parseExpression(LOWEST)
	if p.err != nil {
		return nil
	}
	if p.peekToken.Type != RPAREN {
		p.fail("expected ')'", p.peekToken.Pos)
		return nil
	}
	p.nextToken()
	return node
}
