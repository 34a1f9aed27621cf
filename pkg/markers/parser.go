// SPDX-License-Identifier: MPL-2.0

package markers

import (
	"errors"
	"fmt"
)

// ErrInvalidMarker is the sentinel error wrapped by SyntaxError.
var ErrInvalidMarker = errors.New("invalid environment marker")

// SyntaxError reports a lexing or parsing failure with its position.
type SyntaxError struct {
	// Input is the full marker expression text.
	Input string
	// Pos is the byte offset of the failure.
	Pos int
	// Message describes the failure.
	Message string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid environment marker %q at offset %d: %s", e.Input, e.Pos, e.Message)
}

// Unwrap returns ErrInvalidMarker so callers can use errors.Is for programmatic detection.
func (e *SyntaxError) Unwrap() error { return ErrInvalidMarker }

type (
	// Expr is a parsed marker expression node.
	Expr interface {
		// Eval evaluates the node against an environment.
		Eval(env Environment) (bool, error)
	}

	// OrExpr is a disjunction of sub-expressions.
	OrExpr struct {
		Operands []Expr
	}

	// AndExpr is a conjunction of sub-expressions.
	AndExpr struct {
		Operands []Expr
	}

	// Comparison is a single variable-vs-value comparison.
	Comparison struct {
		// Lhs and Rhs are the two operands; at least one is a variable.
		Lhs Operand
		Rhs Operand
		// Op is one of the comparison operators, "in", or "not in".
		Op string
	}

	// Operand is one side of a comparison: either a marker variable name
	// or a quoted string literal.
	Operand struct {
		// Value is the variable name or literal text.
		Value string
		// Literal is true for quoted strings.
		Literal bool
	}
)

// parser consumes the token stream produced by lex.
type parser struct {
	input  string
	tokens []token
	pos    int
}

// Parse parses a marker expression. An empty or all-whitespace expression
// is an error; callers represent "no marker" as the absence of one.
func Parse(input string) (Expr, error) {
	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}

	p := &parser{input: input, tokens: tokens}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokenEOF {
		return nil, p.errorf("unexpected %q", p.peek().text)
	}
	return expr, nil
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Input: p.input, Pos: p.peek().pos, Message: fmt.Sprintf(format, args...)}
}

// parseOr parses: and-expr ("or" and-expr)*
func (p *parser) parseOr() (Expr, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	operands := []Expr{first}
	for p.peek().kind == tokenIdent && p.peek().text == "or" {
		p.next()
		operand, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		operands = append(operands, operand)
	}

	if len(operands) == 1 {
		return first, nil
	}
	return &OrExpr{Operands: operands}, nil
}

// parseAnd parses: unit ("and" unit)*
func (p *parser) parseAnd() (Expr, error) {
	first, err := p.parseUnit()
	if err != nil {
		return nil, err
	}

	operands := []Expr{first}
	for p.peek().kind == tokenIdent && p.peek().text == "and" {
		p.next()
		operand, err := p.parseUnit()
		if err != nil {
			return nil, err
		}
		operands = append(operands, operand)
	}

	if len(operands) == 1 {
		return first, nil
	}
	return &AndExpr{Operands: operands}, nil
}

// parseUnit parses a parenthesized expression or a single comparison.
func (p *parser) parseUnit() (Expr, error) {
	if p.peek().kind == tokenLParen {
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokenRParen {
			return nil, p.errorf("expected closing parenthesis")
		}
		p.next()
		return inner, nil
	}

	lhs, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	op, err := p.parseCompareOp()
	if err != nil {
		return nil, err
	}

	rhs, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	if !lhs.Literal && !isKnownVariable(lhs.Value) {
		return nil, p.errorf("unknown marker variable %q", lhs.Value)
	}
	if !rhs.Literal && !isKnownVariable(rhs.Value) {
		return nil, p.errorf("unknown marker variable %q", rhs.Value)
	}
	if lhs.Literal && rhs.Literal {
		return nil, p.errorf("comparison needs at least one marker variable")
	}

	return &Comparison{Lhs: lhs, Rhs: rhs, Op: op}, nil
}

// parseOperand parses a variable name or string literal.
func (p *parser) parseOperand() (Operand, error) {
	t := p.peek()
	switch t.kind {
	case tokenString:
		p.next()
		return Operand{Value: t.text, Literal: true}, nil
	case tokenIdent:
		if t.text == "and" || t.text == "or" || t.text == "not" || t.text == "in" {
			return Operand{}, p.errorf("unexpected keyword %q", t.text)
		}
		p.next()
		return Operand{Value: t.text}, nil
	default:
		return Operand{}, p.errorf("expected variable or string, got %q", t.text)
	}
}

// parseCompareOp parses a comparison operator, "in", or "not in".
func (p *parser) parseCompareOp() (string, error) {
	t := p.peek()

	if t.kind == tokenOp {
		p.next()
		return t.text, nil
	}

	if t.kind == tokenIdent {
		switch t.text {
		case "in":
			p.next()
			return "in", nil
		case "not":
			p.next()
			if p.peek().kind != tokenIdent || p.peek().text != "in" {
				return "", p.errorf("expected \"in\" after \"not\"")
			}
			p.next()
			return "not in", nil
		}
	}

	return "", p.errorf("expected comparison operator, got %q", t.text)
}
