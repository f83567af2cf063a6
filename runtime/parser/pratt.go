package parser

import (
	"github.com/aledsdavies/logexpr/core/ast"
	"github.com/aledsdavies/logexpr/core/registry"
	"github.com/aledsdavies/logexpr/core/token"
)

// prattParser implements top-down operator precedence parsing (spec §4.3):
// a null-denotation for atoms/parens/prefix-unary, and a left-denotation
// that consumes binary operators while their left binding power is at
// least the caller's minimum.
type prattParser struct {
	reg    *registry.Registry
	input  string
	tokens []token.Token
	pos    int
}

func parsePratt(reg *registry.Registry, input string, tokens []token.Token) (ast.Node, error) {
	p := &prattParser{reg: reg, input: input, tokens: tokens}
	node, err := p.parseExpr(-1)
	if err != nil {
		return nil, err
	}
	if p.current().Kind != token.EOF {
		return nil, &ParseError{Code: InvalidTokenSequence, Input: input, Lexeme: p.current().Lexeme}
	}
	return node, nil
}

func (p *prattParser) current() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *prattParser) advance() token.Token {
	t := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

// parseExpr parses an expression whose binary operators must bind at least
// as tightly as minBP (the caller's minimum binding power).
func (p *prattParser) parseExpr(minBP int) (ast.Node, error) {
	left, err := p.nud()
	if err != nil {
		return nil, err
	}

	for {
		t := p.current()
		if t.Kind != token.Operator {
			break
		}
		info, ok := p.reg.Lookup(t.Operator)
		if !ok || info.Arity != registry.Binary {
			break
		}
		leftBP := info.Precedence
		if leftBP < minBP {
			break
		}
		p.advance()

		rightBP := info.Precedence + 1
		if info.Associativity == registry.RightAssociative {
			rightBP = info.Precedence
		}
		right, err := p.parseExpr(rightBP)
		if err != nil {
			return nil, err
		}
		node, ok := ast.MakeBinary(p.reg, t.Operator, left, right)
		if !ok {
			return nil, &ParseError{Code: InvalidTokenSequence, Input: p.input, Lexeme: t.Lexeme}
		}
		left = node
	}

	return left, nil
}

// nud is the null-denotation: handles '(', prefix unary, constants and
// identifiers.
func (p *prattParser) nud() (ast.Node, error) {
	t := p.advance()

	switch t.Kind {
	case token.LeftParen:
		node, err := p.parseExpr(-1)
		if err != nil {
			return nil, err
		}
		if p.current().Kind != token.RightParen {
			return nil, &ParseError{Code: UnmatchedParentheses, Input: p.input}
		}
		p.advance()
		return node, nil

	case token.Constant:
		v, _ := p.reg.ConstantValue(t.Lexeme)
		return ast.Constant{Value: v}, nil

	case token.Identifier:
		return ast.Variable{Name: t.Lexeme, Index: -1}, nil

	case token.Operator:
		info, ok := p.reg.Lookup(t.Operator)
		if !ok || info.Arity != registry.Unary {
			return nil, &ParseError{Code: InvalidTokenSequence, Input: p.input, Lexeme: t.Lexeme}
		}
		operand, err := p.parseExpr(info.Precedence)
		if err != nil {
			return nil, err
		}
		node, ok := ast.MakeUnary(p.reg, t.Operator, operand)
		if !ok {
			return nil, &ParseError{Code: InvalidTokenSequence, Input: p.input, Lexeme: t.Lexeme}
		}
		return node, nil

	default:
		return nil, &ParseError{Code: InvalidTokenSequence, Input: p.input, Lexeme: t.Lexeme}
	}
}
