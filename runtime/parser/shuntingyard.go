package parser

import (
	"github.com/aledsdavies/logexpr/core/ast"
	"github.com/aledsdavies/logexpr/core/registry"
	"github.com/aledsdavies/logexpr/core/token"
)

// parseShuntingYard implements Dijkstra's algorithm (spec §4.3): tokens are
// rewritten to postfix honoring precedence and associativity, then a
// second pass pops operands per arity and applies the registered factory.
func parseShuntingYard(reg *registry.Registry, input string, tokens []token.Token) (ast.Node, error) {
	postfix, err := toPostfix(reg, input, tokens)
	if err != nil {
		return nil, err
	}
	return buildFromPostfix(reg, input, postfix)
}

type opFrame struct {
	tok      token.Token
	symbol   string
	info     registry.OperatorInfo
	isParen  bool
}

func toPostfix(reg *registry.Registry, input string, tokens []token.Token) ([]token.Token, error) {
	var output []token.Token
	var stack []opFrame

	popWhile := func(cond func(top opFrame) bool) {
		for len(stack) > 0 && !stack[len(stack)-1].isParen && cond(stack[len(stack)-1]) {
			output = append(output, stack[len(stack)-1].tok)
			stack = stack[:len(stack)-1]
		}
	}

	for _, t := range tokens {
		switch t.Kind {
		case token.EOF:
			continue
		case token.Constant, token.Identifier:
			output = append(output, t)
		case token.LeftParen:
			stack = append(stack, opFrame{tok: t, isParen: true})
		case token.RightParen:
			matched := false
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.isParen {
					matched = true
					break
				}
				output = append(output, top.tok)
			}
			if !matched {
				return nil, errAt(input, UnmatchedClosingParenthesis, t)
			}
		case token.Operator:
			info, ok := reg.Lookup(t.Operator)
			if !ok {
				return nil, &ParseError{Code: InvalidTokenSequence, Input: input, Lexeme: t.Lexeme}
			}
			popWhile(func(top opFrame) bool {
				if top.info.Precedence > info.Precedence {
					return true
				}
				if top.info.Precedence == info.Precedence && info.Associativity == registry.LeftAssociative {
					return true
				}
				return false
			})
			stack = append(stack, opFrame{tok: t, symbol: t.Operator, info: info})
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.isParen {
			return nil, &ParseError{Code: UnmatchedParentheses, Input: input}
		}
		output = append(output, top.tok)
	}

	return output, nil
}

func buildFromPostfix(reg *registry.Registry, input string, postfix []token.Token) (ast.Node, error) {
	var operands []ast.Node

	pop := func() ast.Node {
		n := operands[len(operands)-1]
		operands = operands[:len(operands)-1]
		return n
	}

	for _, t := range postfix {
		switch t.Kind {
		case token.Constant:
			v, _ := reg.ConstantValue(t.Lexeme)
			operands = append(operands, ast.Constant{Value: v})
		case token.Identifier:
			operands = append(operands, ast.Variable{Name: t.Lexeme, Index: -1})
		case token.Operator:
			info, _ := reg.Lookup(t.Operator)
			if info.Arity == registry.Unary {
				if len(operands) < 1 {
					return nil, &ParseError{Code: InvalidTokenSequence, Input: input, Lexeme: t.Lexeme}
				}
				operand := pop()
				node, ok := ast.MakeUnary(reg, t.Operator, operand)
				if !ok {
					return nil, &ParseError{Code: InvalidTokenSequence, Input: input, Lexeme: t.Lexeme}
				}
				operands = append(operands, node)
			} else {
				if len(operands) < 2 {
					return nil, &ParseError{Code: InvalidTokenSequence, Input: input, Lexeme: t.Lexeme}
				}
				right := pop()
				left := pop()
				node, ok := ast.MakeBinary(reg, t.Operator, left, right)
				if !ok {
					return nil, &ParseError{Code: InvalidTokenSequence, Input: input, Lexeme: t.Lexeme}
				}
				operands = append(operands, node)
			}
		}
	}

	if len(operands) != 1 {
		return nil, &ParseError{Code: InvalidTokenSequence, Input: input}
	}
	return operands[0], nil
}
