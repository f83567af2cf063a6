package parser

import "github.com/aledsdavies/logexpr/core/token"

// validate enforces the context rules of spec §4.3 before either parser
// strategy runs, emitting the first violation observed as a typed
// *ParseError. It also performs the final balance check.
func validate(input string, tokens []token.Token) error {
	if len(tokens) == 0 || (len(tokens) == 1 && tokens[0].Kind == token.EOF) {
		return &ParseError{Code: EmptyExpression, Input: input}
	}

	depth := 0
	for i, t := range tokens {
		if t.Kind == token.EOF {
			break
		}
		prev := tokenBefore(tokens, i)
		next := tokenAfter(tokens, i)

		switch t.Kind {
		case token.LeftParen:
			if !startsExpression(prev) {
				return errAt(input, InvalidTokenBeforeOpenParen, t)
			}
			depth++
		case token.RightParen:
			depth--
			if depth < 0 {
				return errAt(input, UnmatchedClosingParenthesis, t)
			}
			if next != nil && !followsOperand(*next) {
				return errAt(input, InvalidTokenAfterCloseParen, *next)
			}
		case token.Operator:
			if isUnarySymbol(t) {
				if next == nil || next.Kind == token.EOF || !startsOperand(*next) {
					return errAt(input, UnaryOperatorMissingOperand, t)
				}
			} else {
				atStart := prev == nil
				atEnd := next == nil || next.Kind == token.EOF
				if atStart || atEnd {
					return errAt(input, BinaryOperatorAtEnds, t)
				}
				if !endsOperand(*prev) || !startsOperand(*next) {
					return errAt(input, InvalidBinaryOperatorContext, t)
				}
			}
		}
	}

	if depth != 0 {
		return &ParseError{Code: UnmatchedParentheses, Input: input}
	}
	return nil
}

func tokenBefore(tokens []token.Token, i int) *token.Token {
	if i == 0 {
		return nil
	}
	return &tokens[i-1]
}

func tokenAfter(tokens []token.Token, i int) *token.Token {
	if i+1 >= len(tokens) {
		return nil
	}
	return &tokens[i+1]
}

// startsExpression reports whether prev may legally precede a '('.
func startsExpression(prev *token.Token) bool {
	if prev == nil {
		return true
	}
	switch prev.Kind {
	case token.LeftParen, token.Operator:
		return true
	default:
		return false
	}
}

// followsOperand reports whether next may legally follow ')' or an operand.
func followsOperand(next token.Token) bool {
	switch next.Kind {
	case token.RightParen, token.Operator, token.EOF:
		return true
	default:
		return false
	}
}

func endsOperand(prev token.Token) bool {
	switch prev.Kind {
	case token.RightParen, token.Identifier, token.Constant:
		return true
	default:
		return false
	}
}

func startsOperand(next token.Token) bool {
	switch next.Kind {
	case token.LeftParen, token.Identifier, token.Constant:
		return true
	case token.Operator:
		return isUnarySymbol(next)
	default:
		return false
	}
}

func isUnarySymbol(t token.Token) bool {
	return t.Operator == "~"
}

func errAt(input string, code Code, t token.Token) *ParseError {
	return &ParseError{
		Code:      code,
		CharIndex: t.Position.Offset,
		CharStart: t.Position.Offset,
		CharEnd:   t.Position.Offset + len([]rune(t.Lexeme)),
		Lexeme:    t.Lexeme,
		Category:  categoryOf(t),
		Input:     input,
	}
}
