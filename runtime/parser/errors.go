package parser

import (
	"fmt"
	"strings"

	"github.com/aledsdavies/logexpr/core/token"
)

// Code discriminates the fault taxonomy of spec §7.
type Code int

const (
	EmptyExpression Code = iota
	InvalidTokenBeforeOpenParen
	InvalidTokenAfterCloseParen
	UnaryOperatorMissingOperand
	BinaryOperatorAtEnds
	InvalidBinaryOperatorContext
	UnmatchedClosingParenthesis
	UnmatchedParentheses
	UnknownToken
	InvalidTokenSequence
)

func (c Code) String() string {
	switch c {
	case EmptyExpression:
		return "EmptyExpression"
	case InvalidTokenBeforeOpenParen:
		return "InvalidTokenBeforeOpenParen"
	case InvalidTokenAfterCloseParen:
		return "InvalidTokenAfterCloseParen"
	case UnaryOperatorMissingOperand:
		return "UnaryOperatorMissingOperand"
	case BinaryOperatorAtEnds:
		return "BinaryOperatorAtEnds"
	case InvalidBinaryOperatorContext:
		return "InvalidBinaryOperatorContext"
	case UnmatchedClosingParenthesis:
		return "UnmatchedClosingParenthesis"
	case UnmatchedParentheses:
		return "UnmatchedParentheses"
	case UnknownToken:
		return "UnknownToken"
	case InvalidTokenSequence:
		return "InvalidTokenSequence"
	default:
		return "Unknown"
	}
}

// ParseError is the single typed error value returned by this package; see
// spec §7 for the field contract.
type ParseError struct {
	Code        Code
	TokenIndex  int
	CharIndex   int
	CharStart   int
	CharEnd     int
	CharCode    rune
	Lexeme      string
	Category    string
	Suggestions []string
	Input       string
	Cause       error // set only for InvalidTokenSequence
}

func (e *ParseError) Error() string {
	msg := e.message()
	snippet := e.snippet()
	if snippet == "" {
		return msg
	}
	return msg + "\n" + snippet
}

func (e *ParseError) Unwrap() error { return e.Cause }

func (e *ParseError) message() string {
	switch e.Code {
	case EmptyExpression:
		return "empty expression"
	case InvalidTokenBeforeOpenParen:
		return fmt.Sprintf("invalid token %q before '('", e.Lexeme)
	case InvalidTokenAfterCloseParen:
		return fmt.Sprintf("invalid token %q after ')'", e.Lexeme)
	case UnaryOperatorMissingOperand:
		return fmt.Sprintf("unary operator %q is missing its operand", e.Lexeme)
	case BinaryOperatorAtEnds:
		return fmt.Sprintf("binary operator %q cannot appear at the start or end of an expression", e.Lexeme)
	case InvalidBinaryOperatorContext:
		return fmt.Sprintf("binary operator %q has an invalid neighbor", e.Lexeme)
	case UnmatchedClosingParenthesis:
		return "unmatched closing parenthesis"
	case UnmatchedParentheses:
		return "unmatched parentheses"
	case UnknownToken:
		msg := fmt.Sprintf("unknown token %q", e.Lexeme)
		if len(e.Suggestions) > 0 {
			msg += fmt.Sprintf(" (did you mean: %s?)", strings.Join(e.Suggestions, ", "))
		}
		return msg
	case InvalidTokenSequence:
		if e.Cause != nil {
			return "invalid token sequence: " + e.Cause.Error()
		}
		return "invalid token sequence"
	default:
		return "parse error"
	}
}

// snippet reproduces the offending source line with a caret under the
// error's char index, in the teacher's Rust/Clang-style layout.
func (e *ParseError) snippet() string {
	if e.Input == "" {
		return ""
	}
	lineStart, lineEnd, line, col := lineAt(e.Input, e.CharIndex)
	_ = lineEnd
	var b strings.Builder
	fmt.Fprintf(&b, "  --> %d:%d\n", line, col)
	b.WriteString("   |\n")
	fmt.Fprintf(&b, "%2d | %s\n", line, e.Input[lineStart:lineEndOf(e.Input, lineStart)])
	b.WriteString("   | ")
	if col > 0 {
		b.WriteString(strings.Repeat(" ", col-1) + "^")
	}
	return b.String()
}

func lineEndOf(s string, from int) int {
	for i := from; i < len(s); i++ {
		if s[i] == '\n' {
			return i
		}
	}
	return len(s)
}

// lineAt returns the byte offset of the start of the line containing
// charIndex, that line's end, and the 1-based line/column of charIndex.
func lineAt(s string, charIndex int) (lineStart, lineEnd, line, col int) {
	line = 1
	lineStart = 0
	for i := 0; i < charIndex && i < len(s); i++ {
		if s[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	col = charIndex - lineStart + 1
	return lineStart, lineEndOf(s, lineStart), line, col
}

// categoryOf classifies a token for the ParseError.Category field.
func categoryOf(t token.Token) string {
	return t.Kind.String()
}

// newUnknownTokenFromLex wraps a lexer.UnknownTokenError into the parser's
// ParseError taxonomy so callers only ever see one error type.
func newUnknownTokenFromLex(input string, charIndex int, ch rune, suggestions []string) *ParseError {
	return &ParseError{
		Code:        UnknownToken,
		CharIndex:   charIndex,
		CharStart:   charIndex,
		CharEnd:     charIndex + 1,
		CharCode:    ch,
		Lexeme:      string(ch),
		Category:    "Illegal",
		Suggestions: suggestions,
		Input:       input,
	}
}
