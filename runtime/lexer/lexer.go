// Package lexer tokenizes boolean-expression source text (spec §4.2). The
// scan is pure: given the same input and configuration it always produces
// the same finite token sequence, in input order.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/aledsdavies/logexpr/core/registry"
	"github.com/aledsdavies/logexpr/core/token"
)

// Opt configures a Lexer, following the teacher's functional-options shape
// (runtime/lexer/v2's LexerOpt / runtime/parser's options.go).
type Opt func(*config)

type config struct {
	unicodeNormalization bool
	aliasSuggestions     bool
}

// WithUnicodeNormalization toggles NFKC normalization before scanning
// (spec §4.2, default true via New's defaults).
func WithUnicodeNormalization(enabled bool) Opt {
	return func(c *config) { c.unicodeNormalization = enabled }
}

// WithAliasSuggestions toggles Levenshtein-hinted UnknownToken errors
// (spec §6 EnableAliasSuggestions, default true).
func WithAliasSuggestions(enabled bool) Opt {
	return func(c *config) { c.aliasSuggestions = enabled }
}

// UnknownTokenError reports an unrecognized character, with suggestions
// drawn from the registry's alias table when enabled (spec §4.2, §7).
type UnknownTokenError struct {
	Char        rune
	Offset      int
	Line        int
	Column      int
	Suggestions []string
}

func (e *UnknownTokenError) Error() string {
	return "lexer: unknown token " + string(e.Char)
}

// Lexer scans one input string into a token sequence against a Registry.
type Lexer struct {
	reg    *registry.Registry
	input  string
	cfg    config
	pos    int // byte offset
	line   int
	column int
}

// New constructs a Lexer. The registry supplies operator aliases, constant
// aliases, and the longest-match candidate list.
func New(reg *registry.Registry, input string, opts ...Opt) *Lexer {
	cfg := config{unicodeNormalization: true, aliasSuggestions: true}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.unicodeNormalization {
		input = norm.NFKC.String(input)
	}
	return &Lexer{reg: reg, input: input, cfg: cfg, line: 1, column: 1}
}

// Tokenize scans the entire input into a token slice terminated by an EOF
// token. It returns the first UnknownTokenError encountered, if any.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var tokens []token.Token
	for {
		tok, err := l.next()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) next() (token.Token, error) {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return token.Token{Kind: token.EOF, Position: l.pos0()}, nil
	}

	start := l.pos0()
	ch := l.current()

	switch ch {
	case '(':
		l.advance()
		return token.Token{Kind: token.LeftParen, Lexeme: "(", Position: start}, nil
	case ')':
		l.advance()
		return token.Token{Kind: token.RightParen, Lexeme: ")", Position: start}, nil
	case '0', '1':
		l.advance()
		return token.Token{Kind: token.Constant, Lexeme: string(ch), Position: start}, nil
	}

	// "<=>" must be recognized eagerly, before the general longest-match
	// scan and before "<" could be mistaken for a standalone token
	// (spec §4.2).
	if hasPrefix(l.input[l.pos:], registry.SymIff) {
		l.advanceLexeme(registry.SymIff)
		return token.Token{Kind: token.Operator, Lexeme: registry.SymIff, Position: start, Operator: registry.SymIff}, nil
	}

	if isLetter(ch) {
		return l.lexIdentifierOrAlias(start)
	}

	// Non-alphanumeric, non-paren: longest-match against the registry's
	// candidate list, sorted descending by length so e.g. "<=>" beats "<="
	// and "<=" beats "<".
	if tok, ok := l.lexOperatorCandidate(start); ok {
		return tok, nil
	}

	return l.unknownToken(start, ch)
}

// lexIdentifierOrAlias reads a [letter|digit|_]* run and classifies it, in
// order, against: prefix-unary-word-aliases, operator aliases, constant
// aliases, else Identifier (spec §4.2).
func (l *Lexer) lexIdentifierOrAlias(start token.Position) (token.Token, error) {
	startByte := l.pos
	for l.pos < len(l.input) {
		r, size := l.decodeRune()
		if !isLetter(r) && !isDigit(r) && r != '_' {
			break
		}
		l.advanceBytesRune(r, size)
	}
	text := l.input[startByte:l.pos]

	if canonical, ok := l.reg.Canonicalize(text); ok {
		return token.Token{Kind: token.Operator, Lexeme: text, Position: start, Operator: canonical}, nil
	}
	if _, ok := l.reg.ConstantValue(text); ok {
		return token.Token{Kind: token.Constant, Lexeme: text, Position: start}, nil
	}
	return token.Token{Kind: token.Identifier, Lexeme: text, Position: start}, nil
}

// lexOperatorCandidate tries every registry candidate (already sorted
// longest-first) as a prefix of the remaining input.
func (l *Lexer) lexOperatorCandidate(start token.Position) (token.Token, bool) {
	remaining := l.input[l.pos:]
	for _, cand := range l.reg.Candidates() {
		if isWordAlias(cand) {
			continue // word aliases only apply via the identifier path
		}
		if hasPrefix(remaining, cand) {
			l.advanceLexeme(cand)
			canonical, _ := l.reg.Canonicalize(cand)
			return token.Token{Kind: token.Operator, Lexeme: cand, Position: start, Operator: canonical}, true
		}
	}
	return token.Token{}, false
}

func isWordAlias(s string) bool {
	if s == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return isLetter(r)
}

func (l *Lexer) unknownToken(start token.Position, ch rune) (token.Token, error) {
	size := utf8.RuneLen(ch)
	if size < 0 {
		size = 1
	}
	l.advanceBytesRune(ch, size)

	err := &UnknownTokenError{
		Char:   ch,
		Offset: start.Offset,
		Line:   start.Line,
		Column: start.Column,
	}
	if l.cfg.aliasSuggestions {
		err.Suggestions = l.reg.Suggest(string(ch))
	}
	return token.Token{Kind: token.Illegal, Lexeme: string(ch), Position: start}, err
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		r, size := l.decodeRune()
		if !unicode.IsSpace(r) {
			return
		}
		l.advanceBytesRune(r, size)
	}
}

func (l *Lexer) pos0() token.Position {
	return token.Position{Offset: l.pos, Line: l.line, Column: l.column}
}

func (l *Lexer) current() rune {
	r, _ := l.decodeRune()
	return r
}

func (l *Lexer) decodeRune() (rune, int) {
	if l.pos >= len(l.input) {
		return 0, 0
	}
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	return r, size
}

func (l *Lexer) advance() {
	r, size := l.decodeRune()
	l.advanceBytesRune(r, size)
}

func (l *Lexer) advanceBytesRune(r rune, size int) {
	if size <= 0 {
		size = 1
	}
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos += size
}

// advanceLexeme consumes exactly s, a known operator lexeme that never
// contains a newline. pos advances by its byte length, but column advances
// by its rune count, so multi-byte Unicode aliases ("∧", "→", "⇔", ...)
// don't overcount the column in later error snippets.
func (l *Lexer) advanceLexeme(s string) {
	l.pos += len(s)
	l.column += utf8.RuneCountInString(s)
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func isLetter(r rune) bool {
	return unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return unicode.IsDigit(r)
}
