package lexer

import (
	"testing"

	"github.com/aledsdavies/logexpr/core/registry"
	"github.com/aledsdavies/logexpr/core/token"
)

type tokenExpectation struct {
	Kind   token.Kind
	Lexeme string
}

func assertTokens(t *testing.T, input string, want []tokenExpectation) {
	t.Helper()

	reg := registry.New()
	tokens, err := New(reg, input).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize(%q): unexpected error: %v", input, err)
	}
	// Drop the trailing EOF for comparison against a hand-written table.
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != token.EOF {
		t.Fatalf("Tokenize(%q): missing trailing EOF token", input)
	}
	tokens = tokens[:len(tokens)-1]

	if len(tokens) != len(want) {
		t.Fatalf("Tokenize(%q) = %d tokens, want %d\ngot:  %v", input, len(tokens), len(want), tokens)
	}
	for i, w := range want {
		if tokens[i].Kind != w.Kind || tokens[i].Lexeme != w.Lexeme {
			t.Errorf("Tokenize(%q)[%d] = %s(%q), want %s(%q)",
				input, i, tokens[i].Kind, tokens[i].Lexeme, w.Kind, w.Lexeme)
		}
	}
}

func TestTokenizeBasicOperators(t *testing.T) {
	assertTokens(t, "A & B", []tokenExpectation{
		{token.Identifier, "A"},
		{token.Operator, "&"},
		{token.Identifier, "B"},
	})
}

func TestTokenizeIffBeforeImply(t *testing.T) {
	assertTokens(t, "A <=> B", []tokenExpectation{
		{token.Identifier, "A"},
		{token.Operator, "<=>"},
		{token.Identifier, "B"},
	})
}

func TestTokenizeWordAliases(t *testing.T) {
	assertTokens(t, "A AND B OR NOT C", []tokenExpectation{
		{token.Identifier, "A"},
		{token.Operator, "AND"},
		{token.Identifier, "B"},
		{token.Operator, "OR"},
		{token.Operator, "NOT"},
		{token.Identifier, "C"},
	})
}

func TestTokenizeConstants(t *testing.T) {
	assertTokens(t, "1 & 0 & true & false", []tokenExpectation{
		{token.Constant, "1"},
		{token.Operator, "&"},
		{token.Constant, "0"},
		{token.Operator, "&"},
		{token.Constant, "true"},
		{token.Operator, "&"},
		{token.Constant, "false"},
	})
}

func TestTokenizeParens(t *testing.T) {
	assertTokens(t, "(A & B)", []tokenExpectation{
		{token.LeftParen, "("},
		{token.Identifier, "A"},
		{token.Operator, "&"},
		{token.Identifier, "B"},
		{token.RightParen, ")"},
	})
}

func TestOperatorTokenCarriesCanonicalSymbol(t *testing.T) {
	reg := registry.New()
	tokens, err := New(reg, "A AND B").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize: unexpected error: %v", err)
	}
	for _, tok := range tokens {
		if tok.Lexeme == "AND" {
			if tok.Operator != registry.SymAnd {
				t.Errorf("token.Operator = %q, want %q", tok.Operator, registry.SymAnd)
			}
		}
	}
}

func TestUnknownTokenReportsSuggestions(t *testing.T) {
	reg := registry.New()
	_, err := New(reg, "A $ B").Tokenize()
	if err == nil {
		t.Fatalf("Tokenize: want error for unrecognized character")
	}
	ute, ok := err.(*UnknownTokenError)
	if !ok {
		t.Fatalf("Tokenize error type = %T, want *UnknownTokenError", err)
	}
	if ute.Char != '$' {
		t.Errorf("UnknownTokenError.Char = %q, want %q", ute.Char, '$')
	}
}

func TestUnknownTokenSuggestionsDisabled(t *testing.T) {
	reg := registry.New()
	_, err := New(reg, "$", WithAliasSuggestions(false)).Tokenize()
	ute, ok := err.(*UnknownTokenError)
	if !ok {
		t.Fatalf("Tokenize error type = %T, want *UnknownTokenError", err)
	}
	if len(ute.Suggestions) != 0 {
		t.Errorf("Suggestions = %v, want empty when disabled", ute.Suggestions)
	}
}

func TestTokenizePositionTracking(t *testing.T) {
	reg := registry.New()
	tokens, err := New(reg, "A\n& B").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize: unexpected error: %v", err)
	}
	// tokens[0] = A on line 1, tokens[1] = & on line 2
	if tokens[0].Position.Line != 1 {
		t.Errorf("tokens[0].Position.Line = %d, want 1", tokens[0].Position.Line)
	}
	if tokens[1].Position.Line != 2 {
		t.Errorf("tokens[1].Position.Line = %d, want 2", tokens[1].Position.Line)
	}
}

func TestUnicodeNormalizationDisabled(t *testing.T) {
	reg := registry.New()
	// "∧" is a registered alias for SymAnd regardless of NFKC; this just
	// exercises the option plumbing end to end.
	tokens, err := New(reg, "A ∧ B", WithUnicodeNormalization(false)).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize: unexpected error: %v", err)
	}
	found := false
	for _, tok := range tokens {
		if tok.Kind == token.Operator && tok.Operator == registry.SymAnd {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an %q operator token, got %v", registry.SymAnd, tokens)
	}
}
