package parser

import (
	"testing"

	"github.com/aledsdavies/logexpr/core/ast"
	"github.com/aledsdavies/logexpr/core/registry"
)

func newRegistry() *registry.Registry {
	reg := registry.New()
	ast.RegisterFactories(reg)
	return reg
}

func TestParseBothStrategiesAgree(t *testing.T) {
	inputs := []string{
		"A & B",
		"A | B & C",
		"~A & B",
		"(A | B) & (C | D)",
		"A => B <=> C",
		"A !& B",
		"A !| B",
		"A ^ B ^ C",
	}
	reg := newRegistry()
	for _, in := range inputs {
		sy, err := Parse(reg, in, WithStrategy(ShuntingYard))
		if err != nil {
			t.Fatalf("Parse(%q, ShuntingYard): unexpected error: %v", in, err)
		}
		pr, err := Parse(reg, in, WithStrategy(Pratt))
		if err != nil {
			t.Fatalf("Parse(%q, Pratt): unexpected error: %v", in, err)
		}
		if !ast.Equal(sy, pr) {
			t.Errorf("Parse(%q): ShuntingYard = %v, Pratt = %v, want equal", in, sy, pr)
		}
	}
}

func TestParsePrecedence(t *testing.T) {
	reg := newRegistry()
	tree, err := Parse(reg, "A | B & C")
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	// A | B & C should parse as A | (B & C) after normalization; since
	// Normalize does not change structure here, check the shape directly.
	bin, ok := tree.(ast.Binary)
	if !ok || bin.Op != "|" {
		t.Fatalf("Parse(%q) = %v, want top-level '|'", "A | B & C", tree)
	}
	rhs, ok := bin.Right.(ast.Binary)
	if !ok || rhs.Op != "&" {
		t.Fatalf("Parse(%q): right side = %v, want '&'", "A | B & C", bin.Right)
	}
}

func TestParseRightAssociativity(t *testing.T) {
	reg := newRegistry()
	tree, err := Parse(reg, "A => B => C")
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	bin, ok := tree.(ast.Binary)
	if !ok || bin.Op != "=>" {
		t.Fatalf("Parse(%q) = %v, want top-level '=>'", "A => B => C", tree)
	}
	if _, ok := bin.Right.(ast.Binary); !ok {
		t.Errorf("Parse(%q): want right-associative nesting on the right", "A => B => C")
	}
	if _, ok := bin.Left.(ast.Variable); !ok {
		t.Errorf("Parse(%q): want a bare variable on the left", "A => B => C")
	}
}

func TestParseErrorTaxonomy(t *testing.T) {
	reg := newRegistry()
	cases := []struct {
		input string
		code  Code
	}{
		{"", EmptyExpression},
		{")A", UnmatchedClosingParenthesis},
		{"(A", UnmatchedParentheses},
		{"A &", BinaryOperatorAtEnds},
		{"& A", BinaryOperatorAtEnds},
		{"~", UnaryOperatorMissingOperand},
		{"A (B)", InvalidTokenBeforeOpenParen},
		{"(A) B", InvalidTokenAfterCloseParen},
		{"A & & B", InvalidBinaryOperatorContext},
	}
	for _, c := range cases {
		_, err := Parse(reg, c.input)
		if err == nil {
			t.Errorf("Parse(%q): want error %s, got nil", c.input, c.code)
			continue
		}
		pe, ok := err.(*ParseError)
		if !ok {
			t.Errorf("Parse(%q): error type = %T, want *ParseError", c.input, err)
			continue
		}
		if pe.Code != c.code {
			t.Errorf("Parse(%q): code = %s, want %s", c.input, pe.Code, c.code)
		}
	}
}

func TestParseUnknownTokenReportsUnknownTokenCode(t *testing.T) {
	reg := newRegistry()
	_, err := Parse(reg, "A $ B")
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("Parse: error type = %T, want *ParseError", err)
	}
	if pe.Code != UnknownToken {
		t.Errorf("Parse: code = %s, want %s", pe.Code, UnknownToken)
	}
}

func TestParseErrorMessageHasCaret(t *testing.T) {
	reg := newRegistry()
	_, err := Parse(reg, "A &")
	msg := err.Error()
	if msg == "" {
		t.Fatalf("Error() is empty")
	}
	// A rendered snippet should at minimum reproduce the source line.
	if !containsAll(msg, "A &") {
		t.Errorf("Error() = %q, want it to reproduce the source line", msg)
	}
	if !containsAll(msg, "^") {
		t.Errorf("Error() = %q, want a caret marking the error column", msg)
	}
}

func containsAll(s, sub string) bool {
	return len(s) >= len(sub) && indexOf(s, sub) >= 0
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func TestParseUsesAstCache(t *testing.T) {
	reg := newRegistry()
	c := NewAstCache(8)

	tree1, err := Parse(reg, "A & B", WithCache(c))
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("AST cache Len() = %d, want 1 after first parse", c.Len())
	}

	tree2, err := Parse(reg, "A & B", WithCache(c))
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	if !ast.Equal(tree1, tree2) {
		t.Errorf("cached Parse result differs from first parse")
	}
	stats := c.Stats()
	if stats.Hits != 1 {
		t.Errorf("cache Stats().Hits = %d, want 1", stats.Hits)
	}
}

func TestTryParseWithoutFactoriesReturnsTypedError(t *testing.T) {
	reg := registry.New() // no factories registered: node construction fails
	_, err := TryParse(reg, "A & B")
	if err == nil {
		t.Fatalf("TryParse: want error when node factories are unregistered")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("TryParse: error type = %T, want *ParseError", err)
	}
	if pe.Code != InvalidTokenSequence {
		t.Errorf("TryParse: code = %s, want %s", pe.Code, InvalidTokenSequence)
	}
}

func TestTryParseSucceedsWithFactories(t *testing.T) {
	reg := newRegistry()
	node, err := TryParse(reg, "A & B")
	if err != nil {
		t.Fatalf("TryParse: unexpected error: %v", err)
	}
	if _, ok := node.(ast.Binary); !ok {
		t.Errorf("TryParse result = %T, want ast.Binary", node)
	}
}

func TestParseEmptyInputWhitespaceOnly(t *testing.T) {
	reg := newRegistry()
	_, err := Parse(reg, "   ")
	pe, ok := err.(*ParseError)
	if !ok || pe.Code != EmptyExpression {
		t.Fatalf("Parse(whitespace): want EmptyExpression, got %v", err)
	}
}
