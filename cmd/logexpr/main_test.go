package main

import (
	"strings"
	"testing"

	"github.com/aledsdavies/logexpr/core/ast"
	"github.com/aledsdavies/logexpr/core/registry"
	"github.com/aledsdavies/logexpr/expr"
	"github.com/aledsdavies/logexpr/runtime/parser"
)

func mustTestExpression(t *testing.T, input string) *expr.Expression {
	t.Helper()
	reg := registry.New()
	ast.RegisterFactories(reg)
	e, err := expr.Parse(reg, input)
	if err != nil {
		t.Fatalf("expr.Parse(%q): unexpected error: %v", input, err)
	}
	return e
}

func TestParseStrategy(t *testing.T) {
	cases := []struct {
		in      string
		want    parser.Strategy
		wantErr bool
	}{
		{"", parser.ShuntingYard, false},
		{"shunting-yard", parser.ShuntingYard, false},
		{"pratt", parser.Pratt, false},
		{"bogus", 0, true},
	}
	for _, c := range cases {
		got, err := parseStrategy(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("parseStrategy(%q): want error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseStrategy(%q): unexpected error: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("parseStrategy(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRunSucceedsOnTautology(t *testing.T) {
	exitCode := run([]string{"A | ~A"})
	if exitCode != ExitSuccess {
		t.Fatalf("run: exit code = %d, want %d", exitCode, ExitSuccess)
	}
}

func TestRunReportsParseErrorExitCode(t *testing.T) {
	exitCode := run([]string{"A & & B"})
	if exitCode != ExitParseError {
		t.Errorf("run: exit code = %d, want %d (parse error)", exitCode, ExitParseError)
	}
}

func TestRunRejectsUnknownStrategy(t *testing.T) {
	exitCode := run([]string{"--strategy", "bogus", "A"})
	if exitCode != ExitInvalidArguments {
		t.Errorf("run: exit code = %d, want %d (invalid arguments)", exitCode, ExitInvalidArguments)
	}
}

func TestRunRequiresExactlyOneArgument(t *testing.T) {
	exitCode := run([]string{})
	if exitCode == ExitSuccess {
		t.Errorf("run: exit code = %d, want non-zero for missing argument", exitCode)
	}
}

func TestDescribeIncludesRequestedForms(t *testing.T) {
	e := mustTestExpression(t, "A & B")
	out, err := describe(e, true, true, true)
	if err != nil {
		t.Fatalf("describe: unexpected error: %v", err)
	}
	for _, want := range []string{"normalized:", "variables:", "tautology:", "minimized:", "dnf:", "cnf:"} {
		if !strings.Contains(out, want) {
			t.Errorf("describe output missing %q section:\n%s", want, out)
		}
	}
}
