package expr

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aledsdavies/logexpr/core/ast"
	"github.com/aledsdavies/logexpr/core/registry"
	"github.com/aledsdavies/logexpr/runtime/eval"
	"github.com/aledsdavies/logexpr/runtime/parser"
)

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	ast.RegisterFactories(reg)
	return reg
}

func mustParse(t *testing.T, input string, opts ...Option) *Expression {
	t.Helper()
	e, err := Parse(newTestRegistry(t), input, opts...)
	if err != nil {
		t.Fatalf("Parse(%q): unexpected error: %v", input, err)
	}
	return e
}

func TestParseAndEvaluateMap(t *testing.T) {
	e := mustParse(t, "((A & B) | !(C => true)) <=> D")

	cases := []struct {
		values map[string]bool
		want   bool
	}{
		{map[string]bool{"A": true, "B": true, "C": false, "D": true}, true},
		{map[string]bool{"A": false, "B": true, "C": true, "D": false}, true},
		{map[string]bool{"A": true, "B": true, "C": false, "D": false}, false},
	}
	for _, c := range cases {
		got, err := e.EvaluateMap(c.values)
		if err != nil {
			t.Fatalf("EvaluateMap(%v): unexpected error: %v", c.values, err)
		}
		if got != c.want {
			t.Errorf("EvaluateMap(%v) = %v, want %v", c.values, got, c.want)
		}
	}
}

func TestEvaluateVectorFollowsVariableOrder(t *testing.T) {
	e := mustParse(t, "A & B")
	order := e.VariableOrder()
	if diff := cmp.Diff([]string{"A", "B"}, order); diff != "" {
		t.Fatalf("VariableOrder() mismatch (-want +got):\n%s", diff)
	}

	got, err := e.Evaluate([]bool{true, false})
	if err != nil {
		t.Fatalf("Evaluate: unexpected error: %v", err)
	}
	if got != false {
		t.Errorf("Evaluate([true,false]) = %v, want false", got)
	}
}

func TestIsTautologyAndIsContradiction(t *testing.T) {
	taut := mustParse(t, "A | ~A")
	isTaut, err := taut.IsTautology()
	if err != nil {
		t.Fatalf("IsTautology: unexpected error: %v", err)
	}
	if !isTaut {
		t.Errorf("IsTautology(A | ~A) = false, want true")
	}
	if sat, err := taut.IsSatisfiable(); err != nil || !sat {
		t.Errorf("IsSatisfiable(A | ~A) = (%v, %v), want (true, nil)", sat, err)
	}

	contra := mustParse(t, "A & ~A")
	isContra, err := contra.IsContradiction()
	if err != nil {
		t.Fatalf("IsContradiction: unexpected error: %v", err)
	}
	if !isContra {
		t.Errorf("IsContradiction(A & ~A) = false, want true")
	}
	if sat, err := contra.IsSatisfiable(); err != nil || sat {
		t.Errorf("IsSatisfiable(A & ~A) = (%v, %v), want (false, nil)", sat, err)
	}
}

func TestMinimizeCollapsesRedundancy(t *testing.T) {
	e := mustParse(t, "(A & B) | (A & ~B)")
	min, err := e.Minimize()
	if err != nil {
		t.Fatalf("Minimize: unexpected error: %v", err)
	}

	for _, av := range []bool{false, true} {
		for _, bv := range []bool{false, true} {
			values := map[string]bool{"A": av, "B": bv}
			want, err := e.EvaluateMap(values)
			if err != nil {
				t.Fatalf("EvaluateMap: unexpected error: %v", err)
			}
			got, err := min.EvaluateMap(values)
			if err != nil {
				t.Fatalf("EvaluateMap (minimized): unexpected error: %v", err)
			}
			if got != want {
				t.Errorf("Minimize changed semantics at A=%v,B=%v: got %v, want %v", av, bv, got, want)
			}
		}
	}
}

func TestToDnfAndToCnfPreserveSemantics(t *testing.T) {
	e := mustParse(t, "A => B")

	dnf, err := e.ToDnf()
	if err != nil {
		t.Fatalf("ToDnf: unexpected error: %v", err)
	}
	cnf, err := e.ToCnf()
	if err != nil {
		t.Fatalf("ToCnf: unexpected error: %v", err)
	}

	for _, av := range []bool{false, true} {
		for _, bv := range []bool{false, true} {
			values := map[string]bool{"A": av, "B": bv}
			want, _ := e.EvaluateMap(values)
			if got, err := dnf.EvaluateMap(values); err != nil || got != want {
				t.Errorf("ToDnf mismatch at A=%v,B=%v: got (%v,%v), want %v", av, bv, got, err, want)
			}
			if got, err := cnf.EvaluateMap(values); err != nil || got != want {
				t.Errorf("ToCnf mismatch at A=%v,B=%v: got (%v,%v), want %v", av, bv, got, err, want)
			}
		}
	}
}

func TestEquivalentToAcrossDifferentVariableOrders(t *testing.T) {
	a := mustParse(t, "A & B")
	b, err := mustParse(t, "B & A").WithVariableOrder([]string{"B", "A"})
	if err != nil {
		t.Fatalf("WithVariableOrder: unexpected error: %v", err)
	}

	eq, err := a.EquivalentTo(b)
	if err != nil {
		t.Fatalf("EquivalentTo: unexpected error: %v", err)
	}
	if !eq {
		t.Errorf("EquivalentTo(A&B, B&A) = false, want true")
	}

	notEq := mustParse(t, "A | B")
	eq2, err := a.EquivalentTo(notEq)
	if err != nil {
		t.Fatalf("EquivalentTo: unexpected error: %v", err)
	}
	if eq2 {
		t.Errorf("EquivalentTo(A&B, A|B) = true, want false")
	}
}

func TestStructuralEqualsIsSyntaxSensitive(t *testing.T) {
	a := mustParse(t, "A & B")
	b := mustParse(t, "B & A")

	if a.StructuralEquals(b) {
		t.Errorf("StructuralEquals(A&B, B&A) = true, want false (different structure)")
	}
	eq, err := a.EquivalentTo(b)
	if err != nil {
		t.Fatalf("EquivalentTo: unexpected error: %v", err)
	}
	if !eq {
		t.Errorf("EquivalentTo(A&B, B&A) = false, want true (same function)")
	}

	same := mustParse(t, "A & B")
	if !a.StructuralEquals(same) {
		t.Errorf("StructuralEquals(A&B, A&B) = false, want true")
	}
}

func TestWithVariableOrderRejectsNonPermutations(t *testing.T) {
	e := mustParse(t, "A & B")

	if _, err := e.WithVariableOrder([]string{"A"}); err == nil {
		t.Errorf("WithVariableOrder([A]): want error for wrong length")
	}
	if _, err := e.WithVariableOrder([]string{"A", "A"}); err == nil {
		t.Errorf("WithVariableOrder([A,A]): want error for duplicate")
	}
	if _, err := e.WithVariableOrder([]string{"A", "C"}); err == nil {
		t.Errorf("WithVariableOrder([A,C]): want error for unknown variable")
	}
	reordered, err := e.WithVariableOrder([]string{"B", "A"})
	if err != nil {
		t.Fatalf("WithVariableOrder([B,A]): unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"B", "A"}, reordered.VariableOrder()); diff != "" {
		t.Errorf("VariableOrder() mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePropagatesTypedParseErrors(t *testing.T) {
	_, err := Parse(newTestRegistry(t), "A & & B")
	if err == nil {
		t.Fatalf("Parse(%q): want error", "A & & B")
	}
	if _, ok := err.(*parser.ParseError); !ok {
		t.Errorf("Parse(%q): error type = %T, want *parser.ParseError", "A & & B", err)
	}
}

func TestCacheStatsReportUnconfiguredAsAbsent(t *testing.T) {
	e := mustParse(t, "A & B")
	if _, ok := e.AstCacheStats(); ok {
		t.Errorf("AstCacheStats() ok = true, want false (no cache configured)")
	}
	if _, ok := e.DelegateCacheStats(); ok {
		t.Errorf("DelegateCacheStats() ok = true, want false (no cache configured)")
	}
}

func TestDelegateCacheStatsTrackHits(t *testing.T) {
	dc := eval.NewDelegateCache(8)
	e := mustParse(t, "A & B", WithDelegateCache(dc))

	if _, err := e.Evaluate([]bool{true, true}); err != nil {
		t.Fatalf("Evaluate: unexpected error: %v", err)
	}
	if _, err := e.Evaluate([]bool{true, false}); err != nil {
		t.Fatalf("Evaluate: unexpected error: %v", err)
	}

	stats, ok := e.DelegateCacheStats()
	if !ok {
		t.Fatalf("DelegateCacheStats() ok = false, want true")
	}
	if stats.Hits != 1 {
		t.Errorf("DelegateCacheStats().Hits = %d, want 1", stats.Hits)
	}
}

func TestNormalizePreservesSemantics(t *testing.T) {
	e := mustParse(t, "~~A")
	normalized := e.Normalize()

	for _, av := range []bool{false, true} {
		values := map[string]bool{"A": av}
		want, _ := e.EvaluateMap(values)
		got, err := normalized.EvaluateMap(values)
		if err != nil {
			t.Fatalf("EvaluateMap: unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("Normalize changed semantics at A=%v: got %v, want %v", av, got, want)
		}
	}
}
