package convert

import (
	"testing"

	"github.com/aledsdavies/logexpr/core/ast"
	"github.com/aledsdavies/logexpr/runtime/bdd"
	"github.com/aledsdavies/logexpr/runtime/rewrite"
)

func buildIndexed(t *testing.T, n ast.Node, order []string) (*bdd.Manager, bdd.Ref) {
	t.Helper()
	indexed := rewrite.VariableIndex(n, order)
	m := bdd.NewManager()
	ref, err := m.Build(indexed)
	if err != nil {
		t.Fatalf("Build: unexpected error: %v", err)
	}
	return m, ref
}

func evalAST(n ast.Node, values map[string]bool) bool {
	switch t := n.(type) {
	case ast.Constant:
		return t.Value
	case ast.Variable:
		return values[t.Name]
	case ast.Unary:
		return !evalAST(t.Operand, values)
	case ast.Binary:
		l, r := evalAST(t.Left, values), evalAST(t.Right, values)
		switch t.Op {
		case "&":
			return l && r
		case "|":
			return l || r
		case "^":
			return l != r
		case "=>":
			return !l || r
		case "<=>":
			return l == r
		case "!&":
			return !(l && r)
		case "!|":
			return !(l || r)
		}
	}
	panic("unreachable")
}

func TestToASTRoundTripsSemantics(t *testing.T) {
	order := []string{"A", "B", "C"}
	n := ast.Binary{
		Op:   "|",
		Left: ast.Binary{Op: "&", Left: ast.Variable{Name: "A"}, Right: ast.Variable{Name: "B"}},
		Right: ast.Unary{Op: "~", Operand: ast.Variable{Name: "C"}},
	}

	m, ref := buildIndexed(t, rewrite.Normalize(n), order)
	reconstructed := ToAST(m, ref, order)

	for _, av := range []bool{false, true} {
		for _, bv := range []bool{false, true} {
			for _, cv := range []bool{false, true} {
				values := map[string]bool{"A": av, "B": bv, "C": cv}
				if got, want := evalAST(reconstructed, values), evalAST(n, values); got != want {
					t.Errorf("ToAST roundtrip mismatch at A=%v,B=%v,C=%v: got %v, want %v", av, bv, cv, got, want)
				}
			}
		}
	}
}

func TestToDnfIsDisjunctionOfConjunctions(t *testing.T) {
	order := []string{"A", "B"}
	n := ast.Binary{Op: "^", Left: ast.Variable{Name: "A"}, Right: ast.Variable{Name: "B"}}

	m, ref := buildIndexed(t, rewrite.Normalize(n), order)
	dnf := ToDnf(m, ref, order)

	for _, av := range []bool{false, true} {
		for _, bv := range []bool{false, true} {
			values := map[string]bool{"A": av, "B": bv}
			if got, want := evalAST(dnf, values), evalAST(n, values); got != want {
				t.Errorf("ToDnf mismatch at A=%v,B=%v: got %v, want %v", av, bv, got, want)
			}
		}
	}
}

func TestToCnfIsConjunctionOfDisjunctions(t *testing.T) {
	order := []string{"A", "B"}
	n := ast.Binary{Op: "=>", Left: ast.Variable{Name: "A"}, Right: ast.Variable{Name: "B"}}

	m, ref := buildIndexed(t, rewrite.Normalize(n), order)
	cnf := ToCnf(m, ref, order)

	for _, av := range []bool{false, true} {
		for _, bv := range []bool{false, true} {
			values := map[string]bool{"A": av, "B": bv}
			if got, want := evalAST(cnf, values), evalAST(n, values); got != want {
				t.Errorf("ToCnf mismatch at A=%v,B=%v: got %v, want %v", av, bv, got, want)
			}
		}
	}
}

func TestToDnfConstantTerminals(t *testing.T) {
	m := bdd.NewManager()
	if got := ToDnf(m, bdd.RefTrue, nil); !ast.Equal(got, ast.Constant{Value: true}) {
		t.Errorf("ToDnf(RefTrue) = %v, want constant true", got)
	}
	if got := ToDnf(m, bdd.RefFalse, nil); !ast.Equal(got, ast.Constant{Value: false}) {
		t.Errorf("ToDnf(RefFalse) = %v, want constant false", got)
	}
}
