package eval

import (
	"testing"

	"github.com/aledsdavies/logexpr/core/ast"
)

func sample() (ast.Node, []string) {
	// (A & B) | (~C => D)
	n := ast.Binary{
		Op:   "|",
		Left: ast.Binary{Op: "&", Left: ast.Variable{Name: "A"}, Right: ast.Variable{Name: "B"}},
		Right: ast.Binary{
			Op:   "=>",
			Left: ast.Unary{Op: "~", Operand: ast.Variable{Name: "C"}},
			Right: ast.Variable{Name: "D"},
		},
	}
	return n, []string{"A", "B", "C", "D"}
}

func TestTreeWalkMatchesDirectEvaluation(t *testing.T) {
	n, order := sample()
	indexed := indexFor(n, order)

	for _, av := range []bool{false, true} {
		for _, bv := range []bool{false, true} {
			for _, cv := range []bool{false, true} {
				for _, dv := range []bool{false, true} {
					got, err := TreeWalk(indexed, []bool{av, bv, cv, dv})
					if err != nil {
						t.Fatalf("TreeWalk: unexpected error: %v", err)
					}
					want := (av && bv) || (!(!cv) || dv)
					if got != want {
						t.Errorf("TreeWalk(A=%v,B=%v,C=%v,D=%v) = %v, want %v", av, bv, cv, dv, got, want)
					}
				}
			}
		}
	}
}

func TestCompiledMatchesTreeWalkBothModes(t *testing.T) {
	n, order := sample()
	indexed := indexFor(n, order)

	for _, shortCircuit := range []bool{true, false} {
		delegate, err := Compile(indexed, shortCircuit)
		if err != nil {
			t.Fatalf("Compile(shortCircuit=%v): unexpected error: %v", shortCircuit, err)
		}
		for _, av := range []bool{false, true} {
			for _, bv := range []bool{false, true} {
				for _, cv := range []bool{false, true} {
					for _, dv := range []bool{false, true} {
						inputs := []bool{av, bv, cv, dv}
						want, err := TreeWalk(indexed, inputs)
						if err != nil {
							t.Fatalf("TreeWalk: unexpected error: %v", err)
						}
						if got := delegate(inputs); got != want {
							t.Errorf("Compile(shortCircuit=%v) mismatch at %v: got %v, want %v", shortCircuit, inputs, got, want)
						}
					}
				}
			}
		}
	}
}

func TestTreeWalkUnknownOperatorErrors(t *testing.T) {
	n := ast.Binary{Op: "?", Left: ast.Variable{Index: 0}, Right: ast.Variable{Index: 1}}
	_, err := TreeWalk(n, []bool{true, false})
	if err == nil {
		t.Fatalf("TreeWalk: want error for unknown operator")
	}
}

func TestCompileUnknownOperatorErrors(t *testing.T) {
	n := ast.Unary{Op: "?", Operand: ast.Variable{Index: 0}}
	_, err := Compile(n, true)
	if err == nil {
		t.Fatalf("Compile: want error for unknown unary operator")
	}
}

// indexFor assigns Variable.Index positions matching order, duplicating
// runtime/rewrite.VariableIndex's behavior so these tests do not depend on
// it.
func indexFor(n ast.Node, order []string) ast.Node {
	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name] = i
	}
	var walk func(ast.Node) ast.Node
	walk = func(n ast.Node) ast.Node {
		switch t := n.(type) {
		case ast.Constant:
			return t
		case ast.Variable:
			return ast.Variable{Name: t.Name, Index: pos[t.Name]}
		case ast.Unary:
			return ast.Unary{Op: t.Op, Operand: walk(t.Operand)}
		case ast.Binary:
			return ast.Binary{Op: t.Op, Left: walk(t.Left), Right: walk(t.Right)}
		default:
			return n
		}
	}
	return walk(n)
}
