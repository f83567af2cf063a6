package ast

import (
	"testing"
)

func TestEqual(t *testing.T) {
	a := Binary{Op: "&", Left: Variable{Name: "A", Index: 0}, Right: Variable{Name: "B", Index: 1}}
	b := Binary{Op: "&", Left: Variable{Name: "A", Index: 0}, Right: Variable{Name: "B", Index: 1}}
	if !Equal(a, b) {
		t.Errorf("Equal(a, b) = false, want true for identical trees")
	}

	c := Binary{Op: "&", Left: Variable{Name: "A", Index: 1}, Right: Variable{Name: "B", Index: 1}}
	if Equal(a, c) {
		t.Errorf("Equal(a, c) = true, want false: differing Variable.Index must compare unequal")
	}

	d := Binary{Op: "|", Left: Variable{Name: "A", Index: 0}, Right: Variable{Name: "B", Index: 1}}
	if Equal(a, d) {
		t.Errorf("Equal(a, d) = true, want false for differing operators")
	}
}

func TestCanonicalStringDistinguishesIndex(t *testing.T) {
	v0 := Variable{Name: "A", Index: 0}
	v1 := Variable{Name: "A", Index: 1}
	if CanonicalString(v0) == CanonicalString(v1) {
		t.Errorf("CanonicalString collapsed distinct indices for the same name")
	}
}

func TestVariablesFirstOccurrenceOrder(t *testing.T) {
	n := Binary{
		Op:   "&",
		Left: Binary{Op: "|", Left: Variable{Name: "B"}, Right: Variable{Name: "A"}},
		Right: Variable{Name: "B"},
	}
	got := Variables(n)
	want := []string{"B", "A"}
	if len(got) != len(want) {
		t.Fatalf("Variables() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Variables()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestOccurrences(t *testing.T) {
	n := Binary{
		Op:   "&",
		Left: Binary{Op: "|", Left: Variable{Name: "A"}, Right: Variable{Name: "A"}},
		Right: Variable{Name: "B"},
	}
	counts := Occurrences(n)
	if counts["A"] != 2 {
		t.Errorf("Occurrences()[A] = %d, want 2", counts["A"])
	}
	if counts["B"] != 1 {
		t.Errorf("Occurrences()[B] = %d, want 1", counts["B"])
	}
}

func TestStringRendersParenthesesForNestedBinary(t *testing.T) {
	n := Binary{
		Op:    "&",
		Left:  Variable{Name: "A"},
		Right: Binary{Op: "|", Left: Variable{Name: "B"}, Right: Variable{Name: "C"}},
	}
	got := n.String()
	want := "A & (B | C)"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

type constFoldVisitor struct{}

func (constFoldVisitor) VisitConstant(c Constant) Node { return c }
func (constFoldVisitor) VisitVariable(v Variable) Node { return v }
func (constFoldVisitor) VisitUnary(u Unary) Node       { return u }
func (constFoldVisitor) VisitBinary(b Binary) Node     { return b }

func TestWalkDispatchesByType(t *testing.T) {
	v := constFoldVisitor{}
	nodes := []Node{
		Constant{Value: true},
		Variable{Name: "A"},
		Unary{Op: "~", Operand: Variable{Name: "A"}},
		Binary{Op: "&", Left: Variable{Name: "A"}, Right: Variable{Name: "B"}},
	}
	for _, n := range nodes {
		if got := Walk(v, n); !Equal(got, n) {
			t.Errorf("Walk(%T) = %v, want %v", n, got, n)
		}
	}
}
