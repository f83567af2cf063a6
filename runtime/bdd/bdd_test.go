package bdd

import "testing"

func TestMakeNodeSharesIdenticalTriples(t *testing.T) {
	m := NewManager()
	a := m.MakeNode(0, RefFalse, RefTrue)
	b := m.MakeNode(0, RefFalse, RefTrue)
	if a != b {
		t.Errorf("MakeNode returned distinct refs for the same (level, low, high)")
	}
}

func TestMakeNodeReducedness(t *testing.T) {
	m := NewManager()
	// low == high must short-circuit to that shared ref, never a new node.
	ref := m.MakeNode(0, RefTrue, RefTrue)
	if ref != RefTrue {
		t.Errorf("MakeNode(level, x, x) = %v, want %v (no redundant test node)", ref, RefTrue)
	}
}

func TestVarAndApplyAnd(t *testing.T) {
	m := NewManager()
	a := m.Var(0)
	b := m.Var(1)
	and := m.And(a, b)

	for _, av := range []bool{false, true} {
		for _, bv := range []bool{false, true} {
			got := evaluate(m, and, []bool{av, bv})
			want := av && bv
			if got != want {
				t.Errorf("And(A=%v,B=%v) = %v, want %v", av, bv, got, want)
			}
		}
	}
}

func TestApplyAllOperators(t *testing.T) {
	m := NewManager()
	a := m.Var(0)
	b := m.Var(1)

	ops := map[string]struct {
		ref  Ref
		want func(a, b bool) bool
	}{
		"and":   {m.And(a, b), func(a, b bool) bool { return a && b }},
		"or":    {m.Or(a, b), func(a, b bool) bool { return a || b }},
		"xor":   {m.Xor(a, b), func(a, b bool) bool { return a != b }},
		"imply": {m.Imply(a, b), func(a, b bool) bool { return !a || b }},
		"iff":   {m.Iff(a, b), func(a, b bool) bool { return a == b }},
		"nand":  {m.Nand(a, b), func(a, b bool) bool { return !(a && b) }},
		"nor":   {m.Nor(a, b), func(a, b bool) bool { return !(a || b) }},
	}
	for name, op := range ops {
		for _, av := range []bool{false, true} {
			for _, bv := range []bool{false, true} {
				got := evaluate(m, op.ref, []bool{av, bv})
				want := op.want(av, bv)
				if got != want {
					t.Errorf("%s(A=%v,B=%v) = %v, want %v", name, av, bv, got, want)
				}
			}
		}
	}
}

func TestNot(t *testing.T) {
	m := NewManager()
	a := m.Var(0)
	notA := m.Not(a)

	if evaluate(m, notA, []bool{true}) != false {
		t.Errorf("Not(A=true) = true, want false")
	}
	if evaluate(m, notA, []bool{false}) != true {
		t.Errorf("Not(A=false) = false, want true")
	}
	if m.Not(RefTrue) != RefFalse {
		t.Errorf("Not(RefTrue) != RefFalse")
	}
	if m.Not(RefFalse) != RefTrue {
		t.Errorf("Not(RefFalse) != RefTrue")
	}
}

func TestApplyCancellationIdentity(t *testing.T) {
	m := NewManager()
	a := m.Var(0)
	// A & ~A must reduce to the false terminal (an ROBDD is canonical).
	if got := m.And(a, m.Not(a)); got != RefFalse {
		t.Errorf("And(A, Not(A)) = %v, want RefFalse", got)
	}
	// A | ~A must reduce to the true terminal.
	if got := m.Or(a, m.Not(a)); got != RefTrue {
		t.Errorf("Or(A, Not(A)) = %v, want RefTrue", got)
	}
}

func TestNodeCountDedupesSharedSubtrees(t *testing.T) {
	m := NewManager()
	a := m.Var(0)
	b := m.Var(1)
	// (A & B) | (A & B) collapses to the same ref via the unique table,
	// so node count reflects one shared subtree, not two.
	lhs := m.And(a, b)
	rhs := m.And(a, b)
	if lhs != rhs {
		t.Fatalf("And(A,B) built twice produced distinct refs: %v vs %v", lhs, rhs)
	}
	combined := m.Or(lhs, rhs)
	if combined != lhs {
		t.Errorf("Or(x, x) = %v, want %v (idempotence via identity sharing)", combined, lhs)
	}
}

// evaluate walks ref for the given variable assignment, treating level i
// as reading inputs[i].
func evaluate(m *Manager, ref Ref, inputs []bool) bool {
	for !IsTerminal(ref) {
		if inputs[m.Level(ref)] {
			ref = m.High(ref)
		} else {
			ref = m.Low(ref)
		}
	}
	return ref == RefTrue
}
