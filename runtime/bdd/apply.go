package bdd

// Combinator is the terminal-level truth function Apply generalizes over
// (spec §4.5): given both operands' terminal values it returns the result.
type Combinator func(a, b bool) bool

// Apply implements Bryant's algorithm generalized to an arbitrary
// combinator (spec §4.5):
//  1. both terminal -> combinator result as a terminal
//  2. cache hit -> cached result
//  3. cofactor at the lower of the two variable levels
//  4. recurse on each branch, make a node, cache and return
func (m *Manager) Apply(opName string, comb Combinator, u, v Ref) Ref {
	if IsTerminal(u) && IsTerminal(v) {
		if comb(u == RefTrue, v == RefTrue) {
			return RefTrue
		}
		return RefFalse
	}

	key := applyKey{op: opName, left: u, right: v}
	if cached, ok := m.applyC[key]; ok {
		return cached
	}

	x := min(m.Level(u), m.Level(v))
	uLow, uHigh := m.cofactor(u, x)
	vLow, vHigh := m.cofactor(v, x)

	low := m.Apply(opName, comb, uLow, vLow)
	high := m.Apply(opName, comb, uHigh, vHigh)
	result := m.MakeNode(x, low, high)

	m.applyC[key] = result
	return result
}

// cofactor returns (low, high) of ref with respect to variable level x: a
// node whose own level is x contributes its real children, anything else
// (terminal, or a node at a level strictly above x) cofactors to itself on
// both branches (spec §4.5 step 3).
func (m *Manager) cofactor(ref Ref, x int) (low, high Ref) {
	if IsTerminal(ref) || m.Level(ref) > x {
		return ref, ref
	}
	return m.Low(ref), m.High(ref)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Not, And, Or, Xor, Imply are the exported binary/unary operations (spec
// §4.5). Not is the unary specialization: the same cache-lookup / recurse
// / make-node / cache shape as Apply, but over one operand, using refNone
// as the cache key's sentinel right-hand side (spec §4.5 "for unary
// operations the right id is a sentinel").
func (m *Manager) Not(u Ref) Ref {
	if u == RefFalse {
		return RefTrue
	}
	if u == RefTrue {
		return RefFalse
	}

	key := applyKey{op: "not", left: u, right: refNone}
	if cached, ok := m.applyC[key]; ok {
		return cached
	}

	result := m.MakeNode(m.Level(u), m.Not(m.Low(u)), m.Not(m.High(u)))
	m.applyC[key] = result
	return result
}

func (m *Manager) And(u, v Ref) Ref {
	return m.Apply("and", func(a, b bool) bool { return a && b }, u, v)
}

func (m *Manager) Or(u, v Ref) Ref {
	return m.Apply("or", func(a, b bool) bool { return a || b }, u, v)
}

func (m *Manager) Xor(u, v Ref) Ref {
	return m.Apply("xor", func(a, b bool) bool { return a != b }, u, v)
}

func (m *Manager) Imply(u, v Ref) Ref {
	return m.Apply("imply", func(a, b bool) bool { return !a || b }, u, v)
}

func (m *Manager) Iff(u, v Ref) Ref {
	return m.Apply("iff", func(a, b bool) bool { return a == b }, u, v)
}

func (m *Manager) Nand(u, v Ref) Ref {
	return m.Apply("nand", func(a, b bool) bool { return !(a && b) }, u, v)
}

func (m *Manager) Nor(u, v Ref) Ref {
	return m.Apply("nor", func(a, b bool) bool { return !(a || b) }, u, v)
}
