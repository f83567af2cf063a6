package rewrite

import "github.com/aledsdavies/logexpr/core/ast"

// VariableIndex rewrites every Variable node in n to carry its offset in
// order (spec §4.4, §3 invariant). Every variable name occurring in n must
// be present in order; callers that build order from ast.Variables(n)
// first always satisfy this.
func VariableIndex(n ast.Node, order []string) ast.Node {
	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name] = i
	}
	return indexVisit(n, pos)
}

func indexVisit(n ast.Node, pos map[string]int) ast.Node {
	switch t := n.(type) {
	case ast.Constant:
		return t
	case ast.Variable:
		idx, ok := pos[t.Name]
		if !ok {
			// Name absent from the order vector: spec treats this as a
			// precondition violation upstream, but leaving the index
			// unresolved (-1) here keeps VariableIndex itself total.
			return ast.Variable{Name: t.Name, Index: -1}
		}
		return ast.Variable{Name: t.Name, Index: idx}
	case ast.Unary:
		return ast.Unary{Op: t.Op, Operand: indexVisit(t.Operand, pos)}
	case ast.Binary:
		return ast.Binary{Op: t.Op, Left: indexVisit(t.Left, pos), Right: indexVisit(t.Right, pos)}
	default:
		return n
	}
}
