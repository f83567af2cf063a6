// Package convert implements the BDD -> AST converter of spec §4.6: a
// memoized Shannon expansion that reconstitutes a boolean expression from
// a ROBDD, simplifying trivial conjunctions as it goes.
package convert

import (
	"github.com/aledsdavies/logexpr/core/ast"
	"github.com/aledsdavies/logexpr/runtime/bdd"
	"github.com/aledsdavies/logexpr/runtime/rewrite"
)

// ToAST converts root (built against m with variable names resolved via
// varNames, indexed by level) into an AST, Shannon-expanding each
// non-terminal node into (v & C(high)) | (~v & C(low)) with the
// simplifications from spec §4.6, then re-normalizing the result.
func ToAST(m *bdd.Manager, root bdd.Ref, varNames []string) ast.Node {
	memo := make(map[bdd.Ref]ast.Node)
	tree := shannon(m, root, varNames, memo)
	// shannon nests conjunctions around disjunctive subtrees (v & (X | Y))
	// whenever a variable's high/low cofactors both branch further down;
	// Expand distributes those out into flat terms before the final
	// simplification pass folds constants and drops redundant literals.
	return rewrite.Normalize(rewrite.Expand(tree))
}

func shannon(m *bdd.Manager, ref bdd.Ref, varNames []string, memo map[bdd.Ref]ast.Node) ast.Node {
	if ref == bdd.RefFalse {
		return ast.Constant{Value: false}
	}
	if ref == bdd.RefTrue {
		return ast.Constant{Value: true}
	}
	if cached, ok := memo[ref]; ok {
		return cached
	}

	level := m.Level(ref)
	v := ast.Variable{Name: varNames[level], Index: level}

	highTerm := andTerm(v, shannon(m, m.High(ref), varNames, memo))
	lowTerm := andTerm(ast.Unary{Op: "~", Operand: v}, shannon(m, m.Low(ref), varNames, memo))

	result := orTerm(highTerm, lowTerm)
	memo[ref] = result
	return result
}

// andTerm builds `lit & C`, applying the simplifications
// `v & 1 -> v`, `v & 0 -> ⊥` (spec §4.6).
func andTerm(lit ast.Node, c ast.Node) ast.Node {
	if constNode, ok := c.(ast.Constant); ok {
		if constNode.Value {
			return lit
		}
		return ast.Constant{Value: false}
	}
	return ast.Binary{Op: "&", Left: lit, Right: c}
}

// orTerm builds `a | b`, dropping a dropped (false) term: `a | ⊥ -> a`.
func orTerm(a, b ast.Node) ast.Node {
	af, aFalse := a.(ast.Constant)
	bf, bFalse := b.(ast.Constant)
	if aFalse && !af.Value {
		return b
	}
	if bFalse && !bf.Value {
		return a
	}
	return ast.Binary{Op: "|", Left: a, Right: b}
}
