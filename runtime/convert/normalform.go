package convert

import (
	"github.com/aledsdavies/logexpr/core/ast"
	"github.com/aledsdavies/logexpr/runtime/bdd"
	"github.com/aledsdavies/logexpr/runtime/rewrite"
)

// ToDnf walks every root-to-⊤ path of root and rebuilds it as a
// disjunction of conjunctions of literals — a true DNF derived from the
// BDD cover, resolving spec §9's ToDnf/ToCnf open question via option (b).
func ToDnf(m *bdd.Manager, root bdd.Ref, varNames []string) ast.Node {
	if root == bdd.RefFalse {
		return ast.Constant{Value: false}
	}
	if root == bdd.RefTrue {
		return ast.Constant{Value: true}
	}

	var clauses []ast.Node
	var path []ast.Node
	var walk func(bdd.Ref)
	walk = func(ref bdd.Ref) {
		if ref == bdd.RefFalse {
			return
		}
		if ref == bdd.RefTrue {
			clauses = append(clauses, conjunction(path))
			return
		}
		level := m.Level(ref)
		v := ast.Variable{Name: varNames[level], Index: level}

		path = append(path, ast.Unary{Op: "~", Operand: v})
		walk(m.Low(ref))
		path = path[:len(path)-1]

		path = append(path, v)
		walk(m.High(ref))
		path = path[:len(path)-1]
	}
	walk(root)

	return rewrite.Normalize(disjunction(clauses))
}

// ToCnf walks every root-to-⊥ path of root and rebuilds it as a
// conjunction of disjunctions of negated-path literals — the dual
// construction of ToDnf.
func ToCnf(m *bdd.Manager, root bdd.Ref, varNames []string) ast.Node {
	if root == bdd.RefFalse {
		return ast.Constant{Value: false}
	}
	if root == bdd.RefTrue {
		return ast.Constant{Value: true}
	}

	var clauses []ast.Node
	var path []ast.Node
	var walk func(bdd.Ref)
	walk = func(ref bdd.Ref) {
		if ref == bdd.RefTrue {
			return
		}
		if ref == bdd.RefFalse {
			clauses = append(clauses, disjunction(negateAll(path)))
			return
		}
		level := m.Level(ref)
		v := ast.Variable{Name: varNames[level], Index: level}

		path = append(path, ast.Unary{Op: "~", Operand: v})
		walk(m.Low(ref))
		path = path[:len(path)-1]

		path = append(path, v)
		walk(m.High(ref))
		path = path[:len(path)-1]
	}
	walk(root)

	return rewrite.Normalize(conjunction(clauses))
}

func conjunction(terms []ast.Node) ast.Node {
	if len(terms) == 0 {
		return ast.Constant{Value: true}
	}
	acc := terms[0]
	for _, t := range terms[1:] {
		acc = ast.Binary{Op: "&", Left: acc, Right: t}
	}
	return acc
}

func disjunction(terms []ast.Node) ast.Node {
	if len(terms) == 0 {
		return ast.Constant{Value: false}
	}
	acc := terms[0]
	for _, t := range terms[1:] {
		acc = ast.Binary{Op: "|", Left: acc, Right: t}
	}
	return acc
}

// negateAll negates each literal on a root-to-⊥ path, since a falsifying
// assignment for the path yields a clause excluding exactly that
// assignment: the CNF clause is the disjunction of the complements.
func negateAll(literals []ast.Node) []ast.Node {
	out := make([]ast.Node, len(literals))
	for i, lit := range literals {
		if u, ok := lit.(ast.Unary); ok && u.Op == "~" {
			out[i] = u.Operand
		} else {
			out[i] = ast.Unary{Op: "~", Operand: lit}
		}
	}
	return out
}
