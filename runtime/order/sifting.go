package order

import (
	"github.com/aledsdavies/logexpr/core/ast"
	"github.com/aledsdavies/logexpr/runtime/bdd"
	"github.com/aledsdavies/logexpr/runtime/rewrite"
)

// Sifting builds a BDD against currentVars, runs the level-swap based
// reordering heuristic of runtime/bdd, and returns the resulting variable
// order (spec §4.5, §4.7).
var Sifting Strategy = StrategyFunc(siftOrder)

func siftOrder(root ast.Node, currentVars []string) []string {
	indexed := rewrite.VariableIndex(root, currentVars)
	m := bdd.NewManager()
	ref, err := m.Build(indexed)
	if err != nil {
		return append([]string(nil), currentVars...)
	}

	_, permutation := m.Sift(ref, len(currentVars))
	out := make([]string, len(currentVars))
	for level, originalVar := range permutation {
		out[level] = currentVars[originalVar]
	}
	return out
}

// buildAndCount is a small helper used by Auto: build root against a given
// variable order in a fresh manager and report the resulting BDD's node
// count, used to score candidate orderings.
func buildAndCount(root ast.Node, vars []string) (int, error) {
	indexed := rewrite.VariableIndex(root, vars)
	m := bdd.NewManager()
	ref, err := m.Build(indexed)
	if err != nil {
		return 0, err
	}
	return m.NodeCount(ref), nil
}
