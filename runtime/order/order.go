// Package order implements the variable-ordering strategies of spec §4.7:
// alphabetical, frequency, random, sifting, and auto, plus a composite
// chain. Each strategy implements order(astRoot, currentVars) -> newVars.
package order

import (
	"math/rand"
	"sort"

	"github.com/aledsdavies/logexpr/core/ast"
)

// Strategy reorders currentVars for root, producing a new ordering vector
// containing exactly the same names.
type Strategy interface {
	Order(root ast.Node, currentVars []string) []string
}

// StrategyFunc adapts a plain function to the Strategy interface.
type StrategyFunc func(root ast.Node, currentVars []string) []string

func (f StrategyFunc) Order(root ast.Node, currentVars []string) []string {
	return f(root, currentVars)
}

// Alphabetical orders variables lexicographically by name (spec §4.7
// default strategy).
var Alphabetical Strategy = StrategyFunc(func(_ ast.Node, currentVars []string) []string {
	out := append([]string(nil), currentVars...)
	sort.Strings(out)
	return out
})

// Frequency orders variables by descending occurrence count in root, ties
// broken alphabetically.
var Frequency Strategy = StrategyFunc(func(root ast.Node, currentVars []string) []string {
	counts := ast.Occurrences(root)
	out := append([]string(nil), currentVars...)
	sort.Slice(out, func(i, j int) bool {
		ci, cj := counts[out[i]], counts[out[j]]
		if ci != cj {
			return ci > cj
		}
		return out[i] < out[j]
	})
	return out
})

// Random shuffles currentVars. The seed is always deterministic, including
// zero — callers wanting a fresh shuffle per run should derive their own
// seed (e.g. from time.Now().UnixNano()) before calling Random (spec §4.7).
func Random(seed int64) Strategy {
	return StrategyFunc(func(_ ast.Node, currentVars []string) []string {
		out := append([]string(nil), currentVars...)
		r := rand.New(rand.NewSource(seed))
		r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	})
}

// Composite chains strategies in sequence, each consuming the previous
// result (spec §4.7).
func Composite(strategies ...Strategy) Strategy {
	return StrategyFunc(func(root ast.Node, currentVars []string) []string {
		vars := currentVars
		for _, s := range strategies {
			vars = s.Order(root, vars)
		}
		return vars
	})
}
