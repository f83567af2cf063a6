package rewrite

import (
	"sort"

	"github.com/aledsdavies/logexpr/core/ast"
	"github.com/aledsdavies/logexpr/core/registry"
)

// Canonicalize rewrites commutative operators {"&","|","^","<=>"} into a
// deterministic shape (spec §4.4): nested same-operator subtrees flatten
// into a list, duplicates are removed by canonical-string key, the list is
// sorted by that key, and a left-leaning tree is rebuilt. For "^" and
// "<=>", duplicate terms cancel pairwise mod 2.
func Canonicalize(n ast.Node) ast.Node {
	switch t := n.(type) {
	case ast.Constant, ast.Variable:
		return n
	case ast.Unary:
		return ast.Unary{Op: t.Op, Operand: Canonicalize(t.Operand)}
	case ast.Binary:
		return canonicalizeBinary(t)
	default:
		return n
	}
}

func canonicalizeBinary(b ast.Binary) ast.Node {
	// "!&" and "!|" commute but are neither associative nor idempotent, so
	// flattening or deduplicating them would change the function.
	if !registry.IsCommutative(b.Op) || b.Op == registry.SymNand || b.Op == registry.SymNor {
		return ast.Binary{Op: b.Op, Left: Canonicalize(b.Left), Right: Canonicalize(b.Right)}
	}

	terms := flatten(b.Op, b)
	for i, t := range terms {
		terms[i] = Canonicalize(t)
	}

	switch b.Op {
	case "^", "<=>":
		terms = cancelPairwise(terms)
	default:
		terms = dedupe(terms)
	}

	sort.Slice(terms, func(i, j int) bool {
		return ast.CanonicalString(terms[i]) < ast.CanonicalString(terms[j])
	})

	if len(terms) == 0 {
		return ast.Constant{Value: neutralValue(b.Op)}
	}
	return rebuildLeftLeaning(b.Op, terms)
}

// flatten collects every operand of a nested run of the same operator op,
// recursing into children that are themselves op-applications.
func flatten(op string, n ast.Node) []ast.Node {
	bin, ok := n.(ast.Binary)
	if !ok || bin.Op != op {
		return []ast.Node{n}
	}
	var out []ast.Node
	out = append(out, flatten(op, bin.Left)...)
	out = append(out, flatten(op, bin.Right)...)
	return out
}

func dedupe(terms []ast.Node) []ast.Node {
	seen := make(map[string]bool, len(terms))
	var out []ast.Node
	for _, t := range terms {
		key := ast.CanonicalString(t)
		if !seen[key] {
			seen[key] = true
			out = append(out, t)
		}
	}
	return out
}

// cancelPairwise implements mod-2 cancellation for "^"/"<=>": a term
// occurring an even number of times drops out entirely, an odd number of
// times is kept once.
func cancelPairwise(terms []ast.Node) []ast.Node {
	counts := make(map[string]int, len(terms))
	reps := make(map[string]ast.Node, len(terms))
	var order []string
	for _, t := range terms {
		key := ast.CanonicalString(t)
		if counts[key] == 0 {
			order = append(order, key)
			reps[key] = t
		}
		counts[key]++
	}
	var out []ast.Node
	for _, key := range order {
		if counts[key]%2 == 1 {
			out = append(out, reps[key])
		}
	}
	return out
}

func neutralValue(op string) bool {
	switch op {
	case "|", "^":
		return false
	case "&", "<=>":
		return true
	default:
		return false
	}
}

func rebuildLeftLeaning(op string, terms []ast.Node) ast.Node {
	acc := terms[0]
	for _, t := range terms[1:] {
		acc = ast.Binary{Op: op, Left: acc, Right: t}
	}
	return acc
}
