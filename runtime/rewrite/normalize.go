// Package rewrite holds the AST rewriters of spec §4.4: the normalizer,
// canonicalizer, expander, and variable indexer. Each is a pure function
// from one tree to a new tree; nodes are immutable, so rewriters are free
// to share subtrees across results (spec §9).
package rewrite

import "github.com/aledsdavies/logexpr/core/ast"

// Normalize performs a bottom-up rewrite: constant folding, double-negation
// elimination, De Morgan push-down, and identity/annihilator laws (spec
// §4.4). It is idempotent: Normalize(Normalize(n)) is structurally equal to
// Normalize(n).
func Normalize(n ast.Node) ast.Node {
	switch t := n.(type) {
	case ast.Constant:
		return t
	case ast.Variable:
		return t
	case ast.Unary:
		return normalizeUnary(t)
	case ast.Binary:
		return normalizeBinary(t)
	default:
		return n
	}
}

func normalizeUnary(u ast.Unary) ast.Node {
	operand := Normalize(u.Operand)

	if u.Op != "~" {
		return ast.Unary{Op: u.Op, Operand: operand}
	}

	// Constant folding.
	if c, ok := operand.(ast.Constant); ok {
		return ast.Constant{Value: !c.Value}
	}

	// Double-negation elimination: ~~x -> x.
	if inner, ok := operand.(ast.Unary); ok && inner.Op == "~" {
		return inner.Operand
	}

	// De Morgan push-down: ~(a & b) -> ~a | ~b, ~(a | b) -> ~a & ~b.
	if bin, ok := operand.(ast.Binary); ok {
		switch bin.Op {
		case "&":
			return Normalize(ast.Binary{Op: "|", Left: ast.Unary{Op: "~", Operand: bin.Left}, Right: ast.Unary{Op: "~", Operand: bin.Right}})
		case "|":
			return Normalize(ast.Binary{Op: "&", Left: ast.Unary{Op: "~", Operand: bin.Left}, Right: ast.Unary{Op: "~", Operand: bin.Right}})
		}
	}

	return ast.Unary{Op: "~", Operand: operand}
}

func normalizeBinary(b ast.Binary) ast.Node {
	left := Normalize(b.Left)
	right := Normalize(b.Right)

	lc, lok := left.(ast.Constant)
	rc, rok := right.(ast.Constant)

	if lok && rok {
		return ast.Constant{Value: evalConst(b.Op, lc.Value, rc.Value)}
	}

	switch b.Op {
	case "&":
		if lok {
			if !lc.Value {
				return ast.Constant{Value: false}
			}
			return right // a & 1 = a (left is the 1)
		}
		if rok {
			if !rc.Value {
				return ast.Constant{Value: false}
			}
			return left
		}
	case "|":
		if lok {
			if lc.Value {
				return ast.Constant{Value: true}
			}
			return right // a | 0 = a
		}
		if rok {
			if rc.Value {
				return ast.Constant{Value: true}
			}
			return left
		}
	}

	return ast.Binary{Op: b.Op, Left: left, Right: right}
}

func evalConst(op string, l, r bool) bool {
	switch op {
	case "&":
		return l && r
	case "|":
		return l || r
	case "^":
		return l != r
	case "=>":
		return !l || r
	case "<=>":
		return l == r
	case "!&":
		return !(l && r)
	case "!|":
		return !(l || r)
	default:
		return false
	}
}
