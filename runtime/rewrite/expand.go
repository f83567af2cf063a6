package rewrite

import "github.com/aledsdavies/logexpr/core/ast"

// Expand applies De Morgan to negated binary children and distributes "&"
// over "|" (spec §4.4). runtime/convert.ToAST calls it to flatten the
// nested "v & (X | Y)" shapes Shannon expansion produces when
// reconstituting a boolean expression from a BDD cover; it is not itself a
// normal form and is not idempotent in general.
func Expand(n ast.Node) ast.Node {
	switch t := n.(type) {
	case ast.Constant, ast.Variable:
		return n
	case ast.Unary:
		return expandUnary(t)
	case ast.Binary:
		return expandBinary(t)
	default:
		return n
	}
}

func expandUnary(u ast.Unary) ast.Node {
	operand := Expand(u.Operand)
	if u.Op != "~" {
		return ast.Unary{Op: u.Op, Operand: operand}
	}
	if bin, ok := operand.(ast.Binary); ok {
		switch bin.Op {
		case "&":
			return Expand(ast.Binary{Op: "|", Left: ast.Unary{Op: "~", Operand: bin.Left}, Right: ast.Unary{Op: "~", Operand: bin.Right}})
		case "|":
			return Expand(ast.Binary{Op: "&", Left: ast.Unary{Op: "~", Operand: bin.Left}, Right: ast.Unary{Op: "~", Operand: bin.Right}})
		}
	}
	return ast.Unary{Op: "~", Operand: operand}
}

func expandBinary(b ast.Binary) ast.Node {
	left := Expand(b.Left)
	right := Expand(b.Right)

	if b.Op == "&" {
		// a & (b | c) -> (a & b) | (a & c)
		if r, ok := right.(ast.Binary); ok && r.Op == "|" {
			return Expand(ast.Binary{
				Op:   "|",
				Left: ast.Binary{Op: "&", Left: left, Right: r.Left},
				Right: ast.Binary{Op: "&", Left: left, Right: r.Right},
			})
		}
		// (a | b) & c -> (a & c) | (b & c)
		if l, ok := left.(ast.Binary); ok && l.Op == "|" {
			return Expand(ast.Binary{
				Op:   "|",
				Left: ast.Binary{Op: "&", Left: l.Left, Right: right},
				Right: ast.Binary{Op: "&", Left: l.Right, Right: right},
			})
		}
	}

	return ast.Binary{Op: b.Op, Left: left, Right: right}
}
