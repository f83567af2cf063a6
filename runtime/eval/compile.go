package eval

import (
	"github.com/aledsdavies/logexpr/core/ast"
	"github.com/aledsdavies/logexpr/core/evalerr"
)

// Delegate is a compiled evaluator: a closure tree whose leaves read
// straight from inputs[index], with no further AST walking or type
// switching at call time (spec §4.8, "Compiled path").
type Delegate func(inputs []bool) bool

// Compile translates n (already indexed) into a Delegate. shortCircuit
// selects native Go `&&`/`||` for `&`/`|` when true, and strict eager
// evaluation of both operands when false — a codegen choice exposed as
// config (spec §6, UseShortCircuiting). An unrecognized operator is only
// reachable from a malformed AST built outside the parser and fails here
// rather than at call time, since Compile already has to walk the tree.
func Compile(n ast.Node, shortCircuit bool) (Delegate, error) {
	switch t := n.(type) {
	case ast.Constant:
		v := t.Value
		return func([]bool) bool { return v }, nil

	case ast.Variable:
		idx := t.Index
		return func(inputs []bool) bool { return inputs[idx] }, nil

	case ast.Unary:
		if t.Op != "~" {
			return nil, evalerr.NewUnknownOperator(t.Op)
		}
		operand, err := Compile(t.Operand, shortCircuit)
		if err != nil {
			return nil, err
		}
		return func(inputs []bool) bool { return !operand(inputs) }, nil

	case ast.Binary:
		return compileBinary(t, shortCircuit)

	default:
		return nil, evalerr.NewUnknownOperator("<unknown node>")
	}
}

func compileBinary(b ast.Binary, shortCircuit bool) (Delegate, error) {
	left, err := Compile(b.Left, shortCircuit)
	if err != nil {
		return nil, err
	}
	right, err := Compile(b.Right, shortCircuit)
	if err != nil {
		return nil, err
	}

	switch b.Op {
	case "&":
		if shortCircuit {
			return func(inputs []bool) bool { return left(inputs) && right(inputs) }, nil
		}
		return func(inputs []bool) bool { l, r := left(inputs), right(inputs); return l && r }, nil

	case "|":
		if shortCircuit {
			return func(inputs []bool) bool { return left(inputs) || right(inputs) }, nil
		}
		return func(inputs []bool) bool { l, r := left(inputs), right(inputs); return l || r }, nil

	case "^":
		return func(inputs []bool) bool { return left(inputs) != right(inputs) }, nil

	case "=>":
		if shortCircuit {
			return func(inputs []bool) bool { return !left(inputs) || right(inputs) }, nil
		}
		return func(inputs []bool) bool { l, r := left(inputs), right(inputs); return !l || r }, nil

	case "<=>":
		return func(inputs []bool) bool {
			l, r := left(inputs), right(inputs)
			return (!l && !r) || (l && r)
		}, nil

	case "!&":
		if shortCircuit {
			return func(inputs []bool) bool { return !(left(inputs) && right(inputs)) }, nil
		}
		return func(inputs []bool) bool { l, r := left(inputs), right(inputs); return !(l && r) }, nil

	case "!|":
		if shortCircuit {
			return func(inputs []bool) bool { return !(left(inputs) || right(inputs)) }, nil
		}
		return func(inputs []bool) bool { l, r := left(inputs), right(inputs); return !(l || r) }, nil

	default:
		return nil, evalerr.NewUnknownOperator(b.Op)
	}
}
