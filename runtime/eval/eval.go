// Package eval implements the evaluator of spec §4.8: a tree-walk
// reference path plus a compiled path with a delegate cache, short-circuit
// configurability, and the length/missing-key input validation described
// there.
package eval

import (
	"github.com/aledsdavies/logexpr/core/ast"
	"github.com/aledsdavies/logexpr/core/evalerr"
)

// TreeWalk evaluates n directly by recursing over the AST, reading each
// Variable's value from inputs by its assigned index (spec §4.8,
// "Tree-walk"). n must already be indexed (runtime/rewrite.VariableIndex).
// It is the fallback path and is used for one-shot or ReadOnly-view
// inputs where compiling would not be amortized.
//
// An error is only possible here for an operator symbol that did not come
// through the parser (spec §7, "Evaluation failures") — any AST built by
// runtime/parser or core/ast/factories.go always carries recognized
// operators.
func TreeWalk(n ast.Node, inputs []bool) (bool, error) {
	switch t := n.(type) {
	case ast.Constant:
		return t.Value, nil
	case ast.Variable:
		return inputs[t.Index], nil
	case ast.Unary:
		if t.Op != "~" {
			return false, evalerr.NewUnknownOperator(t.Op)
		}
		v, err := TreeWalk(t.Operand, inputs)
		if err != nil {
			return false, err
		}
		return !v, nil
	case ast.Binary:
		return evalBinaryTreeWalk(t, inputs)
	default:
		return false, evalerr.NewUnknownOperator("<unknown node>")
	}
}

func evalBinaryTreeWalk(b ast.Binary, inputs []bool) (bool, error) {
	l, err := TreeWalk(b.Left, inputs)
	if err != nil {
		return false, err
	}
	r, err := TreeWalk(b.Right, inputs)
	if err != nil {
		return false, err
	}
	switch b.Op {
	case "&":
		return l && r, nil
	case "|":
		return l || r, nil
	case "^":
		return l != r, nil
	case "=>":
		return !l || r, nil
	case "<=>":
		return l == r, nil
	case "!&":
		return !(l && r), nil
	case "!|":
		return !(l || r), nil
	default:
		return false, evalerr.NewUnknownOperator(b.Op)
	}
}
