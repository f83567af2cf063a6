package bdd

import "github.com/aledsdavies/logexpr/core/ast"

// Build traverses an indexed AST (every Variable must already carry its
// index, per spec §3's VariableIndex invariant) and produces a BDD node
// per AST node (spec §4.5 "Build"): variables become makeNode(level, ⊥, ⊤),
// unary negation goes through Not, and binary operators go through the
// matching Apply specialization.
//
// equivalentTo(a, b) (spec §4.5's "Build contract") holds iff Build(m, a)
// == Build(m, b) when both are built against the same Manager and the
// same variable-index map — an immediate consequence of the unique table's
// canonical-sharing guarantee.
func (m *Manager) Build(n ast.Node) (Ref, error) {
	switch t := n.(type) {
	case ast.Constant:
		if t.Value {
			return RefTrue, nil
		}
		return RefFalse, nil

	case ast.Variable:
		if t.Index < 0 {
			return RefFalse, &BuildError{Reason: "variable " + t.Name + " has no assigned index"}
		}
		return m.Var(t.Index), nil

	case ast.Unary:
		if t.Op != "~" {
			return RefFalse, &BuildError{Reason: "unknown unary operator " + t.Op}
		}
		operand, err := m.Build(t.Operand)
		if err != nil {
			return RefFalse, err
		}
		return m.Not(operand), nil

	case ast.Binary:
		left, err := m.Build(t.Left)
		if err != nil {
			return RefFalse, err
		}
		right, err := m.Build(t.Right)
		if err != nil {
			return RefFalse, err
		}
		switch t.Op {
		case "&":
			return m.And(left, right), nil
		case "|":
			return m.Or(left, right), nil
		case "^":
			return m.Xor(left, right), nil
		case "=>":
			return m.Imply(left, right), nil
		case "<=>":
			return m.Iff(left, right), nil
		case "!&":
			return m.Nand(left, right), nil
		case "!|":
			return m.Nor(left, right), nil
		default:
			return RefFalse, &BuildError{Reason: "unknown binary operator " + t.Op}
		}

	default:
		return RefFalse, &BuildError{Reason: "unknown AST node"}
	}
}

// BuildError reports a malformed AST reaching Build — only reachable
// through external construction bypassing the parser (spec §7).
type BuildError struct {
	Reason string
}

func (e *BuildError) Error() string { return "bdd: " + e.Reason }
