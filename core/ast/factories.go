package ast

import "github.com/aledsdavies/logexpr/core/registry"

// RegisterFactories installs the AST node builders for every canonical
// operator symbol into reg, so parsers can build nodes purely by looking
// the operator up in the registry rather than switching on the symbol
// themselves (spec §4.1's unary-factory-map / binary-factory-map).
func RegisterFactories(reg *registry.Registry) {
	reg.RegisterUnaryFactory(registry.SymNot, func(operand any) any {
		return Unary{Op: registry.SymNot, Operand: operand.(Node)}
	})

	for _, sym := range []string{
		registry.SymAnd, registry.SymOr, registry.SymXor,
		registry.SymImply, registry.SymIff, registry.SymNand, registry.SymNor,
	} {
		sym := sym
		reg.RegisterBinaryFactory(sym, func(left, right any) any {
			return Binary{Op: sym, Left: left.(Node), Right: right.(Node)}
		})
	}
}

// MakeUnary looks up and applies the registered unary factory for symbol.
func MakeUnary(reg *registry.Registry, symbol string, operand Node) (Node, bool) {
	fn, ok := reg.UnaryFactory(symbol)
	if !ok {
		return nil, false
	}
	return fn(operand).(Node), true
}

// MakeBinary looks up and applies the registered binary factory for symbol.
func MakeBinary(reg *registry.Registry, symbol string, left, right Node) (Node, bool) {
	fn, ok := reg.BinaryFactory(symbol)
	if !ok {
		return nil, false
	}
	return fn(left, right).(Node), true
}
