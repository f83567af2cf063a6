package ast

import (
	"testing"

	"github.com/aledsdavies/logexpr/core/registry"
)

func TestRegisterFactoriesBuildsExpectedNodes(t *testing.T) {
	reg := registry.New()
	RegisterFactories(reg)

	a := Variable{Name: "A"}
	b := Variable{Name: "B"}

	n, ok := MakeUnary(reg, registry.SymNot, a)
	if !ok {
		t.Fatalf("MakeUnary(%q): factory not found", registry.SymNot)
	}
	want := Unary{Op: registry.SymNot, Operand: a}
	if !Equal(n, want) {
		t.Errorf("MakeUnary(%q) = %v, want %v", registry.SymNot, n, want)
	}

	for _, sym := range []string{
		registry.SymAnd, registry.SymOr, registry.SymXor,
		registry.SymImply, registry.SymIff, registry.SymNand, registry.SymNor,
	} {
		got, ok := MakeBinary(reg, sym, a, b)
		if !ok {
			t.Fatalf("MakeBinary(%q): factory not found", sym)
		}
		wantBin := Binary{Op: sym, Left: a, Right: b}
		if !Equal(got, wantBin) {
			t.Errorf("MakeBinary(%q) = %v, want %v", sym, got, wantBin)
		}
	}
}

func TestMakeUnaryUnregisteredSymbol(t *testing.T) {
	reg := registry.New()
	if _, ok := MakeUnary(reg, "?", Variable{Name: "A"}); ok {
		t.Errorf("MakeUnary(%q): want not-ok for unregistered symbol", "?")
	}
}
