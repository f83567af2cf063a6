package rewrite

import (
	"testing"

	"github.com/aledsdavies/logexpr/core/ast"
)

func v(name string) ast.Node { return ast.Variable{Name: name} }

func TestNormalizeConstantFolding(t *testing.T) {
	n := ast.Binary{Op: "&", Left: ast.Constant{Value: true}, Right: ast.Constant{Value: false}}
	got := Normalize(n)
	want := ast.Constant{Value: false}
	if !ast.Equal(got, want) {
		t.Errorf("Normalize(1 & 0) = %v, want %v", got, want)
	}
}

func TestNormalizeDoubleNegation(t *testing.T) {
	n := ast.Unary{Op: "~", Operand: ast.Unary{Op: "~", Operand: v("A")}}
	got := Normalize(n)
	if !ast.Equal(got, v("A")) {
		t.Errorf("Normalize(~~A) = %v, want A", got)
	}
}

func TestNormalizeDeMorgan(t *testing.T) {
	n := ast.Unary{Op: "~", Operand: ast.Binary{Op: "&", Left: v("A"), Right: v("B")}}
	got := Normalize(n)
	want := ast.Binary{Op: "|", Left: ast.Unary{Op: "~", Operand: v("A")}, Right: ast.Unary{Op: "~", Operand: v("B")}}
	if !ast.Equal(got, want) {
		t.Errorf("Normalize(~(A & B)) = %v, want %v", got, want)
	}
}

func TestNormalizeIdentityAndAnnihilator(t *testing.T) {
	cases := []struct {
		name string
		n    ast.Node
		want ast.Node
	}{
		{"a & 1", ast.Binary{Op: "&", Left: v("A"), Right: ast.Constant{Value: true}}, v("A")},
		{"a & 0", ast.Binary{Op: "&", Left: v("A"), Right: ast.Constant{Value: false}}, ast.Constant{Value: false}},
		{"a | 0", ast.Binary{Op: "|", Left: v("A"), Right: ast.Constant{Value: false}}, v("A")},
		{"a | 1", ast.Binary{Op: "|", Left: v("A"), Right: ast.Constant{Value: true}}, ast.Constant{Value: true}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Normalize(c.n)
			if !ast.Equal(got, c.want) {
				t.Errorf("Normalize(%s) = %v, want %v", c.name, got, c.want)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := ast.Binary{
		Op:   "&",
		Left: ast.Unary{Op: "~", Operand: ast.Unary{Op: "~", Operand: v("A")}},
		Right: ast.Binary{Op: "|", Left: v("B"), Right: ast.Constant{Value: false}},
	}
	once := Normalize(n)
	twice := Normalize(once)
	if !ast.Equal(once, twice) {
		t.Errorf("Normalize not idempotent: once=%v twice=%v", once, twice)
	}
}
