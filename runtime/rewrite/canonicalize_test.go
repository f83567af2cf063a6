package rewrite

import (
	"testing"

	"github.com/aledsdavies/logexpr/core/ast"
)

func TestCanonicalizeCommutativity(t *testing.T) {
	ab := ast.Binary{Op: "&", Left: v("A"), Right: v("B")}
	ba := ast.Binary{Op: "&", Left: v("B"), Right: v("A")}
	if !ast.Equal(Canonicalize(ab), Canonicalize(ba)) {
		t.Errorf("Canonicalize(A & B) != Canonicalize(B & A)")
	}
}

func TestCanonicalizeDedupesAndOr(t *testing.T) {
	n := ast.Binary{Op: "|", Left: v("A"), Right: ast.Binary{Op: "|", Left: v("A"), Right: v("B")}}
	got := Canonicalize(n)
	// A | A | B should collapse duplicate A.
	want := Canonicalize(ast.Binary{Op: "|", Left: v("A"), Right: v("B")})
	if !ast.Equal(got, want) {
		t.Errorf("Canonicalize(A | A | B) = %v, want %v", got, want)
	}

	nAnd := ast.Binary{Op: "&", Left: v("A"), Right: ast.Binary{Op: "&", Left: v("A"), Right: v("B")}}
	gotAnd := Canonicalize(nAnd)
	wantAnd := Canonicalize(ast.Binary{Op: "&", Left: v("A"), Right: v("B")})
	if !ast.Equal(gotAnd, wantAnd) {
		t.Errorf("Canonicalize(A & A & B) = %v, want %v", gotAnd, wantAnd)
	}
}

func TestCanonicalizeXorCancelsPairwise(t *testing.T) {
	n := ast.Binary{Op: "^", Left: v("A"), Right: ast.Binary{Op: "^", Left: v("A"), Right: v("B")}}
	got := Canonicalize(n)
	want := Canonicalize(v("B"))
	if !ast.Equal(got, want) {
		t.Errorf("Canonicalize(A ^ A ^ B) = %v, want %v", got, want)
	}
}

func TestCanonicalizeEmptyTermsUsesNeutralValue(t *testing.T) {
	n := ast.Binary{Op: "^", Left: v("A"), Right: v("A")}
	got := Canonicalize(n)
	want := ast.Constant{Value: false}
	if !ast.Equal(got, want) {
		t.Errorf("Canonicalize(A ^ A) = %v, want %v", got, want)
	}
}

func TestCanonicalizeIsIdempotent(t *testing.T) {
	n := ast.Binary{
		Op:   "&",
		Left: ast.Binary{Op: "|", Left: v("C"), Right: v("A")},
		Right: v("B"),
	}
	once := Canonicalize(n)
	twice := Canonicalize(once)
	if !ast.Equal(once, twice) {
		t.Errorf("Canonicalize not idempotent: once=%v twice=%v", once, twice)
	}
}

func TestCanonicalizeNonCommutativeLeavesShape(t *testing.T) {
	n := ast.Binary{Op: "=>", Left: v("A"), Right: v("B")}
	got, ok := Canonicalize(n).(ast.Binary)
	if !ok || got.Op != "=>" {
		t.Fatalf("Canonicalize(A => B) = %v, want a top-level '=>'", got)
	}
	if !ast.Equal(got.Left, v("A")) || !ast.Equal(got.Right, v("B")) {
		t.Errorf("Canonicalize(A => B) reordered operands: %v", got)
	}
}
