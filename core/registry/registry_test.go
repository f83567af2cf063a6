package registry

import "testing"

func TestNewSeedsDefaultOperators(t *testing.T) {
	reg := New()

	for _, sym := range []string{SymNot, SymAnd, SymOr, SymXor, SymImply, SymIff, SymNand, SymNor} {
		if _, ok := reg.Lookup(sym); !ok {
			t.Errorf("Lookup(%q): want present, got absent", sym)
		}
	}
}

func TestCanonicalizeAliases(t *testing.T) {
	reg := New()

	cases := map[string]string{
		"&":   SymAnd,
		"AND": SymAnd,
		"and": SymAnd,
		"|":   SymOr,
		"OR":  SymOr,
		"~":   SymNot,
		"NOT": SymNot,
		"=>":  SymImply,
		"<=>": SymIff,
	}
	for alias, want := range cases {
		got, ok := reg.Canonicalize(alias)
		if !ok {
			t.Errorf("Canonicalize(%q): not found", alias)
			continue
		}
		if got != want {
			t.Errorf("Canonicalize(%q) = %q, want %q", alias, got, want)
		}
	}
}

func TestConstantValue(t *testing.T) {
	reg := New()

	cases := map[string]bool{
		"1":     true,
		"true":  true,
		"0":     false,
		"false": false,
	}
	for alias, want := range cases {
		got, ok := reg.ConstantValue(alias)
		if !ok {
			t.Fatalf("ConstantValue(%q): not found", alias)
		}
		if got != want {
			t.Errorf("ConstantValue(%q) = %v, want %v", alias, got, want)
		}
	}
}

func TestIsCommutative(t *testing.T) {
	commutative := []string{SymAnd, SymOr, SymXor, SymIff}
	for _, sym := range commutative {
		if !IsCommutative(sym) {
			t.Errorf("IsCommutative(%q) = false, want true", sym)
		}
	}
	if IsCommutative(SymImply) {
		t.Errorf("IsCommutative(%q) = true, want false", SymImply)
	}
}

func TestRegisterAliasInvalidatesCandidates(t *testing.T) {
	reg := New()

	before := reg.Candidates()
	for _, c := range before {
		if c == "therefore" {
			t.Fatalf("candidates already contain %q before registration", "therefore")
		}
	}

	reg.RegisterAlias("therefore", SymImply)

	after := reg.Candidates()
	found := false
	for _, c := range after {
		if c == "therefore" {
			found = true
		}
	}
	if !found {
		t.Errorf("candidates do not contain %q after RegisterAlias", "therefore")
	}
}

func TestCandidatesSortedLongestFirst(t *testing.T) {
	reg := New()
	candidates := reg.Candidates()
	for i := 1; i < len(candidates); i++ {
		if len(candidates[i-1]) < len(candidates[i]) {
			t.Fatalf("candidates not longest-first at %d: %q before %q", i, candidates[i-1], candidates[i])
		}
	}
}

func TestSuggestFindsCloseAlias(t *testing.T) {
	reg := New()
	reg.SetSuggestionParams(2, 3)

	suggestions := reg.Suggest("ad") // "and" with the middle letter dropped
	if len(suggestions) == 0 {
		t.Fatalf("Suggest(%q): got no suggestions", "ad")
	}
	found := false
	for _, s := range suggestions {
		if s == "and" {
			found = true
		}
	}
	if !found {
		t.Errorf("Suggest(%q) = %v, want to contain %q", "ad", suggestions, "and")
	}
}

func TestRegisterUnaryBinaryFactory(t *testing.T) {
	reg := New()

	reg.RegisterUnaryFactory(SymNot, func(operand any) any { return operand })
	if _, ok := reg.UnaryFactory(SymNot); !ok {
		t.Errorf("UnaryFactory(%q): not found after registration", SymNot)
	}

	reg.RegisterBinaryFactory(SymAnd, func(left, right any) any { return left })
	if _, ok := reg.BinaryFactory(SymAnd); !ok {
		t.Errorf("BinaryFactory(%q): not found after registration", SymAnd)
	}
}
