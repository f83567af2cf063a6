package parser

import "testing"

// Fuzzing targets the invariants the teacher's own fuzz suite protects for
// its parser: determinism (same input always yields the same result) and
// robustness (the public entry point never panics, even on garbage).

func addParserSeedCorpus(f *testing.F) {
	f.Add("")
	f.Add("A & B")
	f.Add("A | B & C")
	f.Add("~A")
	f.Add("(A) & (B")
	f.Add(")A(")
	f.Add("A <=> B => C")
	f.Add("A AND B OR NOT C")
	f.Add("A $ B")
	f.Add("& A")
	f.Add("A &")
}

func FuzzParseDeterminism(f *testing.F) {
	addParserSeedCorpus(f)
	f.Fuzz(func(t *testing.T, input string) {
		reg := newRegistry()
		n1, err1 := TryParse(reg, input)
		n2, err2 := TryParse(reg, input)

		if (err1 == nil) != (err2 == nil) {
			t.Fatalf("non-deterministic error presence for %q: %v vs %v", input, err1, err2)
		}
		if err1 == nil {
			if n1.String() != n2.String() {
				t.Fatalf("non-deterministic parse for %q: %v vs %v", input, n1, n2)
			}
		}
	})
}

func FuzzParseNoPanic(f *testing.F) {
	addParserSeedCorpus(f)
	f.Fuzz(func(t *testing.T, input string) {
		reg := newRegistry()
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("TryParse panicked on %q: %v", input, r)
			}
		}()
		_, _ = TryParse(reg, input)
	})
}
