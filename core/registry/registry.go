// Package registry holds the operator symbol table: precedence,
// associativity, node factories, and the alias tables that let the
// tokenizer and parsers accept synonyms for the canonical operator symbols.
//
// All lookups are case-insensitive, per spec §4.1.
package registry

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Associativity describes how same-precedence binary operators chain.
type Associativity int

const (
	LeftAssociative Associativity = iota
	RightAssociative
)

// Arity distinguishes unary from binary operator factories.
type Arity int

const (
	Unary Arity = iota
	Binary
)

// OperatorInfo is the metadata the registry stores per canonical symbol.
type OperatorInfo struct {
	Symbol        string
	Precedence    int
	Associativity Associativity
	Arity         Arity
}

// UnaryFactory builds an AST node for a unary operator application.
// BinaryFactory is the analogous builder for binary operators. Both are
// typed over `any` here (core/ast depends on core/registry, not the
// reverse); callers in core/ast assert the operands and results back to
// ast.Node.
type UnaryFactory func(operand any) any
type BinaryFactory func(left, right any) any

// Registry is the mutable symbol table described in spec §4.1. The zero
// value is not usable; construct with New, which seeds the default table.
type Registry struct {
	operators map[string]OperatorInfo
	unaryFns  map[string]UnaryFactory
	binaryFns map[string]BinaryFactory

	operatorAliases map[string]string // lowercased alias -> canonical symbol
	constantAliases map[string]bool   // lowercased alias -> constant value

	suggestionMaxDistance int
	suggestionMaxItems    int

	// candidates is the cached longest-first list of alias/symbol surface
	// forms used by the tokenizer's longest-match scan. Invalidated (set to
	// nil) on every mutation and lazily rebuilt on next read, mirroring the
	// teacher lexer's fill-on-demand buffering.
	candidates      []string
	candidatesValid bool
}

// Canonical operator symbols.
const (
	SymNot    = "~"
	SymAnd    = "&"
	SymOr     = "|"
	SymXor    = "^"
	SymImply  = "=>"
	SymIff    = "<=>"
	SymNand   = "!&"
	SymNor    = "!|"
)

// New returns a registry seeded with the default precedence table,
// associativity, and alias sets from spec §4.1.
func New() *Registry {
	r := &Registry{
		operators:             make(map[string]OperatorInfo),
		unaryFns:               make(map[string]UnaryFactory),
		binaryFns:              make(map[string]BinaryFactory),
		operatorAliases:        make(map[string]string),
		constantAliases:        make(map[string]bool),
		suggestionMaxDistance:  2,
		suggestionMaxItems:     3,
	}

	r.registerDefaults()
	return r
}

func (r *Registry) registerDefaults() {
	r.operators[SymNot] = OperatorInfo{Symbol: SymNot, Precedence: 5, Associativity: RightAssociative, Arity: Unary}
	r.operators[SymAnd] = OperatorInfo{Symbol: SymAnd, Precedence: 4, Associativity: LeftAssociative, Arity: Binary}
	r.operators[SymNand] = OperatorInfo{Symbol: SymNand, Precedence: 4, Associativity: LeftAssociative, Arity: Binary}
	r.operators[SymXor] = OperatorInfo{Symbol: SymXor, Precedence: 3, Associativity: LeftAssociative, Arity: Binary}
	r.operators[SymOr] = OperatorInfo{Symbol: SymOr, Precedence: 2, Associativity: LeftAssociative, Arity: Binary}
	r.operators[SymNor] = OperatorInfo{Symbol: SymNor, Precedence: 2, Associativity: LeftAssociative, Arity: Binary}
	r.operators[SymImply] = OperatorInfo{Symbol: SymImply, Precedence: 1, Associativity: RightAssociative, Arity: Binary}
	r.operators[SymIff] = OperatorInfo{Symbol: SymIff, Precedence: 0, Associativity: LeftAssociative, Arity: Binary}

	defaultAliases := map[string][]string{
		SymNot:   {"NOT", "not", "¬", "!"},
		SymAnd:   {"AND", "and", "∧", "&&"},
		SymOr:    {"OR", "or", "∨", "||"},
		SymXor:   {"XOR", "xor", "⊕"},
		SymImply: {"IMPLIES", "implies", "→", "->"},
		SymIff:   {"IFF", "iff", "≡", "⇔", "↔"},
		SymNand:  {"NAND", "nand"},
		SymNor:   {"NOR", "nor"},
	}
	for sym, aliases := range defaultAliases {
		for _, a := range aliases {
			r.operatorAliases[strings.ToLower(a)] = sym
		}
		// the canonical symbol is always its own alias, so both tokenizer
		// stages (word-scan and symbol-scan) can treat alias lookup
		// uniformly.
		r.operatorAliases[strings.ToLower(sym)] = sym
	}

	for _, a := range []string{"true", "1", "⊤"} {
		r.constantAliases[strings.ToLower(a)] = true
	}
	for _, a := range []string{"false", "0", "⊥"} {
		r.constantAliases[strings.ToLower(a)] = false
	}

	r.invalidate()
}

func (r *Registry) invalidate() {
	r.candidatesValid = false
	r.candidates = nil
}

// RegisterOperator adds or replaces an operator's precedence/associativity.
func (r *Registry) RegisterOperator(info OperatorInfo) {
	r.operators[info.Symbol] = info
	r.operatorAliases[strings.ToLower(info.Symbol)] = info.Symbol
	r.invalidate()
}

// RegisterAlias maps an additional textual or Unicode alias to a canonical
// operator symbol that must already be registered.
func (r *Registry) RegisterAlias(alias, canonical string) {
	r.operatorAliases[strings.ToLower(alias)] = canonical
	r.invalidate()
}

// RegisterConstantAlias maps an additional textual alias to a boolean
// constant (e.g. "yes" -> true).
func (r *Registry) RegisterConstantAlias(alias string, value bool) {
	r.constantAliases[strings.ToLower(alias)] = value
	r.invalidate()
}

// RegisterUnaryFactory installs the AST-node builder for a unary symbol.
func (r *Registry) RegisterUnaryFactory(symbol string, fn UnaryFactory) {
	r.unaryFns[symbol] = fn
}

// RegisterBinaryFactory installs the AST-node builder for a binary symbol.
func (r *Registry) RegisterBinaryFactory(symbol string, fn BinaryFactory) {
	r.binaryFns[symbol] = fn
}

// UnaryFactory returns the registered unary node builder, if any.
func (r *Registry) UnaryFactory(symbol string) (UnaryFactory, bool) {
	fn, ok := r.unaryFns[symbol]
	return fn, ok
}

// BinaryFactory returns the registered binary node builder, if any.
func (r *Registry) BinaryFactory(symbol string) (BinaryFactory, bool) {
	fn, ok := r.binaryFns[symbol]
	return fn, ok
}

// Lookup resolves a surface token (already identified as belonging to the
// operator alphabet) to its OperatorInfo, following aliases.
func (r *Registry) Lookup(surface string) (OperatorInfo, bool) {
	canonical, ok := r.operatorAliases[strings.ToLower(surface)]
	if !ok {
		return OperatorInfo{}, false
	}
	info, ok := r.operators[canonical]
	return info, ok
}

// Canonicalize resolves an alias (or canonical symbol) to its canonical
// symbol string.
func (r *Registry) Canonicalize(surface string) (string, bool) {
	canonical, ok := r.operatorAliases[strings.ToLower(surface)]
	return canonical, ok
}

// ConstantValue resolves a constant alias ("true", "1", "⊤", ...) to its
// boolean value.
func (r *Registry) ConstantValue(surface string) (bool, bool) {
	v, ok := r.constantAliases[strings.ToLower(surface)]
	return v, ok
}

// IsCommutative reports whether the canonical symbol is commutative (spec
// §3 invariants). The canonicalizer flattens and reorders only "&", "|",
// "^" and "<=>"; "!&" and "!|" keep their shape there.
func IsCommutative(symbol string) bool {
	switch symbol {
	case SymAnd, SymOr, SymXor, SymIff, SymNand, SymNor:
		return true
	default:
		return false
	}
}

// SetSuggestionParams configures the Levenshtein suggestion thresholds.
func (r *Registry) SetSuggestionParams(maxDistance, maxItems int) {
	r.suggestionMaxDistance = maxDistance
	r.suggestionMaxItems = maxItems
}

// SuggestionParams returns the currently configured thresholds.
func (r *Registry) SuggestionParams() (maxDistance, maxItems int) {
	return r.suggestionMaxDistance, r.suggestionMaxItems
}

// Candidates returns every known alias and canonical symbol surface form,
// sorted by descending length so a longest-match scan never stops short
// (e.g. "<=>" must be tried before "<=" or "<"). The list is cached and
// rebuilt lazily after any registration call invalidates it.
func (r *Registry) Candidates() []string {
	if r.candidatesValid {
		return r.candidates
	}

	seen := make(map[string]bool, len(r.operatorAliases))
	list := make([]string, 0, len(r.operatorAliases))
	for alias := range r.operatorAliases {
		if !seen[alias] {
			seen[alias] = true
			list = append(list, alias)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if len(list[i]) != len(list[j]) {
			return len(list[i]) > len(list[j])
		}
		return list[i] < list[j]
	})

	r.candidates = list
	r.candidatesValid = true
	return list
}

// Suggest returns up to SuggestionParams().maxItems alias/symbol candidates
// within SuggestionParams().maxDistance Levenshtein edits of surface, ranked
// by github.com/lithammer/fuzzysearch/fuzzy — the same library the teacher
// uses for its "closest match" suggestions in runtime/planner.findClosestMatch.
func (r *Registry) Suggest(surface string) []string {
	target := strings.ToLower(surface)
	ranks := fuzzy.RankFindFold(target, r.Candidates())

	matches := make([]fuzzy.Rank, 0, len(ranks))
	for _, rk := range ranks {
		if rk.Distance <= r.suggestionMaxDistance {
			matches = append(matches, rk)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Target < matches[j].Target
	})

	n := r.suggestionMaxItems
	if n > len(matches) {
		n = len(matches)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = matches[i].Target
	}
	return out
}
