// Package expr implements the external expression wrapper of spec §6: a
// thin facade tying together the registry, lexer/parser, rewriters, BDD
// engine, variable-ordering strategies, and evaluator behind the public
// surface an end user actually calls, grounded on the teacher's core/sdk
// "thin facade over runtime packages" pattern.
package expr

import (
	"fmt"

	"github.com/aledsdavies/logexpr/core/ast"
	"github.com/aledsdavies/logexpr/core/registry"
	"github.com/aledsdavies/logexpr/runtime/bdd"
	"github.com/aledsdavies/logexpr/runtime/cache"
	"github.com/aledsdavies/logexpr/runtime/convert"
	"github.com/aledsdavies/logexpr/runtime/eval"
	"github.com/aledsdavies/logexpr/runtime/order"
	"github.com/aledsdavies/logexpr/runtime/parser"
	"github.com/aledsdavies/logexpr/runtime/rewrite"
)

// Expression is an immutable boolean formula paired with a fixed variable
// order. Every method that would change either returns a new Expression
// rather than mutating the receiver (spec §6).
type Expression struct {
	reg   *registry.Registry
	root  ast.Node // structural AST, not index-resolved
	order []string
	cfg   config
}

// New wraps root (as produced by runtime/parser or built directly against
// reg's factories) into an Expression, ordering its variables with
// strategy (spec §6; default order.Alphabetical when strategy is nil).
func New(reg *registry.Registry, root ast.Node, strategy order.Strategy, opts ...Option) *Expression {
	if strategy == nil {
		strategy = order.Alphabetical
	}
	vars := ast.Variables(root)
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Expression{
		reg:   reg,
		root:  root,
		order: strategy.Order(root, vars),
		cfg:   cfg,
	}
}

// Parse tokenizes and parses input against reg, wrapping the result into
// an Expression ordered alphabetically (spec §6's textual grammar entry
// point). Configuration affecting the parser (Strategy, alias
// suggestions, unicode normalization, AST cache) is threaded through from
// opts; evaluator-facing options (short-circuiting, delegate cache) apply
// to the returned Expression.
func Parse(reg *registry.Registry, input string, opts ...Option) (*Expression, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	reg.SetSuggestionParams(cfg.suggestionMaxDistance, cfg.suggestionMaxItems)

	parserOpts := []parser.Option{
		parser.WithStrategy(cfg.strategy),
		parser.WithUnicodeNormalization(cfg.unicodeNormalization),
		parser.WithAliasSuggestions(cfg.aliasSuggestions),
	}
	if cfg.astCache != nil {
		parserOpts = append(parserOpts, parser.WithCache(cfg.astCache))
	}

	tree, err := parser.Parse(reg, input, parserOpts...)
	if err != nil {
		return nil, err
	}

	return &Expression{
		reg:   reg,
		root:  tree,
		order: order.Alphabetical.Order(tree, ast.Variables(tree)),
		cfg:   cfg,
	}, nil
}

// Root returns the expression's underlying (unindexed) AST.
func (e *Expression) Root() ast.Node { return e.root }

// VariableOrder returns the expression's current variable order.
func (e *Expression) VariableOrder() []string {
	return append([]string(nil), e.order...)
}

// WithVariableOrder returns a new Expression over the same formula with
// vars as its order. vars must be a permutation of e's current variables
// (spec §6): same set, no duplicates.
func (e *Expression) WithVariableOrder(vars []string) (*Expression, error) {
	if err := validatePermutation(e.order, vars); err != nil {
		return nil, err
	}
	return &Expression{
		reg:   e.reg,
		root:  e.root,
		order: append([]string(nil), vars...),
		cfg:   e.cfg,
	}, nil
}

func validatePermutation(original, candidate []string) error {
	if len(original) != len(candidate) {
		return fmt.Errorf("expr: variable order has %d entries, want %d", len(candidate), len(original))
	}
	want := make(map[string]bool, len(original))
	for _, v := range original {
		want[v] = true
	}
	seen := make(map[string]bool, len(candidate))
	for _, v := range candidate {
		if !want[v] {
			return fmt.Errorf("expr: %q is not a variable of this expression", v)
		}
		if seen[v] {
			return fmt.Errorf("expr: duplicate variable %q in order", v)
		}
		seen[v] = true
	}
	return nil
}

// evaluator lazily builds (and does not cache across calls by default,
// unless cfg.delegateCache is set) the eval.Evaluator for e's current
// root/order/short-circuit configuration.
func (e *Expression) evaluator() *eval.Evaluator {
	var evalOpts []eval.Option
	evalOpts = append(evalOpts, eval.WithShortCircuit(e.cfg.shortCircuit))
	if e.cfg.delegateCache != nil {
		evalOpts = append(evalOpts, eval.WithDelegateCache(e.cfg.delegateCache))
	}
	return eval.New(e.root, e.order, evalOpts...)
}

// Evaluate evaluates against a positional input vector, one entry per
// variable in e.VariableOrder() (spec §6).
func (e *Expression) Evaluate(inputs []bool) (bool, error) {
	return e.evaluator().EvaluateVector(inputs)
}

// EvaluateMap evaluates against a name-keyed assignment (spec §6).
func (e *Expression) EvaluateMap(values map[string]bool) (bool, error) {
	return e.evaluator().EvaluateMap(values)
}

// Normalize returns a new Expression with the rewrite.Normalize form of
// e's root (spec §6).
func (e *Expression) Normalize() *Expression {
	return e.withRoot(rewrite.Normalize(e.root))
}

// Minimize returns a new Expression whose root has been rebuilt from a
// ROBDD of e (normalize -> canonicalize -> build -> convert back to AST),
// which collapses redundancies and unreachable branches that algebraic
// rewriting alone cannot (spec §4.6, §6).
func (e *Expression) Minimize() (*Expression, error) {
	m, ref, err := e.buildBDD()
	if err != nil {
		return nil, err
	}
	return e.withRoot(convert.ToAST(m, ref, e.order)), nil
}

// ToDnf returns a new Expression whose root is a true disjunctive normal
// form derived from e's BDD cover (spec §6, §9).
func (e *Expression) ToDnf() (*Expression, error) {
	m, ref, err := e.buildBDD()
	if err != nil {
		return nil, err
	}
	return e.withRoot(convert.ToDnf(m, ref, e.order)), nil
}

// ToCnf returns a new Expression whose root is a true conjunctive normal
// form derived from e's BDD cover (spec §6, §9).
func (e *Expression) ToCnf() (*Expression, error) {
	m, ref, err := e.buildBDD()
	if err != nil {
		return nil, err
	}
	return e.withRoot(convert.ToCnf(m, ref, e.order)), nil
}

func (e *Expression) withRoot(root ast.Node) *Expression {
	return &Expression{reg: e.reg, root: root, order: append([]string(nil), e.order...), cfg: e.cfg}
}

// buildBDD normalizes and canonicalizes e's root, indexes it against e's
// order, and builds a fresh BDD manager + ref for it.
func (e *Expression) buildBDD() (*bdd.Manager, bdd.Ref, error) {
	canon := rewrite.Canonicalize(rewrite.Normalize(e.root))
	indexed := rewrite.VariableIndex(canon, e.order)
	m := bdd.NewManager()
	ref, err := m.Build(indexed)
	if err != nil {
		return nil, 0, err
	}
	return m, ref, nil
}

// IsTautology reports whether e is true under every assignment (spec §6,
// BDD-backed).
func (e *Expression) IsTautology() (bool, error) {
	_, ref, err := e.buildBDD()
	if err != nil {
		return false, err
	}
	return ref == bdd.RefTrue, nil
}

// IsContradiction reports whether e is false under every assignment (spec
// §6, BDD-backed).
func (e *Expression) IsContradiction() (bool, error) {
	_, ref, err := e.buildBDD()
	if err != nil {
		return false, err
	}
	return ref == bdd.RefFalse, nil
}

// IsSatisfiable reports whether some assignment makes e true (spec §6,
// BDD-backed).
func (e *Expression) IsSatisfiable() (bool, error) {
	_, ref, err := e.buildBDD()
	if err != nil {
		return false, err
	}
	return ref != bdd.RefFalse, nil
}

// EquivalentTo reports whether e and other denote the same boolean
// function, by building both against the union of their variable sets in
// a single shared Manager and comparing the resulting Refs for identity
// (spec §6): ROBDD canonicity guarantees equal refs iff equal functions.
func (e *Expression) EquivalentTo(other *Expression) (bool, error) {
	union := unionOrder(e.order, other.order)

	m := bdd.NewManager()

	lhs := rewrite.VariableIndex(rewrite.Canonicalize(rewrite.Normalize(e.root)), union)
	lref, err := m.Build(lhs)
	if err != nil {
		return false, err
	}

	rhs := rewrite.VariableIndex(rewrite.Canonicalize(rewrite.Normalize(other.root)), union)
	rref, err := m.Build(rhs)
	if err != nil {
		return false, err
	}

	return lref == rref, nil
}

// StructuralEquals reports direct AST equality between e and other (spec
// §6) — a stricter, syntax-sensitive comparison than EquivalentTo.
func (e *Expression) StructuralEquals(other *Expression) bool {
	return ast.Equal(e.root, other.root)
}

func unionOrder(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, v := range a {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// AstCacheStats reports the configured AST cache's hit/miss counters, the
// cache-statistics plumbing named ambient-but-in-scope (SPEC_FULL.md).
func (e *Expression) AstCacheStats() (cache.Stats, bool) {
	if e.cfg.astCache == nil {
		return cache.Stats{}, false
	}
	return e.cfg.astCache.Stats(), true
}

// DelegateCacheStats reports the configured compiled-delegate cache's
// hit/miss counters.
func (e *Expression) DelegateCacheStats() (cache.Stats, bool) {
	if e.cfg.delegateCache == nil {
		return cache.Stats{}, false
	}
	return e.cfg.delegateCache.Stats(), true
}
