package eval

import (
	"strconv"
	"strings"

	"github.com/aledsdavies/logexpr/core/ast"
	"github.com/aledsdavies/logexpr/core/evalerr"
	"github.com/aledsdavies/logexpr/runtime/cache"
	"github.com/aledsdavies/logexpr/runtime/rewrite"
)

// DefaultDelegateMaxCacheSize is the compiled-evaluator cache's default
// bound (spec §5, "Resource bounds").
const DefaultDelegateMaxCacheSize = 2048

// Option configures an Evaluator.
type Option func(*config)

type config struct {
	shortCircuit  bool
	delegateCache *cache.Cache[string, Delegate]
}

// WithShortCircuit selects native short-circuit `&&`/`||` codegen for `&`
// and `|` when enabled, or strict eager evaluation of both operands when
// disabled (spec §6, UseShortCircuiting; default true).
func WithShortCircuit(enabled bool) Option {
	return func(c *config) { c.shortCircuit = enabled }
}

// WithDelegateCache installs a shared compiled-delegate cache. Without
// one, evaluation always goes through TreeWalk and nothing is compiled.
func WithDelegateCache(c *cache.Cache[string, Delegate]) Option {
	return func(cfg *config) { cfg.delegateCache = c }
}

// NewDelegateCache constructs a compiled-delegate cache bounded to
// maxSize, keyed on (short-circuit flag, canonical AST string, variable
// order) per spec §4.8.
func NewDelegateCache(maxSize int) *cache.Cache[string, Delegate] {
	if maxSize <= 0 {
		maxSize = DefaultDelegateMaxCacheSize
	}
	return cache.New[string, Delegate](maxSize)
}

// Evaluator evaluates a single boolean expression against a fixed
// variable order, indexing the AST once at construction and reusing a
// compiled delegate (when a cache is configured) across calls.
type Evaluator struct {
	root  ast.Node // indexed against order
	order []string
	cfg   config
}

// New builds an Evaluator for root (not yet indexed) against order: every
// variable name in root must occur in order (spec §4.4).
func New(root ast.Node, order []string, opts ...Option) *Evaluator {
	cfg := config{shortCircuit: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Evaluator{
		root:  rewrite.VariableIndex(root, order),
		order: append([]string(nil), order...),
		cfg:   cfg,
	}
}

// EvaluateVector evaluates against a positional input vector, one entry
// per variable in order (spec §4.8, "Input validation"). Its length must
// match len(order).
func (e *Evaluator) EvaluateVector(inputs []bool) (bool, error) {
	if len(inputs) != len(e.order) {
		return false, evalerr.NewLengthMismatch(len(e.order), len(inputs))
	}
	return e.evaluate(inputs)
}

// EvaluateMap evaluates against a name-keyed assignment; every variable in
// e's order must have an entry (spec §4.8, "Input validation").
func (e *Evaluator) EvaluateMap(values map[string]bool) (bool, error) {
	inputs := make([]bool, len(e.order))
	for i, name := range e.order {
		v, ok := values[name]
		if !ok {
			return false, evalerr.NewMissingVariable(name)
		}
		inputs[i] = v
	}
	return e.evaluate(inputs)
}

func (e *Evaluator) evaluate(inputs []bool) (bool, error) {
	if e.cfg.delegateCache == nil {
		return TreeWalk(e.root, inputs)
	}

	key := delegateKey(e.cfg.shortCircuit, e.root, e.order)
	if delegate, ok := e.cfg.delegateCache.Get(key); ok {
		return delegate(inputs), nil
	}

	delegate, err := Compile(e.root, e.cfg.shortCircuit)
	if err != nil {
		return false, err
	}
	e.cfg.delegateCache.Put(key, delegate)
	return delegate(inputs), nil
}

// delegateKey builds the compiled-delegate cache key described in spec
// §4.8: short-circuit flag, canonical AST string, variable order.
func delegateKey(shortCircuit bool, root ast.Node, order []string) string {
	var b strings.Builder
	b.WriteString(strconv.FormatBool(shortCircuit))
	b.WriteByte('|')
	b.WriteString(ast.CanonicalString(root))
	b.WriteByte('|')
	b.WriteString(strings.Join(order, ","))
	return b.String()
}
