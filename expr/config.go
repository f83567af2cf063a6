package expr

import (
	"github.com/aledsdavies/logexpr/core/ast"
	"github.com/aledsdavies/logexpr/runtime/cache"
	"github.com/aledsdavies/logexpr/runtime/eval"
	"github.com/aledsdavies/logexpr/runtime/parser"
)

// config holds the recognized options of spec §6, "Configuration".
// EnableAstTtlEviction/AstTtl from that list are not implemented: the
// shared cache (runtime/cache) is a bounded LRU over golang-lru/v2 rather
// than a TTL-evicting one, per the Open Question decision recorded in
// DESIGN.md, so only size-bounded caches are configurable here.
type config struct {
	strategy              parser.Strategy
	unicodeNormalization  bool
	aliasSuggestions      bool
	shortCircuit          bool
	suggestionMaxDistance int
	suggestionMaxItems    int
	astCache              *cache.Cache[string, ast.Node]
	delegateCache         *cache.Cache[string, eval.Delegate]
}

func defaultConfig() config {
	return config{
		strategy:              parser.ShuntingYard,
		unicodeNormalization:  true,
		aliasSuggestions:      true,
		shortCircuit:          true,
		suggestionMaxDistance: 2,
		suggestionMaxItems:    3,
	}
}

// Option configures Parse and New (spec §6, "Configuration").
type Option func(*config)

// WithStrategy selects the parser algorithm (default ShuntingYard).
func WithStrategy(s parser.Strategy) Option {
	return func(c *config) { c.strategy = s }
}

// WithUnicodeNormalization toggles NFKC normalization before tokenizing
// (default true).
func WithUnicodeNormalization(enabled bool) Option {
	return func(c *config) { c.unicodeNormalization = enabled }
}

// WithAliasSuggestions toggles Levenshtein-hinted UnknownToken errors
// (default true).
func WithAliasSuggestions(enabled bool) Option {
	return func(c *config) { c.aliasSuggestions = enabled }
}

// WithShortCircuiting selects the compiled evaluator's codegen strategy
// for `&`/`|` (default true).
func WithShortCircuiting(enabled bool) Option {
	return func(c *config) { c.shortCircuit = enabled }
}

// WithSuggestionParams configures the registry's Levenshtein suggestion
// thresholds (default maxDistance=2, maxItems=3).
func WithSuggestionParams(maxDistance, maxItems int) Option {
	return func(c *config) { c.suggestionMaxDistance, c.suggestionMaxItems = maxDistance, maxItems }
}

// WithAstCache installs a shared AST cache (spec §3's "parser AST cache"),
// sized via parser.NewAstCache.
func WithAstCache(c *cache.Cache[string, ast.Node]) Option {
	return func(cfg *config) { cfg.astCache = c }
}

// WithDelegateCache installs a shared compiled-delegate cache (spec
// §4.8), sized via eval.NewDelegateCache.
func WithDelegateCache(c *cache.Cache[string, eval.Delegate]) Option {
	return func(cfg *config) { cfg.delegateCache = c }
}
