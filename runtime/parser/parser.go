package parser

import (
	"strings"

	"github.com/aledsdavies/logexpr/core/ast"
	"github.com/aledsdavies/logexpr/core/registry"
	"github.com/aledsdavies/logexpr/core/token"
	"github.com/aledsdavies/logexpr/runtime/cache"
	"github.com/aledsdavies/logexpr/runtime/lexer"
	"github.com/aledsdavies/logexpr/runtime/rewrite"
)

// Strategy selects which of the two interchangeable parser algorithms
// builds the AST (spec §4.3).
type Strategy int

const (
	ShuntingYard Strategy = iota
	Pratt
)

// Option configures Parse, following the teacher's functional-options
// pattern (runtime/parser/options.go).
type Option func(*config)

type config struct {
	strategy              Strategy
	unicodeNormalization  bool
	aliasSuggestions      bool
	astCache              *cache.Cache[string, ast.Node]
}

// WithStrategy selects the parser algorithm (default ShuntingYard).
func WithStrategy(s Strategy) Option {
	return func(c *config) { c.strategy = s }
}

// WithUnicodeNormalization toggles NFKC normalization before tokenizing
// (spec §6, default true).
func WithUnicodeNormalization(enabled bool) Option {
	return func(c *config) { c.unicodeNormalization = enabled }
}

// WithAliasSuggestions toggles Levenshtein-hinted UnknownToken errors
// (spec §6, default true).
func WithAliasSuggestions(enabled bool) Option {
	return func(c *config) { c.aliasSuggestions = enabled }
}

// WithCache supplies a shared AST cache (spec §3's "parser AST cache").
// Without one, Parse never consults or populates a cache.
func WithCache(c *cache.Cache[string, ast.Node]) Option {
	return func(cfg *config) { cfg.astCache = c }
}

// NewAstCache constructs the process-wide AST cache sized per spec §5's
// default (1024 entries unless overridden).
func NewAstCache(maxSize int) *cache.Cache[string, ast.Node] {
	if maxSize <= 0 {
		maxSize = 1024
	}
	return cache.New[string, ast.Node](maxSize)
}

// Parse tokenizes and parses input against reg, returning a normalized AST
// (spec §4.3: "a parsed AST is then passed through the normalizer before
// being cached and returned").
func Parse(reg *registry.Registry, input string, opts ...Option) (ast.Node, error) {
	cfg := config{strategy: ShuntingYard, unicodeNormalization: true, aliasSuggestions: true}
	for _, o := range opts {
		o(&cfg)
	}

	lx := lexer.New(reg, input,
		lexer.WithUnicodeNormalization(cfg.unicodeNormalization),
		lexer.WithAliasSuggestions(cfg.aliasSuggestions),
	)
	tokens, lexErr := lx.Tokenize()
	if lexErr != nil {
		if ute, ok := lexErr.(*lexer.UnknownTokenError); ok {
			return nil, newUnknownTokenFromLex(input, ute.Offset, ute.Char, ute.Suggestions)
		}
		return nil, &ParseError{Code: InvalidTokenSequence, Input: input, Cause: lexErr}
	}

	cacheKey := ""
	if cfg.astCache != nil {
		cacheKey = buildCacheKey(cfg.strategy, cfg.unicodeNormalization, tokens)
		if cached, ok := cfg.astCache.Get(cacheKey); ok {
			return cached, nil
		}
	}

	if err := validate(input, tokens); err != nil {
		return nil, err
	}

	var (
		tree ast.Node
		err  error
	)
	switch cfg.strategy {
	case Pratt:
		tree, err = parsePratt(reg, input, tokens)
	default:
		tree, err = parseShuntingYard(reg, input, tokens)
	}
	if err != nil {
		return nil, err
	}

	normalized := rewrite.Normalize(tree)

	if cfg.astCache != nil {
		cfg.astCache.Put(cacheKey, normalized)
	}

	return normalized, nil
}

// TryParse converts any fault — typed ParseError or unexpected panic — into
// a single InvalidTokenSequence error with the underlying cause attached
// (spec §7's public tryParse form).
func TryParse(reg *registry.Registry, input string, opts ...Option) (node ast.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(error)
			if !ok {
				rerr = &panicError{value: r}
			}
			err = &ParseError{Code: InvalidTokenSequence, Input: input, Cause: rerr}
		}
	}()

	node, err = Parse(reg, input, opts...)
	if err != nil {
		if pe, ok := err.(*ParseError); ok && pe.Code == InvalidTokenSequence {
			return nil, err
		}
		return nil, &ParseError{Code: InvalidTokenSequence, Input: input, Cause: err}
	}
	return node, nil
}

type panicError struct{ value any }

func (p *panicError) Error() string {
	return "panic: " + toString(p.value)
}

func toString(v any) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return "unknown panic"
}

// buildCacheKey serializes the strategy, unicode-norm flag, and token
// stream into the AST cache key described in spec §3.
func buildCacheKey(strategy Strategy, unicodeNorm bool, tokens []token.Token) string {
	var b strings.Builder
	if strategy == Pratt {
		b.WriteString("pratt|")
	} else {
		b.WriteString("shunting|")
	}
	if unicodeNorm {
		b.WriteString("nfkc|")
	} else {
		b.WriteString("raw|")
	}
	for _, t := range tokens {
		b.WriteString(t.Kind.String())
		b.WriteByte(':')
		if t.Kind == token.Operator {
			b.WriteString(t.Operator)
		} else {
			b.WriteString(t.Lexeme)
		}
		b.WriteByte('|')
	}
	return b.String()
}
