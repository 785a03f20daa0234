package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/shapes/internal/cache"
	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/pattern"
)

// LevelTrace sits below slog.LevelDebug and carries one record per lookup.
const LevelTrace = slog.LevelDebug - 4

// DefaultMaxDepth bounds nested lookups. Deeply nested but finite types
// stay far below it; only runaway recursion reaches it.
const DefaultMaxDepth = 1000

// Rule builds an action for a verb and type, or declines with (nil, nil).
// Rules recurse into the engine for the types they contain.
type Rule interface {
	Build(verb ir.Verb, desc ir.Descriptor, e *Engine) (ir.Action, error)
}

// RuleFunc adapts a function to Rule.
type RuleFunc func(verb ir.Verb, desc ir.Descriptor, e *Engine) (ir.Action, error)

// Build calls f.
func (f RuleFunc) Build(verb ir.Verb, desc ir.Descriptor, e *Engine) (ir.Action, error) {
	return f(verb, desc, e)
}

// Fallback is consulted when no rule accepts. desc is nil for optional
// lookups without a type. Returning nil declines.
type Fallback func(verb ir.Verb, desc ir.Descriptor) ir.Action

// DefaultFallback describes unhandled types as pattern.Unknown and
// declines every other verb.
func DefaultFallback(verb ir.Verb, _ ir.Descriptor) ir.Action {
	if verb.Shape() == ir.ShapePattern {
		return pattern.Unknown
	}
	return nil
}

// Engine resolves (verb, type) pairs to actions through an ordered list
// of rules.
//
// Thread-safety model:
//   - Lookup and friends: one goroutine at a time (the cache is not locked)
//   - Fork(): returns an engine with its own cache for another goroutine
//   - Actions returned by Lookup: safe for concurrent use once built
//
// INVARIANTS:
//   - rules order NEVER changes after construction
//   - the first rule returning a non-nil action wins
//   - a forward cell is registered before any rule runs
type Engine struct {
	rules    []Rule
	cache    cache.Cache
	newCache func() cache.Cache
	fallback Fallback
	logger   *slog.Logger
	cycles   *CycleDetector
	maxDepth int
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache sets the caching strategy of this engine. Forks still use
// the cache factory.
func WithCache(c cache.Cache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithCacheFactory sets how new caches are made, for this engine and its
// forks.
func WithCacheFactory(f func() cache.Cache) Option {
	return func(e *Engine) {
		e.newCache = f
	}
}

// WithFallback replaces DefaultFallback. A nil f declines everything.
func WithFallback(f Fallback) Option {
	return func(e *Engine) {
		if f == nil {
			f = func(ir.Verb, ir.Descriptor) ir.Action { return nil }
		}
		e.fallback = f
	}
}

// WithLogger sets the logger for lookup tracing.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMaxDepth bounds nested lookups.
//
// Default: 1000 (DefaultMaxDepth)
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		e.maxDepth = depth
	}
}

// New creates an Engine over rules.
//
// The rules slice is copied so callers cannot reorder it afterwards.
func New(rules []Rule, opts ...Option) *Engine {
	e := &Engine{
		rules:    append([]Rule(nil), rules...),
		fallback: DefaultFallback,
		logger:   slog.Default(),
		cycles:   NewCycleDetector(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.newCache == nil {
		logger := e.logger
		e.newCache = func() cache.Cache { return cache.NewSimple(cache.WithLogger(logger)) }
	}
	if e.cache == nil {
		e.cache = e.newCache()
	}
	return e
}

// Fork returns an engine sharing this engine's rules and configuration
// with a fresh cache, for use by another goroutine.
func (e *Engine) Fork() *Engine {
	return &Engine{
		rules:    e.rules,
		cache:    e.newCache(),
		newCache: e.newCache,
		fallback: e.fallback,
		logger:   e.logger,
		cycles:   NewCycleDetector(),
		maxDepth: e.maxDepth,
	}
}

// Rules returns a copy of the rule list in evaluation order.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Lookup returns the action for verb and desc.
func (e *Engine) Lookup(verb ir.Verb, desc ir.Descriptor) (ir.Action, error) {
	return e.lookup(verb, desc, false)
}

// LookupOptional is like Lookup but tolerates a nil desc by asking the
// fallback, as needed for record fields declared without a type.
func (e *Engine) LookupOptional(verb ir.Verb, desc ir.Descriptor) (ir.Action, error) {
	return e.lookup(verb, desc, true)
}

func (e *Engine) lookup(verb ir.Verb, desc ir.Descriptor, acceptMissing bool) (ir.Action, error) {
	if desc == nil {
		if acceptMissing {
			if action := e.fallback(verb, nil); action != nil {
				e.trace(verb, "<nil>", "fallback")
				return action, nil
			}
		}
		return nil, newMissingTypeError(verb)
	}

	if action := e.cache.Get(verb, desc); action != nil {
		e.trace(verb, desc.String(), "cached")
		return action, nil
	}

	if e.cycles.WouldCycle(verb, desc) {
		return nil, newCycleError(verb, desc)
	}
	if depth := e.cycles.Record(verb, desc); depth > e.maxDepth {
		e.cycles.Clear(verb, desc)
		return nil, newDepthError(verb, desc, e.maxDepth)
	}
	defer e.cycles.Clear(verb, desc)

	fwd := e.cache.InFlight(verb, desc)
	action, outcome, err := e.build(verb, desc)
	if err != nil {
		e.cache.Release(verb, desc, fwd)
		e.trace(verb, desc.String(), "failed", "error", err)
		return nil, err
	}
	e.cache.Complete(verb, desc, action)
	// Complete on a cache that never stored the forward leaves it unfulfilled.
	if !fwd.Fulfilled() {
		fwd.Fulfill(action)
	}
	e.trace(verb, desc.String(), outcome)
	return action, nil
}

// build runs the rules in order, then the fallback.
func (e *Engine) build(verb ir.Verb, desc ir.Descriptor) (ir.Action, string, error) {
	for _, rule := range e.rules {
		action, err := rule.Build(verb, desc, e)
		if err != nil {
			return nil, "", err
		}
		if action == nil {
			continue
		}
		action, err = normalize(verb, action)
		if err != nil {
			return nil, "", newInvalidActionError(verb, desc, err)
		}
		return action, "computed", nil
	}

	if action := e.fallback(verb, desc); action != nil {
		action, err := normalize(verb, action)
		if err != nil {
			return nil, "", newInvalidActionError(verb, desc, err)
		}
		return action, "fallback", nil
	}
	return nil, "", newUnresolvedError(verb, desc)
}

func normalize(verb ir.Verb, action ir.Action) (ir.Action, error) {
	action, err := ir.NormalizeAction(verb.Shape(), action)
	if err != nil {
		return nil, err
	}
	if verb.Shape() == ir.ShapePattern {
		if _, ok := action.(pattern.Pattern); !ok {
			return nil, fmt.Errorf("pattern verb needs a pattern.Pattern, got %T", action)
		}
	}
	return action, nil
}

func (e *Engine) trace(verb ir.Verb, typ, outcome string, args ...any) {
	ctx := context.Background()
	if !e.logger.Enabled(ctx, LevelTrace) {
		return
	}
	attrs := append([]any{"verb", verb.String(), "type", typ, "outcome", outcome}, args...)
	e.logger.Log(ctx, LevelTrace, "lookup", attrs...)
}
