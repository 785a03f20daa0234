package cache

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/roach88/shapes/internal/ir"
)

// Cache memoizes actions per (verb, descriptor) and tracks lookups in
// flight so recursive types can be resolved.
//
// An entry is absent, in flight (a *Forward), or resolved (an action).
type Cache interface {
	// Get returns the resolved action, the in-flight placeholder, or nil.
	Get(verb ir.Verb, desc ir.Descriptor) ir.Action

	// InFlight registers and returns a new forward cell for an absent key.
	InFlight(verb ir.Verb, desc ir.Descriptor) *Forward

	// Complete fulfils the key's forward cell, if any, and stores action.
	Complete(verb ir.Verb, desc ir.Descriptor, action ir.Action)

	// Release removes the entry if it is still fwd. Called after a failed
	// lookup; a resolved entry is never dropped.
	Release(verb ir.Verb, desc ir.Descriptor, fwd *Forward)
}

type key struct {
	verb ir.Verb
	desc ir.Descriptor
}

// entry holds either a resolved action or an in-flight forward.
type entry struct {
	action  ir.Action
	forward *Forward
}

// Simple is the map-backed cache. It is not safe for concurrent use;
// give each goroutine its own engine (see engine.Pool).
type Simple struct {
	entries        map[key]entry
	logger         *slog.Logger
	warnUnhashable bool
}

// Option configures a Simple cache.
type Option func(*Simple)

// WithLogger sets the logger used for unhashable-descriptor warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Simple) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithWarnUnhashable toggles the warning logged when a descriptor cannot
// be used as a map key. Enabled by default.
func WithWarnUnhashable(warn bool) Option {
	return func(c *Simple) {
		c.warnUnhashable = warn
	}
}

// NewSimple creates an empty map-backed cache.
func NewSimple(opts ...Option) *Simple {
	c := &Simple{
		entries:        make(map[key]entry),
		logger:         slog.Default(),
		warnUnhashable: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// keyFor returns the map key, or false if desc is not comparable.
func (c *Simple) keyFor(verb ir.Verb, desc ir.Descriptor) (key, bool) {
	if desc == nil || !reflect.ValueOf(desc).Comparable() {
		if c.warnUnhashable && desc != nil {
			c.logger.Warn("descriptor is not comparable; lookup will not be cached",
				"verb", verb.String(),
				"type", desc.String(),
				"go_type", fmt.Sprintf("%T", desc))
		}
		return key{}, false
	}
	return key{verb: verb, desc: desc}, true
}

func (c *Simple) Get(verb ir.Verb, desc ir.Descriptor) ir.Action {
	k, ok := c.keyFor(verb, desc)
	if !ok {
		return nil
	}
	e, ok := c.entries[k]
	if !ok {
		return nil
	}
	if e.forward != nil {
		return e.forward.Placeholder()
	}
	return e.action
}

func (c *Simple) InFlight(verb ir.Verb, desc ir.Descriptor) *Forward {
	fwd := NewForward(verb, desc)
	// Warnings were already emitted by the Get that preceded this call.
	if desc == nil || !reflect.ValueOf(desc).Comparable() {
		return fwd
	}
	k := key{verb: verb, desc: desc}
	if _, exists := c.entries[k]; !exists {
		c.entries[k] = entry{forward: fwd}
	}
	return fwd
}

func (c *Simple) Complete(verb ir.Verb, desc ir.Descriptor, action ir.Action) {
	if desc == nil || !reflect.ValueOf(desc).Comparable() {
		return
	}
	k := key{verb: verb, desc: desc}
	if e, ok := c.entries[k]; ok && e.forward != nil {
		e.forward.Fulfill(action)
	}
	c.entries[k] = entry{action: action}
}

func (c *Simple) Release(verb ir.Verb, desc ir.Descriptor, fwd *Forward) {
	if fwd == nil || desc == nil || !reflect.ValueOf(desc).Comparable() {
		return
	}
	k := key{verb: verb, desc: desc}
	if e, ok := c.entries[k]; ok && e.forward == fwd {
		delete(c.entries, k)
	}
}

// Len returns the number of entries, resolved and in flight.
func (c *Simple) Len() int {
	return len(c.entries)
}

// Nop never stores anything. It is only safe for acyclic types: a
// recursive type makes the engine recurse without bound.
type Nop struct{}

// NewNop returns a pass-through cache.
func NewNop() Nop { return Nop{} }

func (Nop) Get(ir.Verb, ir.Descriptor) ir.Action { return nil }

func (Nop) InFlight(verb ir.Verb, desc ir.Descriptor) *Forward { return NewForward(verb, desc) }

func (Nop) Complete(ir.Verb, ir.Descriptor, ir.Action) {}

func (Nop) Release(ir.Verb, ir.Descriptor, *Forward) {}
