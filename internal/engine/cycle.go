package engine

import (
	"fmt"
	"reflect"

	"github.com/roach88/shapes/internal/ir"
)

// CycleDetector tracks the (verb, type) lookups active on the current
// call stack.
//
// With a caching strategy that registers in-flight entries, a recursive
// type is answered from the cache and never re-enters the engine. The
// detector catches the remaining cases, where the lookup would otherwise
// recurse until the stack overflows:
//
//	Nop cache:            nothing is ever in flight
//	unhashable type:      the cache cannot key it
//
// Not safe for concurrent use; each engine owns one.
type CycleDetector struct {
	active map[activeKey]bool
	depth  int
}

type activeKey struct {
	verb ir.Verb
	id   any
}

// NewCycleDetector creates an empty detector.
func NewCycleDetector() *CycleDetector {
	return &CycleDetector{active: make(map[activeKey]bool)}
}

func keyOf(verb ir.Verb, desc ir.Descriptor) activeKey {
	if reflect.ValueOf(desc).Comparable() {
		return activeKey{verb: verb, id: desc}
	}
	// Incomparable descriptors fall back to their printed identity.
	return activeKey{verb: verb, id: fmt.Sprintf("%T:%s", desc, desc.String())}
}

// WouldCycle reports whether (verb, desc) is already being looked up.
func (c *CycleDetector) WouldCycle(verb ir.Verb, desc ir.Descriptor) bool {
	return c.active[keyOf(verb, desc)]
}

// Record marks (verb, desc) as active and returns the new depth.
func (c *CycleDetector) Record(verb ir.Verb, desc ir.Descriptor) int {
	c.active[keyOf(verb, desc)] = true
	c.depth++
	return c.depth
}

// Clear unmarks (verb, desc) once its lookup returns.
func (c *CycleDetector) Clear(verb ir.Verb, desc ir.Descriptor) {
	delete(c.active, keyOf(verb, desc))
	c.depth--
}

// Depth returns the number of active lookups.
func (c *CycleDetector) Depth() int {
	return c.depth
}
