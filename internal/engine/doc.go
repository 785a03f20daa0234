// Package engine resolves a verb and a type descriptor to an action by
// asking an ordered list of rules.
//
// ARCHITECTURE:
//
// Chain of responsibility:
// Rules are tried in declaration order and the first non-nil action wins.
// Rules build actions for container types by calling back into the engine
// for the contained types, so the engine is reentrant within one call
// stack.
//
// Lookup flow:
//  1. nil type: MISSING_TYPE (or the fallback, for LookupOptional)
//  2. cache hit, resolved or in flight: return it
//  3. register a forward cell in the cache
//  4. run rules, then the fallback
//  5. success: fulfil the forward and cache the action
//  6. failure: release the forward and return the error
//
// Recursive types:
// A rule that asks for the type currently being built receives the
// forward cell's placeholder. Once the outer lookup completes, the
// placeholder delegates to the finished action.
//
// Concurrency:
// An Engine is single-writer. Use Fork or Pool to give each goroutine its
// own cache; rules are shared read-only.
package engine
