// Package cache memoizes engine actions and breaks cycles in recursive
// types with forward cells.
//
// Lifecycle per (verb, descriptor):
//
//	absent -> in flight (*Forward) -> resolved (action)
//	             |
//	             +-> absent  (lookup failed; Release)
//
// Complete fulfils the forward in place before replacing it, so any
// placeholder captured during construction ends up delegating to the
// finished action.
package cache
