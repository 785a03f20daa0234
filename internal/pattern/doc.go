// Package pattern describes the shape of encoded data and decides how
// strongly one shape overlaps another.
//
// Patterns are built by rules for the describe-pattern verb. Match
// compares two patterns on a four-point lattice (Always, Sometimes,
// Potential, Never) and IsAmbiguous uses it to find union branches that
// would swallow data meant for a later branch.
//
// Recursive types produce cyclic patterns through Forward nodes; every
// traversal in this package is cycle safe.
package pattern
