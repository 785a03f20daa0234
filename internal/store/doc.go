// Package store provides SQLite-backed lint history for type catalogs.
//
// Each lint run records:
//   - Runs: one row per lint invocation, keyed by a UUIDv7
//   - Patterns: rendered patterns, content addressed by fingerprint
//   - Run types: the pattern fingerprint of every type in the run
//   - Findings: the ambiguities reported, in report order
//
// Ordering uses seq (a logical clock), never timestamps; the creation
// time of a run is recovered from its UUIDv7 when needed.
//
// # Opening
//
// Lint opens history writable: the file and its tables are created on
// first use, older schemas are upgraded, and WAL lets several lint runs
// share one file. History and search commands open with ReadOnly, which
// refuses files that hold no history and never writes.
package store
