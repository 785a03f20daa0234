// Package ir provides the foundational types shared by every other package:
// the encoded value model, canonical JSON, fingerprints, verbs and the
// action signatures produced by the engine.
//
// ir imports nothing internal. All other internal packages import ir.
//
// Key constraints:
//   - Encoded values form a sealed interface (Value); nil is never a Value
//   - Object keys are iterated in RFC 8785 order for determinism
//   - Verbs are comparable so (verb, descriptor) can key a map
package ir
