// Package tokens implements the token model for recovery runs.
//
// A token list describes the shape of a partially-known secret: one slot per
// word position (seed recovery) or character run (password recovery), each
// slot carrying an ordered list of literal alternatives plus optional
// wildcard expansion rules and anchor constraints.
//
// PARSE-THEN-RESOLVE:
// Parsing is two-phase. ParseTokenList reads raw lines into token groups,
// then Resolve places anchored tokens into their pinned slots and validates
// the result. Validation failures are ConfigError values - fatal before any
// search work starts, never a partial parse.
//
// INVARIANTS:
//   - Every resolved PositionSpec has cardinality >= 1. A position with zero
//     alternatives is a configuration error, not an empty-result condition.
//   - Resolution is deterministic: the same input bytes always produce the
//     same ordered []PositionSpec, which is what makes space fingerprints
//     stable across processes.
package tokens
