// Package store provides durable storage for run checkpoints and results.
//
// Backed by SQLite with WAL mode. One database file is one autosave: it
// holds the checkpoint rows of every worker slice driven by this process
// plus the result row if a match was found.
//
// OWNERSHIP:
// A checkpoint row is owned exclusively by the worker driving its range.
// Workers never read or write each other's rows, so no cross-row
// coordination is needed beyond SQLite's own single-writer discipline.
//
// FINGERPRINT VALIDATION lives in the partition package, not here: the
// store faithfully persists and returns what it was given, and the resume
// path decides whether a loaded checkpoint still matches the rebuilt
// candidate space.
package store
