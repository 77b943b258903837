// Package partition slices a candidate space into contiguous per-worker
// ordinal ranges and keeps each worker's progress durable.
//
// RANGES. A space of N ordinals split across M workers gives worker i the
// half-open range [ceil(i*N/M), ceil((i+1)*N/M)). Ranges are computed in
// arbitrary precision, never overlap, and cover the space exactly; sizes
// differ by at most one candidate.
//
// WORKERS. A Worker carries its range, a cursor (the next unverified
// ordinal), and a small state machine: idle, running, paused, exhausted,
// match_found. Exhausted and match_found are terminal.
//
// CHECKPOINTS. A Checkpointer periodically persists worker progress through
// the store package, retrying transient write failures with backoff. Resume
// reloads a prior checkpoint and validates the stored space fingerprint
// against the current space; a mismatch is fatal rather than a silent
// restart over a different space.
package partition
