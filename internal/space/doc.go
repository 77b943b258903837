// Package space implements the candidate enumerator: the composition of
// position specs, mutation families, and budgets into a single totally
// ordered index space with O(positions) ordinal decoding.
//
// MIXED-RADIX CORE:
// Each position contributes a local variant list (literal alternatives,
// then typo variants, then wildcard substitutions). With no global budgets
// the space is a plain mixed-radix number: leftmost position is the most
// significant digit, the rightmost position varies fastest.
//
// BUDGET CLASSES:
// Global budgets are not per-digit radices. The space is partitioned into
// classes keyed by (swap count, typo count, wildcard count). Classes are
// laid out contiguously in ascending order of total mutation count, ties
// broken by swap count then typo count. Low ordinals therefore carry fewer
// mutations: an interrupted search has always tried the "closer" guesses
// first. Within a class:
//
//   - swap-set rank is the most significant digit,
//   - then the per-position walk, where exactly `typo count` positions take
//     a typo variant and `wildcard count` take a substitution, counted by a
//     suffix dynamic program so decode touches each position once.
//
// Typos apply to the base sequence first; swaps then permute the mutated
// sequence.
//
// BIJECTION:
// CandidateAt(i) decodes ordinal i into a Selection (which variant at each
// position, which swap set) and OrdinalOf(Selection) inverts it exactly.
// Both are pure functions of the immutable Space: two processes holding the
// same configuration always agree, which is what makes partitioning and
// resume correct. The bijection is over selections; two selections can
// render the same string when a base value has repeated characters, and the
// counts deliberately follow the selection space.
//
// All counts and ordinals are big.Int: a 24-word seed with a generous typo
// budget overflows 64 bits.
package space
