// Package mutate implements the mutation expander: the variant families that
// turn a baseline token value into its candidate variants.
//
// Three families exist:
//
//   - Typos: single-character edits of a literal alternative
//     (case-change, delete, insert, replace, transpose - each independently
//     toggleable).
//   - Wildcards: whole-value substitutions drawn from named external lists.
//   - Swaps: position permutations for seed recovery - up to k disjoint
//     pairs of positions exchanging their contents.
//
// COUNT, DON'T GENERATE:
// Every family exposes a closed-form cardinality and an indexed accessor
// (variant i of value v). Nothing is materialized: the enumerator asks for
// one variant at a time, and counting a 24-word swap space happens
// analytically because the naive product is only tractable in closed form.
//
// ORDERING:
// Variant order within a family, family order within a position
// (typos before wildcards; typo families alphabetically: case, delete,
// insert, replace, transpose), and the canonical swap-set order are all
// fixed. Checkpoints encode ordinals against this order, so it must never
// change between releases.
package mutate
