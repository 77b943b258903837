// Package plan loads recovery plan files: the one document an operator
// writes to describe a search. A plan names the token list, the mutation
// budgets, and the oracle target, and compiles into a candidate space plus
// a configured oracle.
//
// Plans are CUE (.cue) or YAML (.yaml/.yml); both decode into the same
// document shape. CUE plans get the full constraint language, YAML plans
// are the low-friction path.
package plan
