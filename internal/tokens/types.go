package tokens

// NoAnchor marks the absence of an anchor constraint on a token group.
const NoAnchor = -1

// PositionSpec is one slot in the candidate: a word position in a seed
// phrase or a character run in a password.
//
// Alternatives are ordered; the order is part of the space definition and is
// preserved verbatim from the token list. Wildcards name wildcard sets whose
// values are appended as substitution variants by the mutation expander.
type PositionSpec struct {
	// Alternatives holds the literal values this position may take, in
	// token-list order. Never empty after Resolve.
	Alternatives []string

	// Wildcards lists the names of wildcard sets applicable to this
	// position. Expansion happens in the mutation layer; the names are
	// recorded here so the space fingerprint covers them.
	Wildcards []string

	// Required is false when the token list marked this position optional,
	// in which case the empty string is appended as a final alternative.
	Required bool

	// AnchorExact pins the position to an exact slot (0-based), or NoAnchor.
	AnchorExact int

	// AnchorMin requires the position to land at or after this slot
	// (0-based), or NoAnchor.
	AnchorMin int

	// AnchorMax requires the position to land at or before this slot
	// (0-based), or NoAnchor. The bounded range form ^n,m^ sets both
	// AnchorMin and AnchorMax.
	AnchorMax int
}

// Cardinality returns the number of literal alternatives, including the
// implicit empty alternative for optional positions.
func (p PositionSpec) Cardinality() int {
	return len(p.Alternatives)
}

// tokenGroup is one parsed block of the token list before anchor resolution.
type tokenGroup struct {
	spec PositionSpec
	line int // first line of the group, for error reporting
}
