package mutate

import (
	"fmt"

	"github.com/roach88/seedcomb/internal/tokens"
)

// Expander binds a typo configuration and wildcard definitions to token
// positions. It is read-only after construction and safe to share across
// worker goroutines.
type Expander struct {
	typos TypoConfig
	sets  tokens.WildcardSets
}

// NewExpander creates an expander. sets may be nil when no position uses
// wildcards; ValidateWildcards catches dangling references before anything
// reaches the expander.
func NewExpander(typos TypoConfig, sets tokens.WildcardSets) *Expander {
	return &Expander{typos: typos, sets: sets}
}

// TypoConfig returns the typo configuration, for fingerprint serialization.
func (e *Expander) TypoConfig() TypoConfig {
	return e.typos
}

// ForPosition computes the variant space of one position.
func (e *Expander) ForPosition(spec tokens.PositionSpec) PositionVariants {
	pv := PositionVariants{spec: spec, typos: e.typos}

	for _, alt := range spec.Alternatives {
		n := e.typos.TypoCount(alt)
		pv.typoOffsets = append(pv.typoOffsets, pv.typoTotal)
		pv.typoTotal += n
	}

	for _, name := range spec.Wildcards {
		values := e.sets[name]
		pv.wildValues = append(pv.wildValues, values...)
	}

	return pv
}

// PositionVariants exposes the three locally countable variant classes of a
// single position: literal alternatives (the unmutated choices), typo
// variants across all alternatives, and wildcard substitutions.
//
// Indexed accessors construct exactly one variant; nothing is materialized
// up front except the wildcard value list, which is already materialized in
// its definition file.
type PositionVariants struct {
	spec        tokens.PositionSpec
	typos       TypoConfig
	typoOffsets []int // start offset of each alternative's typo range
	typoTotal   int
	wildValues  []string
}

// LiteralCount returns the number of unmutated alternatives.
func (pv PositionVariants) LiteralCount() int {
	return len(pv.spec.Alternatives)
}

// TypoCount returns the number of single-typo variants across all
// alternatives of this position.
func (pv PositionVariants) TypoCount() int {
	return pv.typoTotal
}

// WildcardCount returns the number of wildcard substitution values.
func (pv PositionVariants) WildcardCount() int {
	return len(pv.wildValues)
}

// LiteralAt returns unmutated alternative i.
func (pv PositionVariants) LiteralAt(i int) (string, error) {
	if i < 0 || i >= len(pv.spec.Alternatives) {
		return "", fmt.Errorf("literal index %d out of range [0,%d)", i, len(pv.spec.Alternatives))
	}
	return pv.spec.Alternatives[i], nil
}

// TypoAt returns typo variant i. Variants are ordered by alternative first
// (token-list order), then by family within the alternative.
func (pv PositionVariants) TypoAt(i int) (string, error) {
	if i < 0 || i >= pv.typoTotal {
		return "", fmt.Errorf("typo index %d out of range [0,%d)", i, pv.typoTotal)
	}
	// Find the owning alternative by offset scan; position counts are small.
	alt := len(pv.typoOffsets) - 1
	for j := 1; j < len(pv.typoOffsets); j++ {
		if i < pv.typoOffsets[j] {
			alt = j - 1
			break
		}
	}
	return pv.typos.TypoAt(pv.spec.Alternatives[alt], i-pv.typoOffsets[alt])
}

// WildcardAt returns wildcard substitution i, ordered by the position's
// wildcard reference order, then by definition order within the set.
func (pv PositionVariants) WildcardAt(i int) (string, error) {
	if i < 0 || i >= len(pv.wildValues) {
		return "", fmt.Errorf("wildcard index %d out of range [0,%d)", i, len(pv.wildValues))
	}
	return pv.wildValues[i], nil
}
