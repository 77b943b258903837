package space

import (
	"math/big"
	"strings"

	"github.com/roach88/seedcomb/internal/mutate"
)

// ChoiceKind says which variant family a position drew from.
type ChoiceKind int

const (
	// ChoiceLiteral selects an unmutated alternative.
	ChoiceLiteral ChoiceKind = iota
	// ChoiceTypo selects a single-typo variant.
	ChoiceTypo
	// ChoiceWildcard selects a wildcard substitution.
	ChoiceWildcard
)

// Choice is one position's decoded variant selection.
type Choice struct {
	Kind  ChoiceKind
	Index int // index within the family's local range
}

// Selection is the full decoded form of an ordinal: per-position choices in
// slot order plus the applied swap set. OrdinalOf inverts it exactly.
type Selection struct {
	Choices []Choice
	Swaps   []mutate.Swap
}

// Candidate is one concrete secret to test.
type Candidate struct {
	// Ordinal is the candidate's index in the space's total order.
	Ordinal *big.Int

	// Words holds the per-slot values after typos and swaps.
	Words []string

	// Text is the joined candidate string handed to the oracle.
	Text string

	// Selection records how the candidate was derived, for tracing and for
	// the ordinal round-trip.
	Selection Selection
}

// CandidateAt decodes ordinal i into its candidate. Pure and stateless:
// any process holding an identical Space gets an identical candidate, which
// is the invariant that makes distributed partitioning and resume exact.
//
// Runs in time proportional to the number of positions.
func (s *Space) CandidateAt(i *big.Int) (Candidate, error) {
	class, rem, err := s.classFor(i)
	if err != nil {
		return Candidate{}, err
	}

	// Swap rank is the most significant digit of the in-class index.
	swapRank := new(big.Int)
	posIdx := new(big.Int)
	swapRank.DivMod(rem, class.posCount, posIdx)

	words, choices, err := s.decodeWalk(class, posIdx)
	if err != nil {
		return Candidate{}, err
	}

	swaps, err := mutate.UnrankSwapSet(len(s.positions), class.swaps, swapRank)
	if err != nil {
		return Candidate{}, err
	}
	words = mutate.ApplySwaps(words, swaps)

	return Candidate{
		Ordinal:   new(big.Int).Set(i),
		Words:     words,
		Text:      s.join(words),
		Selection: Selection{Choices: choices, Swaps: swaps},
	}, nil
}

// OrdinalOf re-encodes a selection into its ordinal: the exact inverse of
// CandidateAt's decoding.
func (s *Space) OrdinalOf(sel Selection) (*big.Int, error) {
	if len(sel.Choices) != len(s.positions) {
		return nil, newSpaceError(ErrCodeSelectionMismatch,
			"selection has %d choices, space has %d positions",
			len(sel.Choices), len(s.positions))
	}

	typos, wildcards := 0, 0
	for _, c := range sel.Choices {
		switch c.Kind {
		case ChoiceTypo:
			typos++
		case ChoiceWildcard:
			wildcards++
		}
	}

	class, err := s.findClass(len(sel.Swaps), typos, wildcards)
	if err != nil {
		return nil, err
	}

	posIdx, err := s.encodeWalk(class, sel.Choices)
	if err != nil {
		return nil, err
	}

	swapRank, err := mutate.RankSwapSet(len(s.positions), sel.Swaps)
	if err != nil {
		return nil, err
	}

	ordinal := new(big.Int).Mul(swapRank, class.posCount)
	ordinal.Add(ordinal, posIdx)
	ordinal.Add(ordinal, class.offset)
	return ordinal, nil
}

// decodeWalk peels one position per step. At each position the branch order
// is literal variants, then typo variants, then wildcard substitutions;
// each concrete variant owns a contiguous block sized by the suffix count of
// the remaining positions, so later positions vary fastest.
func (s *Space) decodeWalk(class *mutationClass, idx *big.Int) ([]string, []Choice, error) {
	n := len(s.positions)
	words := make([]string, n)
	choices := make([]Choice, n)

	rem := new(big.Int).Set(idx)
	a, b := class.typos, class.wildcards

	for j := 0; j < n; j++ {
		pv := s.positions[j]

		kind, v, err := s.decodePosition(pv, j, &a, &b, rem)
		if err != nil {
			return nil, nil, err
		}
		choices[j] = Choice{Kind: kind, Index: v}

		switch kind {
		case ChoiceLiteral:
			words[j], err = pv.LiteralAt(v)
		case ChoiceTypo:
			words[j], err = pv.TypoAt(v)
		case ChoiceWildcard:
			words[j], err = pv.WildcardAt(v)
		}
		if err != nil {
			return nil, nil, err
		}
	}

	return words, choices, nil
}

// decodePosition consumes one position from rem, mutating the remaining
// typo/wildcard counters in place.
func (s *Space) decodePosition(pv mutate.PositionVariants, j int, a, b *int, rem *big.Int) (ChoiceKind, int, error) {
	type branch struct {
		kind  ChoiceKind
		n     int
		block *big.Int
		da    int
		db    int
	}

	branches := []branch{
		{ChoiceLiteral, pv.LiteralCount(), s.suffix[j+1][*a][*b], 0, 0},
	}
	if *a > 0 {
		branches = append(branches, branch{ChoiceTypo, pv.TypoCount(), s.suffix[j+1][*a-1][*b], 1, 0})
	}
	if *b > 0 {
		branches = append(branches, branch{ChoiceWildcard, pv.WildcardCount(), s.suffix[j+1][*a][*b-1], 0, 1})
	}

	for _, br := range branches {
		if br.n == 0 || br.block.Sign() == 0 {
			continue
		}
		width := new(big.Int).Mul(big.NewInt(int64(br.n)), br.block)
		if rem.Cmp(width) < 0 {
			v := new(big.Int)
			v.DivMod(rem, br.block, rem)
			*a -= br.da
			*b -= br.db
			return br.kind, int(v.Int64()), nil
		}
		rem.Sub(rem, width)
	}

	return 0, 0, newSpaceError(ErrCodeOrdinalOutOfRange,
		"in-class index exhausted at position %d", j)
}

// encodeWalk is the forward accumulation inverse of decodeWalk.
func (s *Space) encodeWalk(class *mutationClass, choices []Choice) (*big.Int, error) {
	idx := new(big.Int)
	a, b := class.typos, class.wildcards

	for j, choice := range choices {
		pv := s.positions[j]

		litBlock := s.suffix[j+1][a][b]
		var typoBlock, wildBlock *big.Int
		if a > 0 {
			typoBlock = s.suffix[j+1][a-1][b]
		}
		if b > 0 {
			wildBlock = s.suffix[j+1][a][b-1]
		}

		switch choice.Kind {
		case ChoiceLiteral:
			if choice.Index < 0 || choice.Index >= pv.LiteralCount() {
				return nil, newSpaceError(ErrCodeSelectionMismatch,
					"position %d literal index %d out of range", j, choice.Index)
			}
			idx.Add(idx, new(big.Int).Mul(big.NewInt(int64(choice.Index)), litBlock))

		case ChoiceTypo:
			if typoBlock == nil {
				return nil, newSpaceError(ErrCodeSelectionMismatch,
					"position %d selects a typo but the typo budget is spent", j)
			}
			if choice.Index < 0 || choice.Index >= pv.TypoCount() {
				return nil, newSpaceError(ErrCodeSelectionMismatch,
					"position %d typo index %d out of range", j, choice.Index)
			}
			idx.Add(idx, new(big.Int).Mul(big.NewInt(int64(pv.LiteralCount())), litBlock))
			idx.Add(idx, new(big.Int).Mul(big.NewInt(int64(choice.Index)), typoBlock))
			a--

		case ChoiceWildcard:
			if wildBlock == nil {
				return nil, newSpaceError(ErrCodeSelectionMismatch,
					"position %d selects a wildcard but the wildcard budget is spent", j)
			}
			if choice.Index < 0 || choice.Index >= pv.WildcardCount() {
				return nil, newSpaceError(ErrCodeSelectionMismatch,
					"position %d wildcard index %d out of range", j, choice.Index)
			}
			idx.Add(idx, new(big.Int).Mul(big.NewInt(int64(pv.LiteralCount())), litBlock))
			if typoBlock != nil {
				idx.Add(idx, new(big.Int).Mul(big.NewInt(int64(pv.TypoCount())), typoBlock))
			}
			idx.Add(idx, new(big.Int).Mul(big.NewInt(int64(choice.Index)), wildBlock))
			b--

		default:
			return nil, newSpaceError(ErrCodeSelectionMismatch,
				"position %d has unknown choice kind %d", j, choice.Kind)
		}
	}

	if a != 0 || b != 0 {
		return nil, newSpaceError(ErrCodeSelectionMismatch,
			"selection does not consume its class budget (typos left %d, wildcards left %d)", a, b)
	}

	return idx, nil
}

// join renders the candidate text. Seed phrases join words with spaces,
// skipping empties from optional positions; passwords concatenate directly.
func (s *Space) join(words []string) string {
	if s.kind == KindPassword {
		return strings.Join(words, "")
	}
	parts := make([]string, 0, len(words))
	for _, w := range words {
		if w != "" {
			parts = append(parts, w)
		}
	}
	return strings.Join(parts, " ")
}
