package space

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/seedcomb/internal/mutate"
	"github.com/roach88/seedcomb/internal/tokens"
)

func pos(alts ...string) tokens.PositionSpec {
	return tokens.PositionSpec{
		Alternatives: alts,
		Required:     true,
		AnchorExact:  tokens.NoAnchor,
		AnchorMin:    tokens.NoAnchor,
		AnchorMax:    tokens.NoAnchor,
	}
}

func posWild(alts []string, wildcards ...string) tokens.PositionSpec {
	p := pos(alts...)
	p.Wildcards = wildcards
	return p
}

func mustSpace(t *testing.T, kind Kind, specs []tokens.PositionSpec, typos mutate.TypoConfig, sets tokens.WildcardSets, budget Budget) *Space {
	t.Helper()
	s, err := New(kind, specs, typos, sets, budget)
	require.NoError(t, err)
	return s
}

func TestCardinality_CartesianProduct(t *testing.T) {
	// Budget 0 reduces to the literal cartesian product.
	s := mustSpace(t, KindPassword,
		[]tokens.PositionSpec{pos("a", "b"), pos("x", "y")},
		mutate.TypoConfig{}, nil, NewBudget(0, 0, 0))

	assert.Equal(t, int64(4), s.Cardinality().Int64())
}

func TestCandidateAt_DocumentedOrder(t *testing.T) {
	// The concrete two-position scenario: {"a","b"} x {"x","y"}, budget 0.
	// Rightmost position varies fastest.
	s := mustSpace(t, KindPassword,
		[]tokens.PositionSpec{pos("a", "b"), pos("x", "y")},
		mutate.TypoConfig{}, nil, NewBudget(0, 0, 0))

	want := []string{"ax", "ay", "bx", "by"}
	for i, expected := range want {
		c, err := s.CandidateAt(big.NewInt(int64(i)))
		require.NoError(t, err)
		assert.Equal(t, expected, c.Text, "ordinal %d", i)
	}
}

func TestCardinality_OneSwap(t *testing.T) {
	// 4-word sequence with max 1 swap: 1 (no swap) + C(4,2) = 7.
	s := mustSpace(t, KindSeed,
		[]tokens.PositionSpec{pos("w1"), pos("w2"), pos("w3"), pos("w4")},
		mutate.TypoConfig{}, nil, NewBudget(0, 1, 0))

	assert.Equal(t, int64(7), s.Cardinality().Int64())

	// Ordinal 0 is the unmutated baseline.
	c, err := s.CandidateAt(big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, "w1 w2 w3 w4", c.Text)
	assert.Empty(t, c.Selection.Swaps)
}

func TestCardinality_TypoClasses(t *testing.T) {
	// P1 = {"ab"} (2 delete variants), P2 = {"x","y"} (1 delete variant each).
	// Classes: 0 typos: 1*2 = 2; 1 typo: 2*2 + 1*2 = 6. Total 8.
	s := mustSpace(t, KindPassword,
		[]tokens.PositionSpec{pos("ab"), pos("x", "y")},
		mutate.TypoConfig{Delete: true}, nil, NewBudget(1, 0, 0))

	assert.Equal(t, int64(8), s.Cardinality().Int64())
}

func TestCardinality_Wildcards(t *testing.T) {
	s := mustSpace(t, KindPassword,
		[]tokens.PositionSpec{posWild([]string{"a"}, "digits")},
		mutate.TypoConfig{}, tokens.WildcardSets{"digits": {"0", "1"}},
		NewBudget(0, 0, 1))

	// baseline + two substitutions
	assert.Equal(t, int64(3), s.Cardinality().Int64())
}

func TestCardinality_MatchesExhaustiveEnumeration(t *testing.T) {
	// For every valid configuration below, walking [0,N) must yield N
	// distinct selections with no decode error.
	testCases := []struct {
		name   string
		kind   Kind
		specs  []tokens.PositionSpec
		typos  mutate.TypoConfig
		sets   tokens.WildcardSets
		budget Budget
	}{
		{
			name:   "product only",
			kind:   KindPassword,
			specs:  []tokens.PositionSpec{pos("a", "b", "c"), pos("x", "y")},
			budget: NewBudget(0, 0, 0),
		},
		{
			name:   "typos budget 2",
			kind:   KindPassword,
			specs:  []tokens.PositionSpec{pos("ab"), pos("cd"), pos("e")},
			typos:  mutate.TypoConfig{Delete: true, Transpose: true},
			budget: NewBudget(2, 0, 0),
		},
		{
			name:   "swaps budget 2",
			kind:   KindSeed,
			specs:  []tokens.PositionSpec{pos("w1"), pos("w2"), pos("w3"), pos("w4"), pos("w5")},
			budget: NewBudget(0, 2, 0),
		},
		{
			name:  "all families",
			kind:  KindSeed,
			specs: []tokens.PositionSpec{posWild([]string{"ab"}, "alt"), pos("cd"), pos("ef", "gh")},
			typos: mutate.TypoConfig{Delete: true},
			sets:  tokens.WildcardSets{"alt": {"zz"}},
			budget: Budget{
				MaxTypos: 1, MaxSwaps: 1, MaxWildcards: 1, MaxTotal: 2,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := mustSpace(t, tc.kind, tc.specs, tc.typos, tc.sets, tc.budget)
			n := s.Cardinality()
			require.True(t, n.IsInt64())

			seen := make(map[string]bool)
			for i := int64(0); i < n.Int64(); i++ {
				c, err := s.CandidateAt(big.NewInt(i))
				require.NoError(t, err, "ordinal %d", i)

				key := fmt.Sprintf("%v|%v", c.Selection.Choices, c.Selection.Swaps)
				assert.False(t, seen[key], "duplicate selection at ordinal %d", i)
				seen[key] = true
			}
			assert.Len(t, seen, int(n.Int64()))
		})
	}
}

func TestOrdinalRoundTrip(t *testing.T) {
	s := mustSpace(t, KindSeed,
		[]tokens.PositionSpec{posWild([]string{"ab"}, "alt"), pos("cd"), pos("ef", "gh"), pos("ij")},
		mutate.TypoConfig{Delete: true, Transpose: true},
		tokens.WildcardSets{"alt": {"zz", "qq"}},
		Budget{MaxTypos: 2, MaxSwaps: 1, MaxWildcards: 1, MaxTotal: 2})

	n := s.Cardinality()
	require.True(t, n.IsInt64())

	for i := int64(0); i < n.Int64(); i++ {
		c, err := s.CandidateAt(big.NewInt(i))
		require.NoError(t, err)

		back, err := s.OrdinalOf(c.Selection)
		require.NoError(t, err, "ordinal %d", i)
		assert.Equal(t, int64(i), back.Int64(), "round trip for ordinal %d", i)
	}
}

func TestClassOrdering_FewerMutationsFirst(t *testing.T) {
	s := mustSpace(t, KindPassword,
		[]tokens.PositionSpec{pos("ab"), pos("cd")},
		mutate.TypoConfig{Delete: true}, nil,
		Budget{MaxTypos: 1, MaxSwaps: 1, MaxWildcards: 0, MaxTotal: 2})

	// Classes: (s0,t0) = 1, then ties at total 1 broken by swap count
	// ascending: (s0,t1) = 4, then (s1,t0) = 1. Total 6.
	require.Equal(t, int64(6), s.Cardinality().Int64())

	baseline, err := s.CandidateAt(big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, "abcd", baseline.Text)
	assert.Empty(t, baseline.Selection.Swaps)

	// Ordinals 1..4 are single-typo candidates, no swaps.
	for i := int64(1); i <= 4; i++ {
		c, err := s.CandidateAt(big.NewInt(i))
		require.NoError(t, err)
		assert.Empty(t, c.Selection.Swaps, "ordinal %d", i)
	}

	// Ordinal 5 is the single-swap candidate.
	c, err := s.CandidateAt(big.NewInt(5))
	require.NoError(t, err)
	assert.Len(t, c.Selection.Swaps, 1)
	assert.Equal(t, "cdab", c.Text)
}

func TestNew_ZeroCandidatesIsError(t *testing.T) {
	// A position with no literals can only be satisfied by a wildcard, but
	// the wildcard budget is zero: the space is over-constrained.
	specs := []tokens.PositionSpec{posWild(nil, "digits")}
	_, err := New(KindPassword, specs, mutate.TypoConfig{},
		tokens.WildcardSets{"digits": {"0"}}, NewBudget(0, 0, 0))

	require.Error(t, err)
	assert.True(t, IsSpaceError(err, ErrCodeEmptySpace), "got %v", err)
}

func TestNew_NoPositionsIsError(t *testing.T) {
	_, err := New(KindPassword, nil, mutate.TypoConfig{}, nil, NewBudget(0, 0, 0))
	require.Error(t, err)
	assert.True(t, IsSpaceError(err, ErrCodeEmptySpace))
}

func TestNew_NegativeBudgetIsError(t *testing.T) {
	_, err := New(KindPassword, []tokens.PositionSpec{pos("a")},
		mutate.TypoConfig{}, nil, Budget{MaxTypos: -1})
	require.Error(t, err)
	assert.True(t, IsSpaceError(err, ErrCodeInvalidBudget))
}

func TestNew_DanglingWildcardIsError(t *testing.T) {
	_, err := New(KindPassword,
		[]tokens.PositionSpec{posWild([]string{"a"}, "nope")},
		mutate.TypoConfig{}, nil, NewBudget(0, 0, 0))
	require.Error(t, err)
	assert.True(t, tokens.IsConfigError(err))
}

func TestCandidateAt_OrdinalOutOfRange(t *testing.T) {
	s := mustSpace(t, KindPassword,
		[]tokens.PositionSpec{pos("a")},
		mutate.TypoConfig{}, nil, NewBudget(0, 0, 0))

	_, err := s.CandidateAt(big.NewInt(1))
	require.Error(t, err)
	assert.True(t, IsSpaceError(err, ErrCodeOrdinalOutOfRange))

	_, err = s.CandidateAt(big.NewInt(-1))
	require.Error(t, err)
	assert.True(t, IsSpaceError(err, ErrCodeOrdinalOutOfRange))
}

func TestOptionalPosition_EmptyWordDroppedFromSeedText(t *testing.T) {
	optional := tokens.PositionSpec{
		Alternatives: []string{"extra", ""},
		Required:     false,
		AnchorExact:  tokens.NoAnchor,
		AnchorMin:    tokens.NoAnchor,
		AnchorMax:    tokens.NoAnchor,
	}
	s := mustSpace(t, KindSeed,
		[]tokens.PositionSpec{pos("w1"), optional, pos("w2")},
		mutate.TypoConfig{}, nil, NewBudget(0, 0, 0))

	require.Equal(t, int64(2), s.Cardinality().Int64())

	c0, err := s.CandidateAt(big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, "w1 extra w2", c0.Text)

	c1, err := s.CandidateAt(big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, "w1 w2", c1.Text)
}
