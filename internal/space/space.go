package space

import (
	"math/big"

	"github.com/roach88/seedcomb/internal/mutate"
	"github.com/roach88/seedcomb/internal/tokens"
)

// Kind selects how candidate words are joined into the tested string.
type Kind string

const (
	// KindSeed joins words with single spaces (mnemonic phrases).
	KindSeed Kind = "seed"
	// KindPassword concatenates words directly (password fragments).
	KindPassword Kind = "password"
)

// Budget bounds how far candidates may stray from the baseline. Budgets are
// monotonic filters: they only restrict the unconstrained product, never
// grow it.
type Budget struct {
	MaxTypos     int
	MaxSwaps     int
	MaxWildcards int

	// MaxTotal caps typos+swaps+wildcards combined.
	MaxTotal int
}

// NewBudget builds a budget with MaxTotal defaulting to the sum of the
// per-family limits (no extra combined restriction).
func NewBudget(typos, swaps, wildcards int) Budget {
	return Budget{
		MaxTypos:     typos,
		MaxSwaps:     swaps,
		MaxWildcards: wildcards,
		MaxTotal:     typos + swaps + wildcards,
	}
}

func (b Budget) validate() error {
	if b.MaxTypos < 0 || b.MaxSwaps < 0 || b.MaxWildcards < 0 || b.MaxTotal < 0 {
		return newSpaceError(ErrCodeInvalidBudget,
			"budget limits must be non-negative (typos=%d swaps=%d wildcards=%d total=%d)",
			b.MaxTypos, b.MaxSwaps, b.MaxWildcards, b.MaxTotal)
	}
	return nil
}

// mutationClass is one contiguous ordinal range: all candidates with exactly
// this many swaps, typos, and wildcard substitutions.
type mutationClass struct {
	swaps     int
	typos     int
	wildcards int

	posCount  *big.Int // per-position walk count for (typos, wildcards)
	swapCount *big.Int // swap-set count for swaps
	count     *big.Int // posCount * swapCount
	offset    *big.Int // cumulative start ordinal
}

// Space is an immutable candidate space. Safe to share across all worker
// goroutines without locking.
type Space struct {
	kind      Kind
	specs     []tokens.PositionSpec
	budget    Budget
	typoCfg   mutate.TypoConfig
	sets      tokens.WildcardSets
	positions []mutate.PositionVariants

	// suffix[j][a][b] counts per-position walks over positions j.. with
	// exactly a typo positions and b wildcard positions remaining.
	suffix [][][]*big.Int

	classes     []mutationClass
	total       *big.Int
	fingerprint string
}

// New composes a candidate space. All configuration problems - empty
// positions, dangling wildcard references, invalid budgets, a zero-candidate
// result - are reported here, before any search starts.
func New(kind Kind, specs []tokens.PositionSpec, typoCfg mutate.TypoConfig, sets tokens.WildcardSets, budget Budget) (*Space, error) {
	if err := budget.validate(); err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, newSpaceError(ErrCodeEmptySpace, "no positions configured")
	}
	for slot, spec := range specs {
		if spec.Cardinality() == 0 && len(spec.Wildcards) == 0 {
			return nil, newSpaceError(ErrCodeEmptySpace,
				"position %d has no alternatives", slot)
		}
	}
	if err := tokens.ValidateWildcards(specs, sets); err != nil {
		return nil, err
	}

	expander := mutate.NewExpander(typoCfg, sets)
	positions := make([]mutate.PositionVariants, len(specs))
	for i, spec := range specs {
		positions[i] = expander.ForPosition(spec)
	}

	s := &Space{
		kind:      kind,
		specs:     specs,
		budget:    budget,
		typoCfg:   typoCfg,
		sets:      sets,
		positions: positions,
	}
	s.suffix = s.buildSuffixCounts()
	s.classes, s.total = s.buildClasses()

	if s.total.Sign() == 0 {
		return nil, newSpaceError(ErrCodeEmptySpace,
			"configuration yields zero candidates (over-constrained budget)")
	}

	fp, err := s.computeFingerprint()
	if err != nil {
		return nil, err
	}
	s.fingerprint = fp

	return s, nil
}

// Cardinality returns N, the total candidate count.
// The caller must not mutate the result.
func (s *Space) Cardinality() *big.Int {
	return s.total
}

// Fingerprint returns the stable hash of this space's configuration.
func (s *Space) Fingerprint() string {
	return s.fingerprint
}

// Kind returns the candidate kind.
func (s *Space) Kind() Kind {
	return s.kind
}

// Positions returns the number of positions.
func (s *Space) Positions() int {
	return len(s.specs)
}

// buildSuffixCounts fills suffix[j][a][b] bottom-up:
//
//	suffix[L][0][0] = 1
//	suffix[j][a][b] = u_j*suffix[j+1][a][b]
//	               + t_j*suffix[j+1][a-1][b]
//	               + w_j*suffix[j+1][a][b-1]
//
// where u/t/w are the literal, typo, and wildcard cardinalities of position
// j. This is what lets decode run in time proportional to the number of
// positions rather than to N.
func (s *Space) buildSuffixCounts() [][][]*big.Int {
	n := len(s.positions)
	maxT := s.budget.MaxTypos
	maxW := s.budget.MaxWildcards

	suffix := make([][][]*big.Int, n+1)
	for j := range suffix {
		suffix[j] = make([][]*big.Int, maxT+1)
		for a := range suffix[j] {
			suffix[j][a] = make([]*big.Int, maxW+1)
			for b := range suffix[j][a] {
				suffix[j][a][b] = new(big.Int)
			}
		}
	}
	suffix[n][0][0].SetInt64(1)

	for j := n - 1; j >= 0; j-- {
		pv := s.positions[j]
		u := big.NewInt(int64(pv.LiteralCount()))
		t := big.NewInt(int64(pv.TypoCount()))
		w := big.NewInt(int64(pv.WildcardCount()))

		for a := 0; a <= maxT; a++ {
			for b := 0; b <= maxW; b++ {
				acc := suffix[j][a][b]
				acc.Mul(u, suffix[j+1][a][b])
				if a > 0 {
					acc.Add(acc, new(big.Int).Mul(t, suffix[j+1][a-1][b]))
				}
				if b > 0 {
					acc.Add(acc, new(big.Int).Mul(w, suffix[j+1][a][b-1]))
				}
			}
		}
	}

	return suffix
}

// buildClasses lays out the budget classes in their documented order:
// ascending total mutation count, ties by swap count then typo count.
func (s *Space) buildClasses() ([]mutationClass, *big.Int) {
	var classes []mutationClass
	offset := new(big.Int)

	for total := 0; total <= s.budget.MaxTotal; total++ {
		for swaps := 0; swaps <= s.budget.MaxSwaps && swaps <= total; swaps++ {
			for typos := 0; typos <= s.budget.MaxTypos && swaps+typos <= total; typos++ {
				wildcards := total - swaps - typos
				if wildcards > s.budget.MaxWildcards {
					continue
				}

				posCount := s.suffix[0][typos][wildcards]
				swapCount := mutate.SwapSetCount(len(s.positions), swaps)
				count := new(big.Int).Mul(posCount, swapCount)
				if count.Sign() == 0 {
					continue
				}

				classes = append(classes, mutationClass{
					swaps:     swaps,
					typos:     typos,
					wildcards: wildcards,
					posCount:  posCount,
					swapCount: swapCount,
					count:     count,
					offset:    new(big.Int).Set(offset),
				})
				offset.Add(offset, count)
			}
		}
	}

	return classes, offset
}

// classFor locates the class containing ordinal i and returns the class and
// the ordinal's offset within it. Classes are few; a linear scan is fine.
func (s *Space) classFor(i *big.Int) (*mutationClass, *big.Int, error) {
	if i.Sign() < 0 || i.Cmp(s.total) >= 0 {
		return nil, nil, newSpaceError(ErrCodeOrdinalOutOfRange,
			"ordinal %s out of range [0,%s)", i, s.total)
	}
	for idx := len(s.classes) - 1; idx >= 0; idx-- {
		c := &s.classes[idx]
		if i.Cmp(c.offset) >= 0 {
			return c, new(big.Int).Sub(i, c.offset), nil
		}
	}
	// Unreachable: class 0 has offset 0.
	return nil, nil, newSpaceError(ErrCodeOrdinalOutOfRange, "ordinal %s has no class", i)
}

// findClass returns the class with exactly these mutation counts, if laid
// out (zero-count classes are not).
func (s *Space) findClass(swaps, typos, wildcards int) (*mutationClass, error) {
	for idx := range s.classes {
		c := &s.classes[idx]
		if c.swaps == swaps && c.typos == typos && c.wildcards == wildcards {
			return c, nil
		}
	}
	return nil, newSpaceError(ErrCodeSelectionMismatch,
		"no class with %d swaps, %d typos, %d wildcards in this space",
		swaps, typos, wildcards)
}
