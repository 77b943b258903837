package mutate

import (
	"fmt"
	"math/big"
)

// Swap is one transposition of two word positions, First < Second.
type Swap struct {
	First  int
	Second int
}

// SwapSetCount returns the number of ways to choose and apply exactly k
// disjoint swaps over a sequence of length length:
//
//	C(L,2) x C(L-2,2) x ... x C(L-2k+2,2) / k!
//
// The division by k! accounts for swap-order irrelevance. Computed in closed
// form - for L = 24 the naive generate-and-count is intractable.
func SwapSetCount(length, k int) *big.Int {
	if k < 0 || length < 0 {
		return big.NewInt(0)
	}
	if k == 0 {
		return big.NewInt(1)
	}
	if length < 2*k {
		return big.NewInt(0)
	}

	count := big.NewInt(1)
	for i := 0; i < k; i++ {
		m := int64(length - 2*i)
		pairs := new(big.Int).Mul(big.NewInt(m), big.NewInt(m-1))
		pairs.Div(pairs, big.NewInt(2)) // C(m,2)
		count.Mul(count, pairs)
	}

	fact := big.NewInt(1)
	for i := int64(2); i <= int64(k); i++ {
		fact.Mul(fact, big.NewInt(i))
	}
	return count.Div(count, fact)
}

// UnrankSwapSet returns the rank-th set of k disjoint swaps over length
// positions, in the canonical order.
//
// CANONICAL ORDER: walk the remaining positions smallest-first. The smallest
// remaining position is either unpaired (all such sets come first) or paired
// with each larger remaining position in ascending order. This makes the
// enumeration a direct walk of the recurrence
//
//	g(m,k) = g(m-1,k) + (m-1) * g(m-2,k-1)
//
// Returned swaps are sorted by First ascending.
func UnrankSwapSet(length, k int, rank *big.Int) ([]Swap, error) {
	total := SwapSetCount(length, k)
	if rank.Sign() < 0 || rank.Cmp(total) >= 0 {
		return nil, fmt.Errorf("swap rank %s out of range [0,%s)", rank, total)
	}

	avail := make([]int, length)
	for i := range avail {
		avail[i] = i
	}

	r := new(big.Int).Set(rank)
	var swaps []Swap

	for k > 0 {
		m := len(avail)

		// Case 1: smallest remaining position takes part in no swap.
		unpaired := SwapSetCount(m-1, k)
		if r.Cmp(unpaired) < 0 {
			avail = avail[1:]
			continue
		}
		r.Sub(r, unpaired)

		// Case 2: paired with avail[j]; each partner owns a block of
		// g(m-2, k-1) ranks.
		block := SwapSetCount(m-2, k-1)
		j := new(big.Int)
		j.DivMod(r, block, r)
		partner := int(j.Int64()) + 1

		swaps = append(swaps, Swap{First: avail[0], Second: avail[partner]})

		next := make([]int, 0, m-2)
		next = append(next, avail[1:partner]...)
		next = append(next, avail[partner+1:]...)
		avail = next
		k--
	}

	return swaps, nil
}

// RankSwapSet is the inverse of UnrankSwapSet: given a canonical swap set
// (each Swap with First < Second, sorted by First), it returns the rank.
func RankSwapSet(length int, swaps []Swap) (*big.Int, error) {
	avail := make([]int, length)
	for i := range avail {
		avail[i] = i
	}

	partnerOf := make(map[int]int, len(swaps)*2)
	for _, s := range swaps {
		if s.First >= s.Second || s.Second >= length || s.First < 0 {
			return nil, fmt.Errorf("swap (%d,%d) is not canonical for length %d", s.First, s.Second, length)
		}
		if _, dup := partnerOf[s.First]; dup {
			return nil, fmt.Errorf("position %d appears in two swaps", s.First)
		}
		if _, dup := partnerOf[s.Second]; dup {
			return nil, fmt.Errorf("position %d appears in two swaps", s.Second)
		}
		partnerOf[s.First] = s.Second
		partnerOf[s.Second] = s.First
	}

	rank := new(big.Int)
	k := len(swaps)

	for k > 0 {
		m := len(avail)
		head := avail[0]

		partner, paired := partnerOf[head]
		if !paired {
			avail = avail[1:]
			continue
		}

		// All sets where head is unpaired precede this one.
		rank.Add(rank, SwapSetCount(m-1, k))

		// Blocks for partners smaller than ours precede ours.
		block := SwapSetCount(m-2, k-1)
		j := -1
		for idx, v := range avail[1:] {
			if v == partner {
				j = idx
				break
			}
		}
		if j < 0 {
			return nil, fmt.Errorf("swap partner %d of %d is not available; swaps overlap", partner, head)
		}
		rank.Add(rank, new(big.Int).Mul(big.NewInt(int64(j)), block))

		next := make([]int, 0, m-2)
		next = append(next, avail[1:j+1]...)
		next = append(next, avail[j+2:]...)
		avail = next
		k--
	}

	return rank, nil
}

// ApplySwaps returns words with each swap's positions exchanged. Swaps are
// disjoint, so application order does not matter.
func ApplySwaps(words []string, swaps []Swap) []string {
	out := make([]string, len(words))
	copy(out, words)
	for _, s := range swaps {
		out[s.First], out[s.Second] = out[s.Second], out[s.First]
	}
	return out
}
