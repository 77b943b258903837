package partition

import (
	"fmt"
	"math/big"
)

// Range is a half-open span [Start, End) of candidate ordinals.
type Range struct {
	Start *big.Int
	End   *big.Int
}

// Len returns the number of ordinals in the range.
func (r Range) Len() *big.Int {
	return new(big.Int).Sub(r.End, r.Start)
}

// Contains reports whether ordinal lies inside the range.
func (r Range) Contains(ordinal *big.Int) bool {
	return ordinal.Cmp(r.Start) >= 0 && ordinal.Cmp(r.End) < 0
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Text(10), r.End.Text(10))
}

// WorkerRange computes worker id's slice of a space with total ordinals,
// split across count workers:
//
//	start = ceil(id * total / count)
//	end   = ceil((id+1) * total / count)
//
// The rounding guarantees disjoint ranges covering [0, total) exactly,
// with sizes differing by at most one; lower-numbered workers take the
// extra candidate, so worker 0 always owns ordinal 0.
func WorkerRange(total *big.Int, id, count int) (Range, error) {
	if count < 1 || id < 0 || id >= count {
		return Range{}, &PartitionBoundsError{WorkerID: id, WorkerCount: count}
	}

	return Range{
		Start: ceilDiv(new(big.Int).Mul(total, big.NewInt(int64(id))), count),
		End:   ceilDiv(new(big.Int).Mul(total, big.NewInt(int64(id+1))), count),
	}, nil
}

// ceilDiv returns ceil(a / m) for nonnegative a. Mutates a.
func ceilDiv(a *big.Int, m int) *big.Int {
	a.Add(a, big.NewInt(int64(m-1)))
	return a.Quo(a, big.NewInt(int64(m)))
}

// Ranges computes every worker's slice at once.
func Ranges(total *big.Int, count int) ([]Range, error) {
	if count < 1 {
		return nil, &PartitionBoundsError{WorkerID: 0, WorkerCount: count}
	}
	out := make([]Range, count)
	for i := range out {
		r, err := WorkerRange(total, i, count)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}
