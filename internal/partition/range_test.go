package partition

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerRange_HundredOverThree(t *testing.T) {
	total := big.NewInt(100)

	ranges, err := Ranges(total, 3)
	require.NoError(t, err)

	assert.Equal(t, int64(0), ranges[0].Start.Int64())
	assert.Equal(t, int64(34), ranges[0].End.Int64())
	assert.Equal(t, int64(34), ranges[1].Start.Int64())
	assert.Equal(t, int64(67), ranges[1].End.Int64())
	assert.Equal(t, int64(67), ranges[2].Start.Int64())
	assert.Equal(t, int64(100), ranges[2].End.Int64())
}

func TestWorkerRange_DisjointAndCovering(t *testing.T) {
	cases := []struct {
		total int64
		count int
	}{
		{total: 1, count: 1},
		{total: 7, count: 3},
		{total: 100, count: 7},
		{total: 5, count: 8}, // more workers than candidates
		{total: 0, count: 4},
	}

	for _, tc := range cases {
		total := big.NewInt(tc.total)
		ranges, err := Ranges(total, tc.count)
		require.NoError(t, err)
		require.Len(t, ranges, tc.count)

		assert.Zero(t, ranges[0].Start.Sign(), "first range starts at zero")
		assert.Zero(t, ranges[tc.count-1].End.Cmp(total), "last range ends at total")

		sum := new(big.Int)
		for i, r := range ranges {
			require.LessOrEqual(t, r.Start.Cmp(r.End), 0, "start <= end")
			if i > 0 {
				assert.Zero(t, ranges[i-1].End.Cmp(r.Start),
					"range %d starts where range %d ends", i, i-1)
			}
			sum.Add(sum, r.Len())
		}
		assert.Zero(t, sum.Cmp(total), "ranges cover the space exactly")

		// No two range sizes differ by more than one.
		minLen, maxLen := ranges[0].Len(), ranges[0].Len()
		for _, r := range ranges {
			if r.Len().Cmp(minLen) < 0 {
				minLen = r.Len()
			}
			if r.Len().Cmp(maxLen) > 0 {
				maxLen = r.Len()
			}
		}
		diff := new(big.Int).Sub(maxLen, minLen)
		assert.LessOrEqual(t, diff.Cmp(big.NewInt(1)), 0)
	}
}

func TestWorkerRange_BeyondUint64(t *testing.T) {
	total, ok := new(big.Int).SetString("340282366920938463463374607431768211456", 10)
	require.True(t, ok)

	ranges, err := Ranges(total, 3)
	require.NoError(t, err)

	sum := new(big.Int)
	for _, r := range ranges {
		sum.Add(sum, r.Len())
	}
	assert.Zero(t, sum.Cmp(total))
}

func TestWorkerRange_Bounds(t *testing.T) {
	total := big.NewInt(10)

	_, err := WorkerRange(total, 3, 3)
	var bounds *PartitionBoundsError
	require.ErrorAs(t, err, &bounds)
	assert.Equal(t, 3, bounds.WorkerID)

	_, err = WorkerRange(total, -1, 3)
	assert.ErrorAs(t, err, &bounds)

	_, err = WorkerRange(total, 0, 0)
	assert.ErrorAs(t, err, &bounds)
}

func TestRange_Contains(t *testing.T) {
	r := Range{Start: big.NewInt(10), End: big.NewInt(20)}

	assert.True(t, r.Contains(big.NewInt(10)))
	assert.True(t, r.Contains(big.NewInt(19)))
	assert.False(t, r.Contains(big.NewInt(20)))
	assert.False(t, r.Contains(big.NewInt(9)))
}
