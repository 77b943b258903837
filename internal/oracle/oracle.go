package oracle

import (
	"context"

	"github.com/roach88/seedcomb/internal/space"
)

// CostHint tells the dispatcher roughly how expensive one verification is,
// so it can size batches: cheap oracles want large batches to amortize
// dispatch overhead, expensive ones want small batches so cancellation and
// checkpointing stay responsive.
type CostHint int

const (
	CostCheap CostHint = iota
	CostModerate
	CostExpensive
)

func (c CostHint) String() string {
	switch c {
	case CostCheap:
		return "cheap"
	case CostModerate:
		return "moderate"
	case CostExpensive:
		return "expensive"
	default:
		return "unknown"
	}
}

// Oracle verifies batches of candidates.
//
// VerifyBatch returns the indices into the batch slice of every candidate
// that matched, in ascending order. Candidates that are structurally
// invalid for the oracle (for example a mnemonic with a bad checksum) are
// simply non-matches, not errors; errors are reserved for the oracle
// itself failing.
type Oracle interface {
	Name() string
	CostHint() CostHint
	VerifyBatch(ctx context.Context, batch []space.Candidate) ([]int, error)
}

// Null is the measurement oracle: it rejects everything at zero cost.
// Used by performance runs to drive the full enumeration and dispatch
// machinery without real verification.
type Null struct{}

func (Null) Name() string       { return "null" }
func (Null) CostHint() CostHint { return CostCheap }

func (Null) VerifyBatch(ctx context.Context, batch []space.Candidate) ([]int, error) {
	return nil, ctx.Err()
}
