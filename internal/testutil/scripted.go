package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/roach88/seedcomb/internal/oracle"
	"github.com/roach88/seedcomb/internal/space"
)

// ScriptedOracle matches an exact set of candidate texts. It lets
// enumerator and dispatcher tests inject a match at a known ordinal
// without any real key derivation.
//
// Thread-safety: safe for concurrent VerifyBatch calls.
type ScriptedOracle struct {
	mu      sync.Mutex
	targets map[string]struct{}
	calls   atomic.Int64
	tested  atomic.Int64

	// Fail, when non-nil, is returned by the next VerifyBatch call and
	// then cleared. Used to exercise the dispatcher's retry path.
	Fail error
}

// NewScriptedOracle creates an oracle matching exactly the given texts.
func NewScriptedOracle(targets ...string) *ScriptedOracle {
	set := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		set[t] = struct{}{}
	}
	return &ScriptedOracle{targets: set}
}

func (o *ScriptedOracle) Name() string              { return "scripted" }
func (o *ScriptedOracle) CostHint() oracle.CostHint { return oracle.CostCheap }

func (o *ScriptedOracle) VerifyBatch(ctx context.Context, batch []space.Candidate) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o.mu.Lock()
	fail := o.Fail
	o.Fail = nil
	o.mu.Unlock()
	if fail != nil {
		return nil, fail
	}

	o.calls.Add(1)
	o.tested.Add(int64(len(batch)))

	var matches []int
	for i, cand := range batch {
		if _, ok := o.targets[cand.Text]; ok {
			matches = append(matches, i)
		}
	}
	return matches, nil
}

// Calls returns how many batches were verified.
func (o *ScriptedOracle) Calls() int64 { return o.calls.Load() }

// Tested returns how many candidates were verified.
func (o *ScriptedOracle) Tested() int64 { return o.tested.Load() }
