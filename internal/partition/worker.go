package partition

import (
	"math/big"
	"time"
)

// State names a worker's position in its lifecycle. The string values are
// what the store persists, so they must stay stable.
type State string

const (
	StateIdle       State = "idle"
	StateRunning    State = "running"
	StatePaused     State = "paused"
	StateExhausted  State = "exhausted"
	StateMatchFound State = "match_found"
)

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	return s == StateExhausted || s == StateMatchFound
}

// Worker tracks one slice of the space: its range, the cursor pointing at
// the next unverified ordinal, and accumulated verification time. Worker is
// not safe for concurrent use; the dispatcher drives each worker from a
// single goroutine.
type Worker struct {
	ID    int
	Count int
	Range Range

	cursor  *big.Int
	state   State
	elapsed time.Duration
	started time.Time
}

// NewWorker returns an idle worker positioned at the start of its range.
func NewWorker(id, count int, r Range) *Worker {
	return &Worker{
		ID:     id,
		Count:  count,
		Range:  r,
		cursor: new(big.Int).Set(r.Start),
		state:  StateIdle,
	}
}

// Cursor returns the next unverified ordinal. Every ordinal below the
// cursor within the range has been verified and did not match.
func (w *Worker) Cursor() *big.Int { return new(big.Int).Set(w.cursor) }

// State returns the current lifecycle state.
func (w *Worker) State() State { return w.state }

// Remaining returns the number of ordinals not yet verified.
func (w *Worker) Remaining() *big.Int {
	return new(big.Int).Sub(w.Range.End, w.cursor)
}

// Elapsed returns total verification time, including the live segment if
// the worker is running.
func (w *Worker) Elapsed() time.Duration {
	if w.state == StateRunning {
		return w.elapsed + time.Since(w.started)
	}
	return w.elapsed
}

// Start moves an idle or paused worker to running. Starting a worker whose
// range is already empty moves it straight to exhausted.
func (w *Worker) Start() error {
	if w.state != StateIdle && w.state != StatePaused {
		return &StateTransitionError{From: w.state, To: StateRunning}
	}
	if w.cursor.Cmp(w.Range.End) >= 0 {
		w.state = StateExhausted
		return nil
	}
	w.state = StateRunning
	w.started = time.Now()
	return nil
}

// Advance records that n more ordinals were verified without a match.
// Reaching the end of the range moves the worker to exhausted.
func (w *Worker) Advance(n *big.Int) error {
	if w.state != StateRunning {
		return &StateTransitionError{From: w.state, To: StateRunning}
	}
	w.cursor.Add(w.cursor, n)
	if w.cursor.Cmp(w.Range.End) >= 0 {
		w.cursor.Set(w.Range.End)
		w.stopClock()
		w.state = StateExhausted
	}
	return nil
}

// Pause suspends a running worker so its progress can be checkpointed and
// the run resumed later.
func (w *Worker) Pause() error {
	if w.state != StateRunning {
		return &StateTransitionError{From: w.state, To: StatePaused}
	}
	w.stopClock()
	w.state = StatePaused
	return nil
}

// MarkMatchFound records that the candidate at ordinal matched. The cursor
// lands on the matching ordinal and the worker stops permanently.
func (w *Worker) MarkMatchFound(ordinal *big.Int) error {
	if w.state != StateRunning {
		return &StateTransitionError{From: w.state, To: StateMatchFound}
	}
	w.cursor.Set(ordinal)
	w.stopClock()
	w.state = StateMatchFound
	return nil
}

func (w *Worker) stopClock() {
	w.elapsed += time.Since(w.started)
	w.started = time.Time{}
}

// restore rebuilds a worker from persisted checkpoint fields.
func restore(id, count int, r Range, cursor *big.Int, state State, elapsed time.Duration) *Worker {
	return &Worker{
		ID:      id,
		Count:   count,
		Range:   r,
		cursor:  new(big.Int).Set(cursor),
		state:   state,
		elapsed: elapsed,
	}
}
