package partition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/roach88/seedcomb/internal/store"
)

// Checkpointer decides when a worker's progress is worth persisting and
// writes it through the store, retrying transient failures. Each worker
// goroutine owns its own Checkpointer.
type Checkpointer struct {
	Store *store.Store
	Log   *slog.Logger
	RunID string
	Space string // space fingerprint

	// Every is the candidate-count save threshold; Interval is the wall
	// clock one. Whichever trips first causes a save. Zero values fall
	// back to defaults.
	Every    int64
	Interval time.Duration

	// Retries and Backoff govern transient write failures. The backoff
	// doubles per attempt.
	Retries int
	Backoff time.Duration

	sinceSave int64
	lastSave  time.Time
}

const (
	defaultEvery    = 1 << 16
	defaultInterval = 5 * time.Second
	defaultRetries  = 3
	defaultBackoff  = 50 * time.Millisecond
)

// Note records that n more candidates were verified and reports whether a
// checkpoint is due.
func (c *Checkpointer) Note(n int64) bool {
	c.sinceSave += n
	if c.lastSave.IsZero() {
		c.lastSave = time.Now()
	}
	every := c.Every
	if every == 0 {
		every = defaultEvery
	}
	interval := c.Interval
	if interval == 0 {
		interval = defaultInterval
	}
	return c.sinceSave >= every || time.Since(c.lastSave) >= interval
}

// Save persists the worker's current progress. Transient store errors are
// retried with doubling backoff; persistent failure is returned to the
// caller, which treats it as fatal since further progress would be
// unrecoverable after a crash.
func (c *Checkpointer) Save(ctx context.Context, w *Worker) error {
	rec := store.CheckpointRecord{
		SpaceFingerprint: c.Space,
		WorkerID:         w.ID,
		WorkerCount:      w.Count,
		RunID:            c.RunID,
		RangeStart:       w.Range.Start,
		RangeEnd:         w.Range.End,
		Cursor:           w.Cursor(),
		State:            string(w.State()),
		Elapsed:          w.Elapsed(),
		UpdatedAt:        time.Now(),
	}

	retries := c.Retries
	if retries == 0 {
		retries = defaultRetries
	}
	backoff := c.Backoff
	if backoff == 0 {
		backoff = defaultBackoff
	}

	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			c.logger().Warn("checkpoint write failed, retrying",
				"worker", w.ID, "attempt", attempt, "error", err)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
		}
		if err = c.Store.SaveCheckpoint(ctx, rec); err == nil {
			c.sinceSave = 0
			c.lastSave = time.Now()
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	}
	return fmt.Errorf("checkpoint worker %d/%d: %w", w.ID, w.Count, err)
}

func (c *Checkpointer) logger() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}

// Resume rebuilds a worker from its stored checkpoint, or returns a fresh
// worker when none exists. A stored checkpoint written for a different
// space fingerprint is a CheckpointMismatchError; the caller must not fall
// back to a fresh start, because the user may have edited the configuration
// by accident.
//
// A worker persisted as running means the previous process died without a
// clean pause; it comes back paused at its saved cursor.
func Resume(ctx context.Context, st *store.Store, fingerprint string, id, count int, total *big.Int) (*Worker, error) {
	rec, err := st.LoadCheckpoint(ctx, id, count)
	if errors.Is(err, store.ErrNoCheckpoint) {
		r, rerr := WorkerRange(total, id, count)
		if rerr != nil {
			return nil, rerr
		}
		return NewWorker(id, count, r), nil
	}
	if err != nil {
		return nil, err
	}

	if rec.SpaceFingerprint != fingerprint {
		return nil, &CheckpointMismatchError{
			WorkerID:    id,
			WorkerCount: count,
			Stored:      rec.SpaceFingerprint,
			Current:     fingerprint,
		}
	}

	state := State(rec.State)
	if state == StateRunning {
		state = StatePaused
	}
	r := Range{Start: rec.RangeStart, End: rec.RangeEnd}
	return restore(id, count, r, rec.Cursor, state, rec.Elapsed), nil
}
