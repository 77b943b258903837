package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/seedcomb/internal/oracle"
	"github.com/roach88/seedcomb/internal/partition"
	"github.com/roach88/seedcomb/internal/space"
	"github.com/roach88/seedcomb/internal/store"
)

// Config wires one search run.
type Config struct {
	Space   *space.Space
	Oracle  oracle.Oracle
	Workers []*partition.Worker

	// Store persists checkpoints and the result. Nil disables
	// persistence, which the performance mode and tests use.
	Store *store.Store
	Log   *slog.Logger
	RunID string

	// BatchSize is the per-driver decode batch; zero picks a default
	// from the oracle's cost hint.
	BatchSize int

	// Threads limits concurrent oracle chunks per driver; zero means
	// runtime.GOMAXPROCS(0) via errgroup's own scheduling cap.
	Threads int

	// Checkpoint cadence. Zero values use the partition defaults.
	CheckpointEvery    int64
	CheckpointInterval time.Duration

	// Progress, when set, is called from driver goroutines with the
	// number of candidates just verified. Must be safe for concurrent
	// use; the progressbar writer is.
	Progress func(tested int64)
}

// Match identifies the winning candidate.
type Match struct {
	Ordinal   *big.Int
	Candidate space.Candidate
	WorkerID  int
}

// Result summarizes a finished run. Match is nil when every worker
// exhausted its range without a hit: "not found in this space" is a
// definitive answer, not an error.
type Result struct {
	Match   *Match
	Tested  *big.Int
	Elapsed time.Duration
}

type dispatcher struct {
	cfg Config

	stop    atomic.Bool // set once any driver finds a match
	tested  atomic.Int64
	matchMu sync.Mutex
	match   *Match
}

// Run drives every worker to exhaustion, a match, or cancellation.
// Workers already in a terminal state are skipped, which is what makes
// resuming a finished slice harmless.
func Run(ctx context.Context, cfg Config) (Result, error) {
	if cfg.Space == nil || cfg.Oracle == nil || len(cfg.Workers) == 0 {
		return Result{}, fmt.Errorf("dispatch: space, oracle, and at least one worker are required")
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = defaultBatch(cfg.Oracle.CostHint())
	}

	d := &dispatcher{cfg: cfg}
	started := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range cfg.Workers {
		w := w
		g.Go(func() error {
			return d.drive(gctx, w, cancel)
		})
	}
	err := g.Wait()

	res := Result{
		Match:   d.match,
		Tested:  big.NewInt(d.tested.Load()),
		Elapsed: time.Since(started),
	}
	// A sibling cancelling the group after a match is success, not error.
	if err != nil && !(d.match != nil && ctx.Err() != nil) {
		return res, err
	}
	return res, nil
}

func defaultBatch(cost oracle.CostHint) int {
	switch cost {
	case oracle.CostExpensive:
		return 64
	case oracle.CostModerate:
		return 512
	default:
		return 4096
	}
}

// drive owns one worker for the duration of the run.
func (d *dispatcher) drive(ctx context.Context, w *partition.Worker, foundCancel context.CancelFunc) error {
	if w.State().Terminal() {
		d.cfg.Log.Info("worker already finished, skipping",
			"worker", w.ID, "state", w.State())
		return nil
	}
	if err := w.Start(); err != nil {
		return err
	}

	cp := &partition.Checkpointer{
		Store:    d.cfg.Store,
		Log:      d.cfg.Log,
		RunID:    d.cfg.RunID,
		Space:    d.cfg.Space.Fingerprint(),
		Every:    d.cfg.CheckpointEvery,
		Interval: d.cfg.CheckpointInterval,
	}

	for w.State() == partition.StateRunning {
		// Batch boundary: the only place stop signals take effect.
		if d.stop.Load() || ctx.Err() != nil {
			if err := w.Pause(); err != nil {
				return err
			}
			break
		}

		batch, err := d.decodeBatch(w)
		if err != nil {
			return err
		}
		match, err := d.verifyBatch(ctx, batch)
		if err != nil {
			d.saveCheckpoint(ctx, cp, w)
			return err
		}

		n := int64(len(batch))
		d.tested.Add(n)
		if d.cfg.Progress != nil {
			d.cfg.Progress(n)
		}

		if match != nil {
			match.WorkerID = w.ID
			if err := w.MarkMatchFound(match.Ordinal); err != nil {
				return err
			}
			d.recordMatch(ctx, match)
			foundCancel()
			break
		}

		if err := w.Advance(big.NewInt(n)); err != nil {
			return err
		}
		if cp.Note(n) {
			d.saveCheckpoint(ctx, cp, w)
		}
	}

	d.saveCheckpoint(ctx, cp, w)
	if w.State() == partition.StateExhausted {
		d.cfg.Log.Info("worker exhausted its range",
			"worker", w.ID, "range", w.Range.String())
	}
	return nil
}

// decodeBatch materializes the next run of candidates from the worker's
// cursor, clamped to its range end.
func (d *dispatcher) decodeBatch(w *partition.Worker) ([]space.Candidate, error) {
	remaining := w.Remaining()
	size := big.NewInt(int64(d.cfg.BatchSize))
	if remaining.Cmp(size) < 0 {
		size = remaining
	}

	batch := make([]space.Candidate, 0, size.Int64())
	ordinal := w.Cursor()
	one := big.NewInt(1)
	for j := int64(0); j < size.Int64(); j++ {
		cand, err := d.cfg.Space.CandidateAt(ordinal)
		if err != nil {
			return nil, fmt.Errorf("decode ordinal %s: %w", ordinal.Text(10), err)
		}
		batch = append(batch, cand)
		ordinal = new(big.Int).Add(ordinal, one)
	}
	return batch, nil
}

// verifyBatch fans chunks of the batch across oracle threads and returns
// the lowest-ordinal match, if any.
func (d *dispatcher) verifyBatch(ctx context.Context, batch []space.Candidate) (*Match, error) {
	threads := d.cfg.Threads
	if threads <= 1 || len(batch) < 2*threads {
		return d.verifyChunk(ctx, batch)
	}

	chunkLen := (len(batch) + threads - 1) / threads
	results := make([]*Match, threads)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for t := 0; t < threads; t++ {
		t := t
		lo := t * chunkLen
		if lo >= len(batch) {
			break
		}
		hi := min(lo+chunkLen, len(batch))
		g.Go(func() error {
			m, err := d.verifyChunk(gctx, batch[lo:hi])
			results[t] = m
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, m := range results {
		if m != nil {
			return m, nil // chunks are ordinal-ordered; first hit is lowest
		}
	}
	return nil, nil
}

// verifyChunk calls the oracle once, retrying a transient failure in two
// half-size calls before escalating.
func (d *dispatcher) verifyChunk(ctx context.Context, chunk []space.Candidate) (*Match, error) {
	if len(chunk) == 0 {
		return nil, nil
	}
	matches, err := d.cfg.Oracle.VerifyBatch(ctx, chunk)
	if err != nil {
		oe, transient := oracle.IsOracleError(err)
		if !transient || !oe.Transient || len(chunk) == 1 {
			return nil, err
		}
		d.cfg.Log.Warn("oracle batch failed, retrying at half size",
			"oracle", d.cfg.Oracle.Name(), "batch", len(chunk), "error", err)
		half := len(chunk) / 2
		if m, err := d.retryChunk(ctx, chunk[:half]); m != nil || err != nil {
			return m, err
		}
		return d.retryChunk(ctx, chunk[half:])
	}
	if len(matches) == 0 {
		return nil, nil
	}
	cand := chunk[matches[0]]
	return &Match{Ordinal: new(big.Int).Set(cand.Ordinal), Candidate: cand}, nil
}

func (d *dispatcher) retryChunk(ctx context.Context, chunk []space.Candidate) (*Match, error) {
	if len(chunk) == 0 {
		return nil, nil
	}
	matches, err := d.cfg.Oracle.VerifyBatch(ctx, chunk)
	if err != nil {
		return nil, fmt.Errorf("oracle retry failed: %w", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}
	cand := chunk[matches[0]]
	return &Match{Ordinal: new(big.Int).Set(cand.Ordinal), Candidate: cand}, nil
}

// recordMatch keeps the first match seen in-process and persists it.
// The store's first-writer-wins semantics arbitrate across processes.
func (d *dispatcher) recordMatch(ctx context.Context, m *Match) {
	d.matchMu.Lock()
	if d.match == nil {
		d.match = m
	}
	d.matchMu.Unlock()
	d.stop.Store(true)

	d.cfg.Log.Info("match found",
		"worker", m.WorkerID, "ordinal", m.Ordinal.Text(10))

	if d.cfg.Store == nil {
		return
	}
	rec := store.ResultRecord{
		SpaceFingerprint: d.cfg.Space.Fingerprint(),
		RunID:            d.cfg.RunID,
		Ordinal:          m.Ordinal,
		Candidate:        m.Candidate.Text,
		WorkerID:         m.WorkerID,
		FoundAt:          time.Now(),
	}
	// Persist with a fresh context: the group is being cancelled.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := d.cfg.Store.SaveResult(saveCtx, rec); err != nil {
		d.cfg.Log.Error("persist result failed", "error", err)
	}
}

func (d *dispatcher) saveCheckpoint(ctx context.Context, cp *partition.Checkpointer, w *partition.Worker) {
	if d.cfg.Store == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := cp.Save(saveCtx, w); err != nil {
		d.cfg.Log.Error("checkpoint save failed", "worker", w.ID, "error", err)
	}
}
