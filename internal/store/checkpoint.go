package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"
)

// ErrNoCheckpoint is returned when no checkpoint row exists for the
// requested worker slice.
var ErrNoCheckpoint = errors.New("no checkpoint for this worker slice")

// CheckpointRecord is the durable form of one worker's progress.
type CheckpointRecord struct {
	SpaceFingerprint string
	WorkerID         int
	WorkerCount      int
	RunID            string

	RangeStart *big.Int
	RangeEnd   *big.Int
	Cursor     *big.Int

	// State is the worker state name: "running", "paused", "exhausted",
	// or "match_found".
	State string

	Elapsed   time.Duration
	UpdatedAt time.Time
}

// SaveCheckpoint upserts the worker's checkpoint row. The row key is
// (worker id, worker count) only. The space fingerprint is stored as data
// so that a later resume can load the row and notice the space changed
// underneath it instead of silently starting over.
func (s *Store) SaveCheckpoint(ctx context.Context, rec CheckpointRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO checkpoints
		(space_fingerprint, worker_id, worker_count, run_id,
		 range_start, range_end, cursor, state, elapsed_ms, updated_at_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(worker_id, worker_count) DO UPDATE SET
			space_fingerprint = excluded.space_fingerprint,
			run_id        = excluded.run_id,
			range_start   = excluded.range_start,
			range_end     = excluded.range_end,
			cursor        = excluded.cursor,
			state         = excluded.state,
			elapsed_ms    = excluded.elapsed_ms,
			updated_at_ms = excluded.updated_at_ms
	`,
		rec.SpaceFingerprint,
		rec.WorkerID,
		rec.WorkerCount,
		rec.RunID,
		rec.RangeStart.Text(10),
		rec.RangeEnd.Text(10),
		rec.Cursor.Text(10),
		rec.State,
		rec.Elapsed.Milliseconds(),
		rec.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save checkpoint worker %d/%d: %w", rec.WorkerID, rec.WorkerCount, err)
	}

	return nil
}

// LoadCheckpoint reads the checkpoint row for one worker slice.
// Returns ErrNoCheckpoint if the slice has never checkpointed. The caller
// owns fingerprint validation against the loaded row.
func (s *Store) LoadCheckpoint(ctx context.Context, workerID, workerCount int) (CheckpointRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT space_fingerprint, worker_id, worker_count, run_id,
		       range_start, range_end, cursor, state, elapsed_ms, updated_at_ms
		FROM checkpoints
		WHERE worker_id = ? AND worker_count = ?
	`, workerID, workerCount)

	var (
		rec                     CheckpointRecord
		start, end, cursor      string
		elapsedMS, updatedAtMS  int64
	)
	err := row.Scan(
		&rec.SpaceFingerprint,
		&rec.WorkerID,
		&rec.WorkerCount,
		&rec.RunID,
		&start,
		&end,
		&cursor,
		&rec.State,
		&elapsedMS,
		&updatedAtMS,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return CheckpointRecord{}, ErrNoCheckpoint
	}
	if err != nil {
		return CheckpointRecord{}, fmt.Errorf("load checkpoint worker %d/%d: %w", workerID, workerCount, err)
	}

	if rec.RangeStart, err = parseOrdinal(start, "range_start"); err != nil {
		return CheckpointRecord{}, err
	}
	if rec.RangeEnd, err = parseOrdinal(end, "range_end"); err != nil {
		return CheckpointRecord{}, err
	}
	if rec.Cursor, err = parseOrdinal(cursor, "cursor"); err != nil {
		return CheckpointRecord{}, err
	}
	rec.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	rec.UpdatedAt = time.UnixMilli(updatedAtMS)

	return rec, nil
}

// DeleteCheckpoints removes every checkpoint row. Backs the --fresh flag,
// which discards saved progress so a run starts from the beginning of its
// range instead of resuming.
func (s *Store) DeleteCheckpoints(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints`); err != nil {
		return fmt.Errorf("delete checkpoints: %w", err)
	}
	return nil
}

func parseOrdinal(text, column string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, fmt.Errorf("checkpoint column %s holds malformed ordinal %q", column, text)
	}
	return v, nil
}
