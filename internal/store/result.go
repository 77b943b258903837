package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"
)

// ErrNoResult is returned when no match has been recorded for a space.
var ErrNoResult = errors.New("no result for this space")

// ResultRecord is the recovered candidate for a space, written exactly once
// by whichever worker found it first.
type ResultRecord struct {
	SpaceFingerprint string
	RunID            string
	Ordinal          *big.Int
	Candidate        string
	WorkerID         int
	FoundAt          time.Time
}

// SaveResult records a match. First writer wins: a concurrent duplicate for
// the same space is silently ignored, which keeps the racy
// multiple-workers-notice-simultaneously case harmless.
func (s *Store) SaveResult(ctx context.Context, rec ResultRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO results
		(space_fingerprint, run_id, ordinal, candidate, worker_id, found_at_ms)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(space_fingerprint) DO NOTHING
	`,
		rec.SpaceFingerprint,
		rec.RunID,
		rec.Ordinal.Text(10),
		rec.Candidate,
		rec.WorkerID,
		rec.FoundAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// LoadResult returns the recorded match for a space, or ErrNoResult.
func (s *Store) LoadResult(ctx context.Context, fingerprint string) (ResultRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT space_fingerprint, run_id, ordinal, candidate, worker_id, found_at_ms
		FROM results
		WHERE space_fingerprint = ?
	`, fingerprint)

	var (
		rec       ResultRecord
		ordinal   string
		foundAtMS int64
	)
	err := row.Scan(&rec.SpaceFingerprint, &rec.RunID, &ordinal, &rec.Candidate, &rec.WorkerID, &foundAtMS)
	if errors.Is(err, sql.ErrNoRows) {
		return ResultRecord{}, ErrNoResult
	}
	if err != nil {
		return ResultRecord{}, fmt.Errorf("load result: %w", err)
	}

	if rec.Ordinal, err = parseOrdinal(ordinal, "ordinal"); err != nil {
		return ResultRecord{}, err
	}
	rec.FoundAt = time.UnixMilli(foundAtMS)

	return rec, nil
}
