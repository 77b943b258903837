package store

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "autosave.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testCheckpoint(cursor int64) CheckpointRecord {
	return CheckpointRecord{
		SpaceFingerprint: "fp-1",
		WorkerID:         0,
		WorkerCount:      3,
		RunID:            "run-1",
		RangeStart:       big.NewInt(0),
		RangeEnd:         big.NewInt(34),
		Cursor:           big.NewInt(cursor),
		State:            "running",
		Elapsed:          90 * time.Second,
		UpdatedAt:        time.UnixMilli(1700000000000),
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autosave.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestCheckpoint_SaveAndLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveCheckpoint(ctx, testCheckpoint(12)))

	rec, err := s.LoadCheckpoint(ctx, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, "run-1", rec.RunID)
	assert.Equal(t, int64(12), rec.Cursor.Int64())
	assert.Equal(t, int64(0), rec.RangeStart.Int64())
	assert.Equal(t, int64(34), rec.RangeEnd.Int64())
	assert.Equal(t, "running", rec.State)
	assert.Equal(t, 90*time.Second, rec.Elapsed)
}

func TestCheckpoint_UpsertAdvancesCursor(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveCheckpoint(ctx, testCheckpoint(5)))
	require.NoError(t, s.SaveCheckpoint(ctx, testCheckpoint(20)))

	rec, err := s.LoadCheckpoint(ctx, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(20), rec.Cursor.Int64())
}

func TestCheckpoint_MissingRowIsErrNoCheckpoint(t *testing.T) {
	s := openTestStore(t)

	_, err := s.LoadCheckpoint(context.Background(), 0, 1)
	assert.ErrorIs(t, err, ErrNoCheckpoint)
}

func TestCheckpoint_DistinctSlicesDoNotCollide(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a := testCheckpoint(5)
	b := testCheckpoint(7)
	b.WorkerID = 1

	require.NoError(t, s.SaveCheckpoint(ctx, a))
	require.NoError(t, s.SaveCheckpoint(ctx, b))

	got, err := s.LoadCheckpoint(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Cursor.Int64())
}

func TestCheckpoint_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autosave.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveCheckpoint(ctx, testCheckpoint(33)))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	rec, err := reopened.LoadCheckpoint(ctx, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(33), rec.Cursor.Int64())
}

func TestCheckpoint_BigOrdinalsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Ordinals beyond 64-bit range must survive the decimal text column.
	huge, ok := new(big.Int).SetString("340282366920938463463374607431768211456", 10)
	require.True(t, ok)

	rec := testCheckpoint(0)
	rec.RangeEnd = huge
	rec.Cursor = new(big.Int).Sub(huge, big.NewInt(1))
	require.NoError(t, s.SaveCheckpoint(ctx, rec))

	got, err := s.LoadCheckpoint(ctx, 0, 3)
	require.NoError(t, err)
	assert.Zero(t, got.RangeEnd.Cmp(huge))
	assert.Zero(t, got.Cursor.Cmp(rec.Cursor))
}

func TestDeleteCheckpoints(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveCheckpoint(ctx, testCheckpoint(5)))
	require.NoError(t, s.DeleteCheckpoints(ctx))

	_, err := s.LoadCheckpoint(ctx, 0, 3)
	assert.ErrorIs(t, err, ErrNoCheckpoint)
}

func TestResult_SaveAndLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := ResultRecord{
		SpaceFingerprint: "fp-1",
		RunID:            "run-1",
		Ordinal:          big.NewInt(42),
		Candidate:        "correct horse battery staple",
		WorkerID:         2,
		FoundAt:          time.UnixMilli(1700000000000),
	}
	require.NoError(t, s.SaveResult(ctx, rec))

	got, err := s.LoadResult(ctx, "fp-1")
	require.NoError(t, err)
	assert.Equal(t, "correct horse battery staple", got.Candidate)
	assert.Equal(t, int64(42), got.Ordinal.Int64())
	assert.Equal(t, 2, got.WorkerID)
}

func TestResult_FirstWriterWins(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := ResultRecord{
		SpaceFingerprint: "fp-1", RunID: "run-1",
		Ordinal: big.NewInt(1), Candidate: "first",
		FoundAt: time.Now(),
	}
	second := first
	second.Candidate = "second"
	second.Ordinal = big.NewInt(2)

	require.NoError(t, s.SaveResult(ctx, first))
	require.NoError(t, s.SaveResult(ctx, second))

	got, err := s.LoadResult(ctx, "fp-1")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Candidate)
}

func TestResult_MissingIsErrNoResult(t *testing.T) {
	s := openTestStore(t)

	_, err := s.LoadResult(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrNoResult)
}
