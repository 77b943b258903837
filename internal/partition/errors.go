package partition

import (
	"errors"
	"fmt"
)

// PartitionBoundsError reports a worker id that does not fit the worker
// count, or a worker count that cannot split anything.
type PartitionBoundsError struct {
	WorkerID    int
	WorkerCount int
}

func (e *PartitionBoundsError) Error() string {
	if e.WorkerCount < 1 {
		return fmt.Sprintf("worker count %d: need at least one worker", e.WorkerCount)
	}
	return fmt.Sprintf("worker id %d out of range for %d workers", e.WorkerID, e.WorkerCount)
}

// CheckpointMismatchError means a stored checkpoint belongs to a different
// candidate space than the one being resumed. Resuming anyway would verify
// the wrong candidates against the stored cursor, so this is fatal.
type CheckpointMismatchError struct {
	WorkerID    int
	WorkerCount int
	Stored      string
	Current     string
}

func (e *CheckpointMismatchError) Error() string {
	return fmt.Sprintf(
		"checkpoint for worker %d/%d was written for space %s but the current space is %s; delete the autosave or restore the original configuration",
		e.WorkerID, e.WorkerCount, short(e.Stored), short(e.Current))
}

// StateTransitionError reports an illegal worker state change, for example
// advancing a worker that already found a match.
type StateTransitionError struct {
	From State
	To   State
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("illegal worker state transition %s -> %s", e.From, e.To)
}

// IsCheckpointMismatch reports whether err is a CheckpointMismatchError.
func IsCheckpointMismatch(err error) bool {
	var m *CheckpointMismatchError
	return errors.As(err, &m)
}

func short(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
