package space

import (
	"errors"
	"fmt"
)

// SpaceErrorCode categorizes candidate-space construction and decode errors.
type SpaceErrorCode string

const (
	// ErrCodeEmptySpace indicates the composed space has zero candidates.
	// An over-constrained configuration is an error, never a silent empty
	// search.
	ErrCodeEmptySpace SpaceErrorCode = "EMPTY_SPACE"

	// ErrCodeInvalidBudget indicates a negative or inconsistent budget.
	ErrCodeInvalidBudget SpaceErrorCode = "INVALID_BUDGET"

	// ErrCodeOrdinalOutOfRange indicates CandidateAt was called with an
	// ordinal outside [0, N).
	ErrCodeOrdinalOutOfRange SpaceErrorCode = "ORDINAL_OUT_OF_RANGE"

	// ErrCodeSelectionMismatch indicates OrdinalOf was given a selection
	// that does not belong to this space.
	ErrCodeSelectionMismatch SpaceErrorCode = "SELECTION_MISMATCH"
)

// SpaceError is a fatal candidate-space error. Construction-time errors are
// configuration errors in the run taxonomy: they surface before any search
// work begins.
type SpaceError struct {
	Code    SpaceErrorCode
	Message string
}

// Error implements the error interface.
func (e *SpaceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsSpaceError returns true if err is (or wraps) a SpaceError with the
// given code.
func IsSpaceError(err error, code SpaceErrorCode) bool {
	var se *SpaceError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

func newSpaceError(code SpaceErrorCode, format string, args ...any) *SpaceError {
	return &SpaceError{Code: code, Message: fmt.Sprintf(format, args...)}
}
