package tokens

import (
	"errors"
	"fmt"
)

// ConfigErrorCode categorizes token-list configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeMalformedToken indicates unparseable token or anchor syntax.
	ErrCodeMalformedToken ConfigErrorCode = "MALFORMED_TOKEN"

	// ErrCodeEmptyPosition indicates a position with zero alternatives.
	ErrCodeEmptyPosition ConfigErrorCode = "EMPTY_POSITION"

	// ErrCodeConflictingAnchors indicates two tokens pinned to the same slot.
	ErrCodeConflictingAnchors ConfigErrorCode = "CONFLICTING_ANCHORS"

	// ErrCodeAnchorOutOfRange indicates an anchor referencing a slot beyond
	// the configured length.
	ErrCodeAnchorOutOfRange ConfigErrorCode = "ANCHOR_OUT_OF_RANGE"

	// ErrCodeUnknownWildcard indicates a %name reference with no matching
	// wildcard set definition.
	ErrCodeUnknownWildcard ConfigErrorCode = "UNKNOWN_WILDCARD"
)

// ConfigError is a fatal token-list configuration error. It always names the
// element that caused it (file line and, where applicable, the slot) so the
// operator can fix the input rather than guess.
type ConfigError struct {
	Code ConfigErrorCode

	// Message is a human-readable description.
	Message string

	// Line is the 1-based token-list line, or 0 if not line-specific.
	Line int

	// Slot is the 0-based position index involved, or NoAnchor.
	Slot int
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	switch {
	case e.Line > 0 && e.Slot != NoAnchor:
		return fmt.Sprintf("%s: %s (line %d, slot %d)", e.Code, e.Message, e.Line, e.Slot)
	case e.Line > 0:
		return fmt.Sprintf("%s: %s (line %d)", e.Code, e.Message, e.Line)
	case e.Slot != NoAnchor:
		return fmt.Sprintf("%s: %s (slot %d)", e.Code, e.Message, e.Slot)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsConfigError returns true if err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

func newConfigError(code ConfigErrorCode, line, slot int, format string, args ...any) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Slot:    slot,
	}
}
