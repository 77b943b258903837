package oracle

import (
	"errors"
	"fmt"
)

// OracleError codes.
const (
	CodeAddressDB   = "ADDRESS_DB"
	CodeDerivation  = "DERIVATION"
	CodeTarget      = "TARGET_CONFIG"
	CodeUnknownHash = "UNKNOWN_HASH"
)

// OracleError is a failure of the verification machinery itself, as
// opposed to a candidate that simply does not match. Transient errors may
// be retried by the dispatcher at a smaller batch size before escalating.
type OracleError struct {
	Code      string
	Message   string
	Transient bool
	Err       error
}

func (e *OracleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("oracle %s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("oracle %s: %s", e.Code, e.Message)
}

func (e *OracleError) Unwrap() error { return e.Err }

// IsOracleError reports whether err is an OracleError, returning it.
func IsOracleError(err error) (*OracleError, bool) {
	var oe *OracleError
	ok := errors.As(err, &oe)
	return oe, ok
}
