package barcode

import (
	"fmt"

	"github.com/barcodeprint/backend/internal/domain/shared"
)

// Domain error codes
const (
	CodeInvalidCode     = "INVALID_CODE"
	CodeInvalidTitle    = "INVALID_TITLE"
	CodeInvalidSettings = "INVALID_SETTINGS"
	CodeInvalidCount    = "INVALID_COUNT"
)

// ErrInvalidCode is matched by every InvalidCodeError
var ErrInvalidCode = shared.NewDomainError(CodeInvalidCode, "Invalid numeric code detected")

// InvalidCodeError reports a code that fails the numeric-code format.
// Generated codes never fail, so seeing one during formatting means the
// generator or a caller is broken.
type InvalidCodeError struct {
	Code string
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("invalid numeric code %q", e.Code)
}

// Unwrap exposes the domain sentinel for errors.Is / errors.As
func (e *InvalidCodeError) Unwrap() error {
	return ErrInvalidCode
}

// PersistenceError wraps a failure of the record store. The cause is kept
// intact and reachable through errors.Unwrap.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("barcode store %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError wraps err unless it is nil
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
