package ledger

import (
	"errors"
	"fmt"
)

// ErrIntegrity is wrapped by every chain verification failure.
var ErrIntegrity = errors.New("ledger: integrity check failed")

// IntegrityError describes the first block that failed verification.
type IntegrityError struct {
	Index  int
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("ledger: block %d: %s", e.Index, e.Reason)
}

func (e *IntegrityError) Unwrap() error {
	return ErrIntegrity
}
