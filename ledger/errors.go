// Package ledger implements the balance ledger operation: applying a payment
// to a client service balance so the payment record and the updated balance
// are committed atomically, or not at all.
package ledger

import (
	"errors"
	"fmt"
)

// Sentinel errors. Handlers map these to HTTP statuses; everything else on
// the ledger path is wrapped as a storage error.
var (
	// ErrValidation marks a bad amount, method or missing required field.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a client service that does not exist or is already
	// settled and therefore not payable.
	ErrNotFound = errors.New("client service not found or not payable")

	// ErrConflict marks a concurrent modification detected by the database
	// (serialization failure or deadlock).
	ErrConflict = errors.New("concurrent modification detected")

	// ErrStorage marks a transaction or connection failure.
	ErrStorage = errors.New("storage failure")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func storagef(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}
