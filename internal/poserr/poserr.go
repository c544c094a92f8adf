// Package poserr defines the error kinds shared by the catalog and ledger
// stores. Callers classify failures with errors.Is against the exported
// sentinels; every constructor wraps so the chain keeps the sentinel.
package poserr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed input: empty names, non-positive
	// prices or quantities, unknown payment methods, empty selections.
	ErrValidation = errors.New("validation")

	// ErrNotFound marks a referenced key absent from catalog or ledger.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey marks a create (or rename) that collides with an
	// existing key.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrStorage marks a persistence I/O failure. The underlying error is
	// kept in the chain, never swallowed.
	ErrStorage = errors.New("storage")
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func DuplicateKeyf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDuplicateKey, fmt.Sprintf(format, args...))
}

// Storagef wraps an I/O error with context. Both ErrStorage and the cause
// stay matchable via errors.Is.
func Storagef(err error, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, fmt.Sprintf(format, args...), err)
}
