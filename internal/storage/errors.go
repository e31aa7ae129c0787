package storage

import "errors"

// Storage errors for append-only ledger stores.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when a record violates a uniqueness constraint.
	// Ledger stores never merge or update existing records.
	ErrDuplicateKey = errors.New("duplicate key: ledger does not allow updates")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
