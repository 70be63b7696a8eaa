package store

import "errors"

var (
	// ErrNotFound is returned when a referenced document does not exist.
	ErrNotFound = errors.New("store: document not found")

	// ErrUnavailable is returned for transient store failures. Callers decide
	// whether to surface or swallow it; the store never retries on its own
	// beyond transaction-conflict retry.
	ErrUnavailable = errors.New("store: unavailable")
)
