package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when a document is not in the bucket.
	ErrNotFound = errors.New("document not found")
)
