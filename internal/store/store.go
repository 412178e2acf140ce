// Package store holds the in-memory status and proof maps. Entries live for
// the lifetime of the process; there is no eviction.
package store

import "errors"

var (
	// ErrNotFound is returned for an unknown submission id or email hash
	ErrNotFound = errors.New("not found")
	// ErrTerminalState is returned when a completed or failed status would change
	ErrTerminalState = errors.New("status already terminal")
)
