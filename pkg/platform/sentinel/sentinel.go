package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: no record exists at the requested key
// - ErrDuplicate: a record with the same key already exists
// - ErrUnavailable: the store could not be reached or timed out
//
// For validation errors (bad input, violated record invariants), use
// pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrDuplicate   = errors.New("duplicate key")
	ErrUnavailable = errors.New("unavailable")
)
