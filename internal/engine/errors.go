// Package engine implements HiveMindDB's in-process memory engine: the
// identifier allocator, concurrent store, embedding index, memory manager,
// and graph manager (C1-C5 in the design).
package engine

import "errors"

// Sentinel errors for engine operations. Use errors.Is() to check for these
// in calling code; callers never need a bespoke error type hierarchy.
var (
	// ErrNotFound indicates the requested memory/entity/relationship/agent/
	// channel/task id is unknown.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates bad input: a missing required field, empty
	// content, or a malformed filter.
	ErrValidation = errors.New("validation failed")

	// ErrGraphEndpoint indicates a relationship references a non-existent
	// entity.
	ErrGraphEndpoint = errors.New("relationship endpoint does not exist")

	// ErrTaskState indicates a disallowed task transition or a claimant
	// mismatch.
	ErrTaskState = errors.New("invalid task state transition")

	// ErrEmbeddingShape indicates a vector's dimension conflicts with the
	// dimension established at first insertion.
	ErrEmbeddingShape = errors.New("embedding dimension mismatch")

	// ErrTransport indicates an embedder/extractor/replication HTTP failure
	// or timeout. Never fatal to a write that already committed to the
	// store.
	ErrTransport = errors.New("transport error")

	// ErrSnapshotCorrupt indicates a restore failure on startup. Fatal.
	ErrSnapshotCorrupt = errors.New("snapshot corrupt")

	// ErrSnapshotIO indicates a snapshot write failure. Fatal at shutdown.
	ErrSnapshotIO = errors.New("snapshot write failed")

	// ErrCapacity indicates a bus queue was full. Surfaced as a counter,
	// never returned to an HTTP caller.
	ErrCapacity = errors.New("capacity exceeded")

	// ErrAlreadyInvalid indicates invalidate() was called on a memory that
	// is already invalid.
	ErrAlreadyInvalid = errors.New("memory already invalidated")
)
