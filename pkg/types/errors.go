package types

import "errors"

// Standard errors returned by the storage backend and the sync engine.
var (
	// ErrNotFound indicates a point lookup matched no row.
	ErrNotFound = errors.New("record not found")

	// ErrUnknownRecordKind indicates an envelope or tombstone carried a
	// kind discriminator outside the recognized set.
	ErrUnknownRecordKind = errors.New("unknown record kind")

	// ErrInvalidEnvelope indicates a change envelope is missing a required
	// field. Batches containing such envelopes are refused as a whole.
	ErrInvalidEnvelope = errors.New("invalid change envelope")

	// ErrInvalidID indicates a record or device identifier that is not a
	// valid UUID (or, for task-tag links, a valid composite id).
	ErrInvalidID = errors.New("invalid identifier")

	// ErrCursorRegression indicates an attempt to move a device cursor
	// backward. This is an invariant violation, never a recoverable
	// condition.
	ErrCursorRegression = errors.New("device cursor moved backward")
)
