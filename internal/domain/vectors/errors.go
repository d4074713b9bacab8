package vectors

import "errors"

var (
	// ErrVectorMismatch is returned when a vector does not reproduce.
	ErrVectorMismatch = errors.New("vector mismatch")

	// ErrUnknownTrial is returned for a trial name outside the catalog.
	ErrUnknownTrial = errors.New("unknown trial")

	// ErrMalformedVector is returned for a vector missing keys or outputs its
	// trial needs.
	ErrMalformedVector = errors.New("malformed vector")
)
