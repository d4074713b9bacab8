package vectors

import (
	"context"
)

// Sink receives finished vectors.
type Sink interface {
	// Emit writes one vector. Implementations are safe for concurrent use
	// and never interleave two vectors.
	Emit(ctx context.Context, vector *Vector) error

	// Close flushes the sink and releases any file it owns.
	Close() error
}

// Source reads vectors back, for example from a JSON Lines file.
type Source interface {
	// Next returns the next vector, or io.EOF when there are no more.
	Next(ctx context.Context) (*Vector, error)
}

// GenerationService runs trials and emits their vectors.
type GenerationService interface {
	// Generate runs the named trials over plaintext. Every trial runs even if
	// others fail; the returned error joins all failures.
	Generate(ctx context.Context, trials []string, plaintext []byte) error
}

// VerificationService checks vectors against the platform API.
type VerificationService interface {
	// Verify re-imports the keys of vector and reproduces or checks its
	// outputs. A vector that does not reproduce yields ErrVectorMismatch.
	Verify(ctx context.Context, vector *Vector) error
}

// KeyService generates standalone keys.
type KeyService interface {
	// Generate creates a key or key pair and returns it exported as JWK.
	Generate(ctx context.Context, request *KeyRequest) ([]NamedKey, error)
}
