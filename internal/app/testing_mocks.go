//go:build unit
// +build unit

package app

import (
	"context"
	"testing"

	"github.com/r-lib/jose/internal/domain/vectors"
	"github.com/r-lib/jose/internal/domain/webcrypto"
	"github.com/r-lib/jose/internal/infrastructure/cryptography"
	"github.com/r-lib/jose/internal/pkg/testutil"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSink is a mock implementation of vectors.Sink
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Emit(ctx context.Context, vector *vectors.Vector) error {
	args := m.Called(ctx, vector)
	return args.Error(0)
}

func (m *MockSink) Close() error {
	args := m.Called()
	return args.Error(0)
}

// setupSubtleCrypto returns the platform SubtleCrypto with a test logger.
func setupSubtleCrypto(t *testing.T) webcrypto.SubtleCrypto {
	t.Helper()
	logger := testutil.SetupTestLogger(t)
	subtle, err := cryptography.NewSubtleCrypto(logger)
	require.NoError(t, err)
	return subtle
}
