package app

import (
	"context"
	"fmt"

	"github.com/r-lib/jose/internal/domain/vectors"
	"github.com/r-lib/jose/internal/domain/webcrypto"
	"github.com/r-lib/jose/internal/pkg/logger"
)

// verificationService implements the VerificationService interface
type verificationService struct {
	subtle webcrypto.SubtleCrypto
	logger logger.Logger
}

// NewVerificationService creates a new verificationService instance
func NewVerificationService(subtle webcrypto.SubtleCrypto, logger logger.Logger) (vectors.VerificationService, error) {
	return &verificationService{
		subtle: subtle,
		logger: logger,
	}, nil
}

// Verify checks vector with the verifier of its trial.
func (s *verificationService) Verify(ctx context.Context, vector *vectors.Vector) error {
	if vector == nil {
		return fmt.Errorf("%w: vector cannot be nil", vectors.ErrMalformedVector)
	}
	if err := vector.Validate(); err != nil {
		return err
	}

	trial, err := LookupTrial(vector.Trial)
	if err != nil {
		return err
	}

	if err := trial.Verify(ctx, s.subtle, vector); err != nil {
		s.logger.Warn(fmt.Sprintf("Vector %s (%s) failed verification: %v", vector.ID, vector.Trial, err))
		return err
	}

	s.logger.Info(fmt.Sprintf("Vector %s (%s) verified", vector.ID, vector.Trial))
	return nil
}
