package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/r-lib/jose/internal/domain/vectors"
	"github.com/r-lib/jose/internal/domain/webcrypto"
	"github.com/r-lib/jose/internal/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// generationService implements the GenerationService interface
type generationService struct {
	subtle  webcrypto.SubtleCrypto
	sink    vectors.Sink
	workers int
	logger  logger.Logger

	emitMu sync.Mutex
}

// NewGenerationService creates a new generationService instance
func NewGenerationService(subtle webcrypto.SubtleCrypto, sink vectors.Sink, workers int, logger logger.Logger) (vectors.GenerationService, error) {
	if workers < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", workers)
	}
	return &generationService{
		subtle:  subtle,
		sink:    sink,
		workers: workers,
		logger:  logger,
	}, nil
}

// Generate runs the named trials concurrently and emits each vector as soon
// as its trial finishes.
func (s *generationService) Generate(ctx context.Context, names []string, plaintext []byte) error {
	trials, err := resolveTrials(names)
	if err != nil {
		return err
	}

	var (
		g        errgroup.Group
		failMu   sync.Mutex
		failures []error
	)
	g.SetLimit(s.workers)

	for _, trial := range trials {
		trial := trial
		g.Go(func() error {
			if err := s.run(ctx, trial, plaintext); err != nil {
				s.logger.Error(fmt.Sprintf("Trial %s failed: %v", trial.Name, err))
				failMu.Lock()
				failures = append(failures, fmt.Errorf("trial %s: %w", trial.Name, err))
				failMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(failures...)
}

func (s *generationService) run(ctx context.Context, trial Trial, plaintext []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	vector, err := trial.Generate(ctx, s.subtle, plaintext)
	if err != nil {
		return err
	}

	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	if err := s.sink.Emit(ctx, vector); err != nil {
		return fmt.Errorf("failed to emit vector: %w", err)
	}

	s.logger.Info(fmt.Sprintf("Trial %s produced vector %s", trial.Name, vector.ID))
	return nil
}

// resolveTrials maps names onto the catalog, rejecting every unknown name
// at once. No names selects the whole catalog.
func resolveTrials(names []string) ([]Trial, error) {
	if len(names) == 0 {
		return Trials(), nil
	}

	trials := make([]Trial, 0, len(names))
	var unknown []error
	for _, name := range names {
		trial, err := LookupTrial(name)
		if err != nil {
			unknown = append(unknown, err)
			continue
		}
		trials = append(trials, trial)
	}
	if len(unknown) > 0 {
		return nil, errors.Join(unknown...)
	}
	return trials, nil
}
