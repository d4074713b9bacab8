package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/r-lib/jose/internal/domain/vectors"
	"github.com/r-lib/jose/internal/pkg/logger"
)

// jsonlSink writes one JSON document per line.
type jsonlSink struct {
	mu     sync.Mutex
	enc    *json.Encoder
	closer io.Closer
	logger logger.Logger
}

// NewJSONLSink creates a JSON Lines sink on w. If closer is non-nil, Close
// closes it.
func NewJSONLSink(w io.Writer, closer io.Closer, logger logger.Logger) vectors.Sink {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &jsonlSink{enc: enc, closer: closer, logger: logger}
}

func (s *jsonlSink) Emit(ctx context.Context, vector *vectors.Vector) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enc.Encode(vector); err != nil {
		return fmt.Errorf("failed to encode vector %s: %w", vector.ID, err)
	}
	s.logger.Debug("Wrote JSON vector ", vector.ID)
	return nil
}

func (s *jsonlSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
