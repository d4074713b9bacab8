package sink

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/r-lib/jose/internal/domain/vectors"
	"github.com/r-lib/jose/internal/pkg/logger"
	"github.com/r-lib/jose/internal/pkg/textenc"
)

// textSink prints vectors the way the browser test pages log them: one JWK
// per line followed by "label: base64" lines.
type textSink struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	logger logger.Logger
}

// NewTextSink creates a text sink on w. If closer is non-nil, Close closes it.
func NewTextSink(w io.Writer, closer io.Closer, logger logger.Logger) vectors.Sink {
	return &textSink{w: w, closer: closer, logger: logger}
}

func (s *textSink) Emit(ctx context.Context, vector *vectors.Vector) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bw := bufio.NewWriter(s.w)
	fmt.Fprintf(bw, "# %s %s\n", vector.Trial, vector.ID)
	for _, key := range vector.Keys {
		fmt.Fprintln(bw, key.JWK.String())
	}
	for _, out := range vector.Outputs {
		fmt.Fprintf(bw, "%s: %s\n", out.Label, textenc.Base64(out.Value))
	}
	fmt.Fprintln(bw)

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write vector %s: %w", vector.ID, err)
	}
	s.logger.Debug("Wrote text vector ", vector.ID)
	return nil
}

func (s *textSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
