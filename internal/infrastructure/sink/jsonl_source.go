package sink

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/r-lib/jose/internal/domain/vectors"
)

// maxLineSize bounds a single JSON line; RSA-4096 private JWKs stay well
// below it.
const maxLineSize = 1 << 20

// jsonlSource reads vectors written by the JSON Lines sink.
type jsonlSource struct {
	scanner *bufio.Scanner
	line    int
}

// NewJSONLSource reads vectors from r. Blank lines are skipped.
func NewJSONLSource(r io.Reader) vectors.Source {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &jsonlSource{scanner: scanner}
}

func (s *jsonlSource) Next(ctx context.Context) (*vectors.Vector, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, fmt.Errorf("failed to read line %d: %w", s.line+1, err)
			}
			return nil, io.EOF
		}
		s.line++

		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var vector vectors.Vector
		if err := json.Unmarshal(line, &vector); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", vectors.ErrMalformedVector, s.line, err)
		}
		return &vector, nil
	}
}
