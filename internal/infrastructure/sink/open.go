package sink

import (
	"fmt"
	"io"
	"os"

	"github.com/r-lib/jose/internal/domain/vectors"
	"github.com/r-lib/jose/internal/pkg/config"
	"github.com/r-lib/jose/internal/pkg/logger"
)

// Open creates the sink selected by settings. An empty output path writes to
// stdout, which the sink does not close.
func Open(settings *config.GeneratorSettings, stdout io.Writer, logger logger.Logger) (vectors.Sink, error) {
	w := stdout
	var closer io.Closer
	if settings.OutputPath != "" {
		f, err := os.Create(settings.OutputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file: %w", err)
		}
		w, closer = f, f
	}

	switch settings.Format {
	case config.FormatText:
		return NewTextSink(w, closer, logger), nil
	case config.FormatJSON:
		return NewJSONLSink(w, closer, logger), nil
	default:
		if closer != nil {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("unsupported output format: %s", settings.Format)
	}
}

// OpenSource opens a JSON Lines file for reading. The returned closer must
// be closed by the caller.
func OpenSource(path string) (vectors.Source, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file: %w", err)
	}
	return NewJSONLSource(f), f, nil
}
