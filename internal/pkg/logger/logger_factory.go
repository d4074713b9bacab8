package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/r-lib/jose/internal/pkg/config"
)

// ErrNotInitialized is returned by GetLogger before InitLogger succeeded.
var ErrNotInitialized = errors.New("logger not initialized: call InitLogger first")

var (
	loggerInstance Logger
	loggerErr      error
	loggerOnce     sync.Once
	runID          = uuid.NewString()
)

// InitLogger builds the process-wide logger for a jose-vectors run. Only the
// first call has an effect; later calls return the first call's error.
// Console output goes to stderr because generated vectors own stdout.
func InitLogger(settings *config.LoggerSettings) error {
	loggerOnce.Do(func() {
		loggerInstance, loggerErr = newLogger(settings, os.Stderr)
	})
	return loggerErr
}

// GetLogger returns the logger built by InitLogger.
func GetLogger() (Logger, error) {
	if loggerInstance == nil {
		return nil, ErrNotInitialized
	}
	return loggerInstance, nil
}

// RunID identifies this process in every record, so a rotated log file shared
// by several generate or verify invocations can be split per run.
func RunID() string {
	return runID
}

func newLogger(c *config.LoggerSettings, console io.Writer) (Logger, error) {
	if c == nil {
		return nil, fmt.Errorf("invalid config: logger settings are nil")
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	switch c.LogType {
	case config.LogTypeConsole:
		l := newConsoleLogger(console, c.LogLevel)
		l.logger = l.logger.With("run", runID)
		return l, nil
	case config.LogTypeFile:
		l := newFileLogger(c.LogLevel, c.FilePath, c.MaxSize, c.MaxBackups, c.MaxAge)
		l.logger = l.logger.With("run", runID)
		return l, nil
	default:
		return nil, fmt.Errorf("unsupported log type: %s", c.LogType)
	}
}

// parseLevel maps the configured level names onto slog levels. slog has no
// critical level, so critical collapses into error.
func parseLevel(level string) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarning:
		return slog.LevelWarn
	case config.LogLevelError, config.LogLevelCritical:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func formatArgs(args ...interface{}) string {
	if len(args) == 0 {
		return ""
	}
	return fmt.Sprint(args...)
}
