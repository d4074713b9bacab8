//go:build unit
// +build unit

package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/r-lib/jose/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetLoggerSingleton() {
	loggerInstance = nil
	loggerErr = nil
	loggerOnce = sync.Once{}
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name     string
		settings func(t *testing.T) *config.LoggerSettings
		wantErr  bool
	}{
		{
			name: "console for generate runs",
			settings: func(t *testing.T) *config.LoggerSettings {
				return &config.LoggerSettings{LogLevel: config.LogLevelInfo, LogType: config.LogTypeConsole}
			},
		},
		{
			name: "rotating file next to the vector output",
			settings: func(t *testing.T) *config.LoggerSettings {
				return &config.LoggerSettings{
					LogLevel:   config.LogLevelDebug,
					LogType:    config.LogTypeFile,
					FilePath:   filepath.Join(t.TempDir(), "jose-vectors.log"),
					MaxSize:    10,
					MaxBackups: 3,
					MaxAge:     28,
				}
			},
		},
		{
			name: "unknown level",
			settings: func(t *testing.T) *config.LoggerSettings {
				return &config.LoggerSettings{LogLevel: "trace", LogType: config.LogTypeConsole}
			},
			wantErr: true,
		},
		{
			name: "unknown type",
			settings: func(t *testing.T) *config.LoggerSettings {
				return &config.LoggerSettings{LogLevel: config.LogLevelInfo, LogType: "syslog"}
			},
			wantErr: true,
		},
		{
			name: "file without rotation limits",
			settings: func(t *testing.T) *config.LoggerSettings {
				return &config.LoggerSettings{
					LogLevel: config.LogLevelInfo,
					LogType:  config.LogTypeFile,
					FilePath: filepath.Join(t.TempDir(), "jose-vectors.log"),
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(resetLoggerSingleton)
			settings := tt.settings(t)

			err := InitLogger(settings)

			if tt.wantErr {
				require.Error(t, err)
				logger, getErr := GetLogger()
				assert.ErrorIs(t, getErr, ErrNotInitialized)
				assert.Nil(t, logger)
				return
			}

			require.NoError(t, err)
			logger, err := GetLogger()
			require.NoError(t, err)
			require.NotNil(t, logger)

			if settings.LogType == config.LogTypeFile {
				logger.Info("trial 1 of 3 emitted")
				_, err := os.Stat(settings.FilePath)
				assert.NoError(t, err)
			}
		})
	}
}

func TestInitLogger_NilSettings(t *testing.T) {
	t.Cleanup(resetLoggerSingleton)

	assert.Error(t, InitLogger(nil))
	_, err := GetLogger()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestInitLogger_FirstSettingsWin(t *testing.T) {
	t.Cleanup(resetLoggerSingleton)

	require.NoError(t, InitLogger(&config.LoggerSettings{
		LogLevel: config.LogLevelInfo,
		LogType:  config.LogTypeConsole,
	}))
	first, err := GetLogger()
	require.NoError(t, err)

	// The verify command reuses the logger set up by an earlier command in
	// the same process; its settings are ignored.
	require.NoError(t, InitLogger(&config.LoggerSettings{
		LogLevel: "trace",
		LogType:  config.LogTypeConsole,
	}))
	second, err := GetLogger()
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestNewLogger_ConsoleTagsRun(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&config.LoggerSettings{
		LogLevel: config.LogLevelWarning,
		LogType:  config.LogTypeConsole,
	}, &buf)
	require.NoError(t, err)

	logger.Info("generated AES-GCM trial")
	logger.Warn("vector ", 7, " failed verification")

	out := buf.String()
	assert.NotContains(t, out, "generated AES-GCM trial")
	assert.Contains(t, out, "vector 7 failed verification")
	assert.Contains(t, out, "run="+RunID())
}

func TestNewLogger_FileFromEnv(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "jose-vectors.log")
	t.Setenv("JOSE_VECTORS_LOG_TYPE", config.LogTypeFile)
	t.Setenv("JOSE_VECTORS_LOG_FILE", logPath)
	t.Setenv("JOSE_VECTORS_LOG_LEVEL", config.LogLevelCritical)

	settings, err := config.ReadSettingsFromEnv()
	require.NoError(t, err)

	logger, err := newLogger(&settings.Logger, nil)
	require.NoError(t, err)

	logger.Warn("slow PBKDF2 trial")
	logger.Error("RSA-OAEP keygen failed")

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "RSA-OAEP keygen failed", record["msg"])
	assert.Equal(t, RunID(), record["run"])
}

func TestRunID_StableWithinProcess(t *testing.T) {
	assert.NotEmpty(t, RunID())
	assert.Equal(t, RunID(), RunID())
	assert.Len(t, RunID(), 36)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{config.LogLevelDebug, slog.LevelDebug},
		{config.LogLevelInfo, slog.LevelInfo},
		{config.LogLevelWarning, slog.LevelWarn},
		{config.LogLevelError, slog.LevelError},
		{config.LogLevelCritical, slog.LevelError},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.level))
		})
	}
}

func TestFormatArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []interface{}
		expected string
	}{
		{"none", nil, ""},
		{"message", []interface{}{"wrote trial"}, "wrote trial"},
		{"adjacent strings", []interface{}{"AES-", "KW"}, "AES-KW"},
		{"counts", []interface{}{"trial ", "aes-gcm", " took ", 3}, "trial aes-gcm took 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatArgs(tt.args...))
		})
	}
}
