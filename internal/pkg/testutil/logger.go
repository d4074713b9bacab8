package testutil

import (
	"testing"

	"github.com/r-lib/jose/internal/pkg/config"
	"github.com/r-lib/jose/internal/pkg/logger"

	"github.com/stretchr/testify/require"
)

// SetupTestLogger returns the process logger, writing to stderr. The level
// follows JOSE_VECTORS_LOG_LEVEL so a failing trial can be rerun with debug
// output without touching the test.
func SetupTestLogger(t *testing.T) logger.Logger {
	t.Helper()

	settings, err := config.ReadSettingsFromEnv()
	require.NoError(t, err)
	settings.Logger.LogType = config.LogTypeConsole

	require.NoError(t, logger.InitLogger(&settings.Logger))

	log, err := logger.GetLogger()
	require.NoError(t, err)

	return log
}
