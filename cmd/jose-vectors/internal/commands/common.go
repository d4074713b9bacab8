package commands

import (
	"fmt"

	"github.com/r-lib/jose/internal/domain/webcrypto"
	"github.com/r-lib/jose/internal/infrastructure/cryptography"
	"github.com/r-lib/jose/internal/pkg/config"
	"github.com/r-lib/jose/internal/pkg/logger"

	"github.com/spf13/cobra"
)

// InitPersistentFlags registers the flags shared by every command.
func InitPersistentFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringP("log-level", "", "", "Log level (info, debug, warning, error, critical)")
	rootCmd.PersistentFlags().StringP("log-file", "", "", "Write logs to this file instead of stderr")
}

// loadSettings reads settings from the environment and applies the
// persistent flag overrides.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	settings, err := config.ReadSettingsFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		if settings.Logger.LogLevel, err = flags.GetString("log-level"); err != nil {
			return nil, fmt.Errorf("invalid log-level flag: %w", err)
		}
	}
	if flags.Changed("log-file") {
		if settings.Logger.FilePath, err = flags.GetString("log-file"); err != nil {
			return nil, fmt.Errorf("invalid log-file flag: %w", err)
		}
		settings.Logger.LogType = config.LogTypeFile
	}

	if err := settings.Logger.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

func setupLogger(settings *config.LoggerSettings) (logger.Logger, error) {
	if err := logger.InitLogger(settings); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	loggerInstance, err := logger.GetLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to get logger instance: %w", err)
	}

	return loggerInstance, nil
}

// setupSubtleCrypto loads settings, initializes the logger and creates the
// platform SubtleCrypto.
func setupSubtleCrypto(cmd *cobra.Command) (*config.Settings, logger.Logger, webcrypto.SubtleCrypto, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	loggerInstance, err := setupLogger(&settings.Logger)
	if err != nil {
		return nil, nil, nil, err
	}

	subtle, err := cryptography.NewSubtleCrypto(loggerInstance)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create SubtleCrypto: %w", err)
	}

	return settings, loggerInstance, subtle, nil
}
