package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment variable read by this package.
const EnvPrefix = "JOSE_VECTORS_"

// Settings groups all settings the CLI needs.
type Settings struct {
	Logger    LoggerSettings
	Generator GeneratorSettings
}

// ReadSettingsFromEnv loads settings from JOSE_VECTORS_* environment variables,
// applying defaults for anything unset. The result is not validated; callers
// validate after applying flag overrides.
func ReadSettingsFromEnv() (*Settings, error) {
	settings := &Settings{}
	opts := env.Options{Prefix: EnvPrefix}

	if err := env.ParseWithOptions(&settings.Logger, opts); err != nil {
		return nil, fmt.Errorf("parse logger env: %w", err)
	}
	if err := env.ParseWithOptions(&settings.Generator, opts); err != nil {
		return nil, fmt.Errorf("parse generator env: %w", err)
	}

	return settings, nil
}
