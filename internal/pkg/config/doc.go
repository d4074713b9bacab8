// Package config provides functionality for loading and managing application configuration.
//
// Settings are read from JOSE_VECTORS_* environment variables, validated, and
// then handed to the CLI, which may override individual values from flags.
package config
