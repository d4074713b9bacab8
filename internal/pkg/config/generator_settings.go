package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Output format constants
const (
	FormatText = "text"
	FormatJSON = "json"
)

// DefaultPlaintext is the message every trial transforms unless overridden.
const DefaultPlaintext = "testje"

// GeneratorSettings holds configuration for test vector generation
type GeneratorSettings struct {
	Plaintext  string `env:"PLAINTEXT" envDefault:"testje" validate:"required"`
	Format     string `env:"FORMAT" envDefault:"text" validate:"required,oneof=text json"`
	OutputPath string `env:"OUTPUT"`
	Workers    int    `env:"WORKERS" envDefault:"4" validate:"min=1,max=64"`
}

// Validate checks that all fields in GeneratorSettings are valid
func (s *GeneratorSettings) Validate() error {
	validate := validator.New()

	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed for GeneratorSettings: %w", err)
	}

	return nil
}
