package vectors

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/r-lib/jose/internal/domain/webcrypto"
)

// KeyRequest describes a standalone key to generate.
type KeyRequest struct {
	Algorithm     webcrypto.AlgorithmName `validate:"required"`
	Length        int                     `validate:"min=0"`
	Hash          webcrypto.HashName
	NamedCurve    webcrypto.NamedCurve
	ModulusLength int `validate:"min=0"`
	Extractable   bool
}

// Validate for validating KeyRequest struct
func (r *KeyRequest) Validate() error {
	validate := validator.New()

	err := validate.Struct(r)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var messages []string
			for _, fieldErr := range validationErrors {
				messages = append(messages, fmt.Sprintf("Field: %s, Tag: %s", fieldErr.Field(), fieldErr.Tag()))
			}
			return fmt.Errorf("validation failed: %v", messages)
		}
		return fmt.Errorf("validation error: %w", err)
	}

	return nil
}
