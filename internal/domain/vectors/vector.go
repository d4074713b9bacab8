package vectors

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/r-lib/jose/internal/domain/webcrypto"
)

// Upper bounds on parameters read back from a vector file. Length covers the
// longest HKDF-SHA-512 output (255 blocks of 512 bits).
const (
	MaxLength        = 130560
	MaxModulusLength = 16384
	MaxIterations    = 10000000
	MaxSaltLength    = 2048
)

// Params records the algorithm parameters a vector was produced under.
type Params struct {
	Algorithm     webcrypto.AlgorithmName `json:"algorithm" validate:"required"`
	Hash          webcrypto.HashName      `json:"hash,omitempty"`
	NamedCurve    webcrypto.NamedCurve    `json:"namedCurve,omitempty"`
	Length        int                     `json:"length,omitempty" validate:"min=0,max=130560"`
	ModulusLength int                     `json:"modulusLength,omitempty" validate:"min=0,max=16384"`
	Iterations    int                     `json:"iterations,omitempty" validate:"min=0,max=10000000"`
	SaltLength    int                     `json:"saltLength,omitempty" validate:"min=0,max=2048"`
}

// NamedKey is an exported key with the role it plays in the vector.
type NamedKey struct {
	Name string         `json:"name" validate:"required"`
	JWK  *webcrypto.JWK `json:"jwk" validate:"required"`
}

// Output is a labelled result buffer. Value marshals as standard Base64.
type Output struct {
	Label string `json:"label" validate:"required"`
	Value []byte `json:"value"`
}

// Vector is the outcome of one trial.
type Vector struct {
	ID        string     `json:"id" validate:"required,uuid"`
	Trial     string     `json:"trial" validate:"required"`
	Params    Params     `json:"params"`
	Input     []byte     `json:"input"`
	Keys      []NamedKey `json:"keys" validate:"dive"`
	Outputs   []Output   `json:"outputs" validate:"dive"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NewVector creates an empty vector for trial with a fresh ID.
func NewVector(trial string, params Params, input []byte) *Vector {
	return &Vector{
		ID:        uuid.New().String(),
		Trial:     trial,
		Params:    params,
		Input:     input,
		Keys:      []NamedKey{},
		Outputs:   []Output{},
		CreatedAt: time.Now().UTC(),
	}
}

// AddKey appends an exported key.
func (v *Vector) AddKey(name string, jwk *webcrypto.JWK) {
	v.Keys = append(v.Keys, NamedKey{Name: name, JWK: jwk})
}

// AddOutput appends a labelled result.
func (v *Vector) AddOutput(label string, value []byte) {
	v.Outputs = append(v.Outputs, Output{Label: label, Value: value})
}

// Key returns the key stored under name.
func (v *Vector) Key(name string) (*webcrypto.JWK, error) {
	for _, k := range v.Keys {
		if k.Name == name {
			return k.JWK, nil
		}
	}
	return nil, fmt.Errorf("%w: %s has no key %q", ErrMalformedVector, v.Trial, name)
}

// Output returns the result stored under label.
func (v *Vector) Output(label string) ([]byte, error) {
	for _, o := range v.Outputs {
		if o.Label == label {
			return o.Value, nil
		}
	}
	return nil, fmt.Errorf("%w: %s has no output %q", ErrMalformedVector, v.Trial, label)
}

// Validate for validating Vector struct
func (v *Vector) Validate() error {
	validate := validator.New()

	err := validate.Struct(v)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var messages []string
			for _, fieldErr := range validationErrors {
				messages = append(messages, fmt.Sprintf("Field: %s, Tag: %s", fieldErr.Field(), fieldErr.Tag()))
			}
			return fmt.Errorf("%w: validation failed: %v", ErrMalformedVector, messages)
		}
		return fmt.Errorf("validation error: %w", err)
	}

	return nil
}
