package webcrypto

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Algorithm is implemented by every algorithm parameter record.
type Algorithm interface {
	AlgorithmName() AlgorithmName
	Validate() error
}

func validateParams(params any) error {
	if err := validate.Struct(params); err != nil {
		return fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return nil
}

// AlgorithmIdentifier names an algorithm that takes no further parameters
// (HMAC and RSASSA-PKCS1-v1_5 signing, AES and KDF key import).
type AlgorithmIdentifier struct {
	Name AlgorithmName `validate:"required"`
}

// AlgorithmName implements Algorithm.
func (p *AlgorithmIdentifier) AlgorithmName() AlgorithmName { return p.Name }

// Validate implements Algorithm.
func (p *AlgorithmIdentifier) Validate() error { return validateParams(p) }

// AESKeyGenParams configures AES-CTR, AES-CBC and AES-GCM key generation.
type AESKeyGenParams struct {
	Name   AlgorithmName `validate:"required"`
	Length int           `validate:"oneof=128 192 256"`
}

// AlgorithmName implements Algorithm.
func (p *AESKeyGenParams) AlgorithmName() AlgorithmName { return p.Name }

// Validate implements Algorithm.
func (p *AESKeyGenParams) Validate() error { return validateParams(p) }

// HMACKeyGenParams configures HMAC key generation and import. A zero Length
// selects the block size of Hash.
type HMACKeyGenParams struct {
	Name   AlgorithmName `validate:"required"`
	Hash   HashName      `validate:"required"`
	Length int           `validate:"min=0"`
}

// HMACImportParams shares its shape with HMACKeyGenParams.
type HMACImportParams = HMACKeyGenParams

// AlgorithmName implements Algorithm.
func (p *HMACKeyGenParams) AlgorithmName() AlgorithmName { return p.Name }

// Validate implements Algorithm.
func (p *HMACKeyGenParams) Validate() error { return validateParams(p) }

// RSAHashedKeyGenParams configures RSA key generation.
type RSAHashedKeyGenParams struct {
	Name           AlgorithmName `validate:"required"`
	ModulusLength  int           `validate:"min=1024,max=16384"`
	PublicExponent []byte        `validate:"required"`
	Hash           HashName      `validate:"required"`
}

// AlgorithmName implements Algorithm.
func (p *RSAHashedKeyGenParams) AlgorithmName() AlgorithmName { return p.Name }

// Validate implements Algorithm.
func (p *RSAHashedKeyGenParams) Validate() error {
	if err := validateParams(p); err != nil {
		return err
	}
	if p.ModulusLength%8 != 0 {
		return fmt.Errorf("%w: modulus length %d is not a multiple of 8", ErrSyntax, p.ModulusLength)
	}
	return nil
}

// RSAHashedImportParams configures RSA key import.
type RSAHashedImportParams struct {
	Name AlgorithmName `validate:"required"`
	Hash HashName      `validate:"required"`
}

// AlgorithmName implements Algorithm.
func (p *RSAHashedImportParams) AlgorithmName() AlgorithmName { return p.Name }

// Validate implements Algorithm.
func (p *RSAHashedImportParams) Validate() error { return validateParams(p) }

// ECKeyGenParams configures ECDSA and ECDH key generation.
type ECKeyGenParams struct {
	Name       AlgorithmName `validate:"required"`
	NamedCurve NamedCurve    `validate:"required"`
}

// ECKeyImportParams shares its shape with ECKeyGenParams.
type ECKeyImportParams = ECKeyGenParams

// AlgorithmName implements Algorithm.
func (p *ECKeyGenParams) AlgorithmName() AlgorithmName { return p.Name }

// Validate implements Algorithm.
func (p *ECKeyGenParams) Validate() error { return validateParams(p) }

// AESCtrParams configures AES-CTR. Only the rightmost Length bits of Counter
// are incremented per block.
type AESCtrParams struct {
	Name    AlgorithmName `validate:"required"`
	Counter []byte        `validate:"len=16"`
	Length  int           `validate:"min=1,max=128"`
}

// AlgorithmName implements Algorithm.
func (p *AESCtrParams) AlgorithmName() AlgorithmName { return p.Name }

// Validate implements Algorithm.
func (p *AESCtrParams) Validate() error { return validateParams(p) }

// AESCbcParams configures AES-CBC.
type AESCbcParams struct {
	Name AlgorithmName `validate:"required"`
	IV   []byte        `validate:"len=16"`
}

// AlgorithmName implements Algorithm.
func (p *AESCbcParams) AlgorithmName() AlgorithmName { return p.Name }

// Validate implements Algorithm.
func (p *AESCbcParams) Validate() error { return validateParams(p) }

// AESGcmParams configures AES-GCM. A zero TagLength selects 128 bits.
type AESGcmParams struct {
	Name           AlgorithmName `validate:"required"`
	IV             []byte        `validate:"min=1"`
	AdditionalData []byte
	TagLength      int `validate:"omitempty,oneof=32 64 96 104 112 120 128"`
}

// AlgorithmName implements Algorithm.
func (p *AESGcmParams) AlgorithmName() AlgorithmName { return p.Name }

// Validate implements Algorithm.
func (p *AESGcmParams) Validate() error { return validateParams(p) }

// RSAOAEPParams configures RSA-OAEP encryption.
type RSAOAEPParams struct {
	Name  AlgorithmName `validate:"required"`
	Label []byte
}

// AlgorithmName implements Algorithm.
func (p *RSAOAEPParams) AlgorithmName() AlgorithmName { return p.Name }

// Validate implements Algorithm.
func (p *RSAOAEPParams) Validate() error { return validateParams(p) }

// RSAPSSParams configures RSA-PSS signing.
type RSAPSSParams struct {
	Name       AlgorithmName `validate:"required"`
	SaltLength int           `validate:"min=0"`
}

// AlgorithmName implements Algorithm.
func (p *RSAPSSParams) AlgorithmName() AlgorithmName { return p.Name }

// Validate implements Algorithm.
func (p *RSAPSSParams) Validate() error { return validateParams(p) }

// ECDSAParams configures ECDSA signing.
type ECDSAParams struct {
	Name AlgorithmName `validate:"required"`
	Hash HashName      `validate:"required"`
}

// AlgorithmName implements Algorithm.
func (p *ECDSAParams) AlgorithmName() AlgorithmName { return p.Name }

// Validate implements Algorithm.
func (p *ECDSAParams) Validate() error { return validateParams(p) }

// ECDHKeyDeriveParams names the peer public key for ECDH bit derivation.
type ECDHKeyDeriveParams struct {
	Name   AlgorithmName `validate:"required"`
	Public *CryptoKey    `validate:"required"`
}

// AlgorithmName implements Algorithm.
func (p *ECDHKeyDeriveParams) AlgorithmName() AlgorithmName { return p.Name }

// Validate implements Algorithm.
func (p *ECDHKeyDeriveParams) Validate() error {
	if p.Public == nil {
		return fmt.Errorf("%w: ECDH derivation requires a public key", ErrSyntax)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: algorithm name is required", ErrSyntax)
	}
	return nil
}

// HKDFParams configures HKDF bit derivation.
type HKDFParams struct {
	Name AlgorithmName `validate:"required"`
	Hash HashName      `validate:"required"`
	Salt []byte
	Info []byte
}

// AlgorithmName implements Algorithm.
func (p *HKDFParams) AlgorithmName() AlgorithmName { return p.Name }

// Validate implements Algorithm.
func (p *HKDFParams) Validate() error { return validateParams(p) }

// PBKDF2Params configures PBKDF2 bit derivation.
type PBKDF2Params struct {
	Name       AlgorithmName `validate:"required"`
	Hash       HashName      `validate:"required"`
	Salt       []byte
	Iterations int `validate:"min=1"`
}

// AlgorithmName implements Algorithm.
func (p *PBKDF2Params) AlgorithmName() AlgorithmName { return p.Name }

// Validate implements Algorithm.
func (p *PBKDF2Params) Validate() error { return validateParams(p) }
