package cryptography

import (
	"crypto"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/r-lib/jose/internal/domain/cryptoalg"
	"github.com/r-lib/jose/internal/domain/webcrypto"
	"github.com/r-lib/jose/internal/pkg/logger"
)

// ecProcessor struct that implements the ECProcessor interface
type ecProcessor struct {
	logger logger.Logger
}

// NewECProcessor creates and returns a new instance of ecProcessor
func NewECProcessor(logger logger.Logger) (cryptoalg.ECProcessor, error) {
	return &ecProcessor{
		logger: logger,
	}, nil
}

// GenerateECDSAKeys generates an ECDSA key pair on the specified elliptic curve.
func (e *ecProcessor) GenerateECDSAKeys(curve elliptic.Curve) (*ecdsa.PrivateKey, *ecdsa.PublicKey, error) {
	privateKey, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to generate ECDSA keys: %v", webcrypto.ErrOperation, err)
	}

	e.logger.Info("Generated ECDSA ", curve.Params().Name, " key pair")
	return privateKey, &privateKey.PublicKey, nil
}

// GenerateECDHKeys generates an ECDH key pair on the specified curve.
func (e *ecProcessor) GenerateECDHKeys(curve ecdh.Curve) (*ecdh.PrivateKey, *ecdh.PublicKey, error) {
	privateKey, err := curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to generate ECDH keys: %v", webcrypto.ErrOperation, err)
	}

	e.logger.Info("Generated ECDH ", curve, " key pair")
	return privateKey, privateKey.PublicKey(), nil
}

// Sign creates a raw r || s signature over the digest of message.
func (e *ecProcessor) Sign(hash crypto.Hash, privateKey *ecdsa.PrivateKey, message []byte) ([]byte, error) {
	if privateKey == nil {
		return nil, errors.New("private key cannot be nil")
	}
	if privateKey.D == nil || privateKey.D.Sign() == 0 {
		return nil, fmt.Errorf("invalid private key: D cannot be zero")
	}
	digest, err := digestOf(hash, message)
	if err != nil {
		return nil, err
	}

	r, s, err := ecdsa.Sign(rand.Reader, privateKey, digest)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to sign message: %v", webcrypto.ErrOperation, err)
	}

	size := coordinateSize(privateKey.Curve)
	signature := make([]byte, 2*size)
	r.FillBytes(signature[:size])
	s.FillBytes(signature[size:])

	e.logger.Debug("ECDSA signing succeeded")
	return signature, nil
}

// Verify checks a raw r || s signature.
func (e *ecProcessor) Verify(hash crypto.Hash, publicKey *ecdsa.PublicKey, signature, message []byte) (bool, error) {
	if publicKey == nil {
		return false, errors.New("public key cannot be nil")
	}
	digest, err := digestOf(hash, message)
	if err != nil {
		return false, err
	}

	size := coordinateSize(publicKey.Curve)
	if len(signature) != 2*size {
		e.logger.Debug("ECDSA signature has length ", len(signature), ", expected ", 2*size)
		return false, nil
	}
	r := new(big.Int).SetBytes(signature[:size])
	s := new(big.Int).SetBytes(signature[size:])

	return ecdsa.Verify(publicKey, digest, r, s), nil
}

// DeriveBits computes the ECDH shared secret truncated to lengthBits bits.
func (e *ecProcessor) DeriveBits(privateKey *ecdh.PrivateKey, publicKey *ecdh.PublicKey, lengthBits int) ([]byte, error) {
	if privateKey == nil || publicKey == nil {
		return nil, errors.New("ECDH derivation requires both a private and a public key")
	}

	secret, err := privateKey.ECDH(publicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", webcrypto.ErrOperation, err)
	}

	bits, err := truncateBits(secret, lengthBits)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("ECDH derived ", len(bits)*8, " bits")
	return bits, nil
}

func coordinateSize(curve elliptic.Curve) int {
	return (curve.Params().BitSize + 7) / 8
}

// truncateBits returns the first lengthBits bits of secret, zeroing the
// unused low bits of a trailing partial byte. Zero selects the whole secret.
func truncateBits(secret []byte, lengthBits int) ([]byte, error) {
	if lengthBits == 0 {
		return secret, nil
	}
	if lengthBits < 0 || lengthBits > len(secret)*8 {
		return nil, fmt.Errorf("%w: requested %d bits from a %d-bit secret", webcrypto.ErrOperation, lengthBits, len(secret)*8)
	}

	n := (lengthBits + 7) / 8
	out := secret[:n]
	if rem := lengthBits % 8; rem != 0 {
		out[n-1] &= byte(0xff << (8 - rem))
	}
	return out, nil
}
