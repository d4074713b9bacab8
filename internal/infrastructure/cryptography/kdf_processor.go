package cryptography

import (
	"crypto"
	"fmt"
	"io"

	"github.com/r-lib/jose/internal/domain/cryptoalg"
	"github.com/r-lib/jose/internal/domain/webcrypto"
	"github.com/r-lib/jose/internal/pkg/logger"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

type kdfProcessor struct {
	logger logger.Logger
}

// NewKDFProcessor creates and returns a new instance of kdfProcessor
func NewKDFProcessor(logger logger.Logger) (cryptoalg.KDFProcessor, error) {
	return &kdfProcessor{
		logger: logger,
	}, nil
}

// HKDF derives lengthBits bits with HKDF extract-and-expand (RFC 5869).
func (k *kdfProcessor) HKDF(hash crypto.Hash, secret, salt, info []byte, lengthBits int) ([]byte, error) {
	if err := checkDerivedLength(lengthBits); err != nil {
		return nil, err
	}
	if !hash.Available() {
		return nil, fmt.Errorf("%w: hash %v", webcrypto.ErrNotSupported, hash)
	}
	if lengthBits/8 > 255*hash.Size() {
		return nil, fmt.Errorf("%w: HKDF output length too large", webcrypto.ErrOperation)
	}

	out := make([]byte, lengthBits/8)
	if _, err := io.ReadFull(hkdf.New(hash.New, secret, salt, info), out); err != nil {
		return nil, fmt.Errorf("%w: %v", webcrypto.ErrOperation, err)
	}

	k.logger.Debug("HKDF derived ", lengthBits, " bits")
	return out, nil
}

// PBKDF2 derives lengthBits bits from a password (RFC 8018).
func (k *kdfProcessor) PBKDF2(hash crypto.Hash, password, salt []byte, iterations, lengthBits int) ([]byte, error) {
	if err := checkDerivedLength(lengthBits); err != nil {
		return nil, err
	}
	if iterations < 1 {
		return nil, fmt.Errorf("%w: PBKDF2 iterations must be at least 1", webcrypto.ErrOperation)
	}
	if !hash.Available() {
		return nil, fmt.Errorf("%w: hash %v", webcrypto.ErrNotSupported, hash)
	}

	out := pbkdf2.Key(password, salt, iterations, lengthBits/8, hash.New)

	k.logger.Debug("PBKDF2 derived ", lengthBits, " bits over ", iterations, " iterations")
	return out, nil
}

func checkDerivedLength(lengthBits int) error {
	if lengthBits <= 0 || lengthBits%8 != 0 {
		return fmt.Errorf("%w: derived length must be a positive multiple of 8, got %d", webcrypto.ErrOperation, lengthBits)
	}
	return nil
}
