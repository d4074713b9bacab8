package cryptography

import (
	"crypto"
	"crypto/hmac"
	"crypto/rand"
	"fmt"

	"github.com/r-lib/jose/internal/domain/cryptoalg"
	"github.com/r-lib/jose/internal/domain/webcrypto"
	"github.com/r-lib/jose/internal/pkg/logger"
)

type hmacProcessor struct {
	logger logger.Logger
}

// NewHMACProcessor creates and returns a new instance of hmacProcessor
func NewHMACProcessor(logger logger.Logger) (cryptoalg.HMACProcessor, error) {
	return &hmacProcessor{
		logger: logger,
	}, nil
}

// GenerateKey generates a random key of lengthBits bits.
func (h *hmacProcessor) GenerateKey(lengthBits int) ([]byte, error) {
	if lengthBits <= 0 || lengthBits%8 != 0 {
		return nil, fmt.Errorf("%w: HMAC key length must be a positive multiple of 8, got %d", webcrypto.ErrOperation, lengthBits)
	}

	key := make([]byte, lengthBits/8)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate HMAC key: %w", err)
	}

	h.logger.Debug("Generated HMAC key of ", lengthBits, " bits")
	return key, nil
}

// Sign computes the MAC of data.
func (h *hmacProcessor) Sign(hash crypto.Hash, key, data []byte) ([]byte, error) {
	if !hash.Available() {
		return nil, fmt.Errorf("%w: hash %v", webcrypto.ErrNotSupported, hash)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: HMAC key cannot be empty", webcrypto.ErrOperation)
	}

	mac := hmac.New(hash.New, key)
	mac.Write(data)

	h.logger.Debug("HMAC signing succeeded")
	return mac.Sum(nil), nil
}

// Verify recomputes the MAC and compares it in constant time.
func (h *hmacProcessor) Verify(hash crypto.Hash, key, signature, data []byte) (bool, error) {
	expected, err := h.Sign(hash, key, data)
	if err != nil {
		return false, err
	}
	return hmac.Equal(expected, signature), nil
}
