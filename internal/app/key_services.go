package app

import (
	"context"
	"fmt"

	"github.com/r-lib/jose/internal/domain/vectors"
	"github.com/r-lib/jose/internal/domain/webcrypto"
	"github.com/r-lib/jose/internal/pkg/logger"
)

// Defaults applied by the key service when a request leaves a field unset.
const (
	DefaultAESLength     = 256
	DefaultModulusLength = 2048
)

// keyService implements the KeyService interface
type keyService struct {
	subtle webcrypto.SubtleCrypto
	logger logger.Logger
}

// NewKeyService creates a new keyService instance
func NewKeyService(subtle webcrypto.SubtleCrypto, logger logger.Logger) (vectors.KeyService, error) {
	return &keyService{
		subtle: subtle,
		logger: logger,
	}, nil
}

// Generate creates a key or key pair as described by request and exports it.
// It returns the secret key, or the private key followed by the public key.
func (s *keyService) Generate(ctx context.Context, request *vectors.KeyRequest) ([]vectors.NamedKey, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	alg := request.Algorithm
	usages := keyUsages(alg)
	hash := request.Hash
	if hash == "" {
		hash = webcrypto.HashSHA256
	}

	var keys []*webcrypto.CryptoKey
	switch {
	case alg.IsAES():
		length := request.Length
		if length == 0 {
			length = DefaultAESLength
		}
		key, err := s.subtle.GenerateKey(ctx, &webcrypto.AESKeyGenParams{Name: alg, Length: length}, request.Extractable, usages)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)

	case alg == webcrypto.AlgorithmHMAC:
		key, err := s.subtle.GenerateKey(ctx, &webcrypto.HMACKeyGenParams{Name: alg, Hash: hash, Length: request.Length}, request.Extractable, usages)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)

	case alg.IsRSA():
		modulusLength := request.ModulusLength
		if modulusLength == 0 {
			modulusLength = DefaultModulusLength
		}
		pair, err := s.subtle.GenerateKeyPair(ctx, &webcrypto.RSAHashedKeyGenParams{
			Name:           alg,
			ModulusLength:  modulusLength,
			PublicExponent: rsaPublicExponent,
			Hash:           hash,
		}, request.Extractable, usages)
		if err != nil {
			return nil, err
		}
		keys = append(keys, pair.PrivateKey, pair.PublicKey)

	case alg.IsEC():
		curve := request.NamedCurve
		if curve == "" {
			curve = webcrypto.CurveP521
		}
		pair, err := s.subtle.GenerateKeyPair(ctx, &webcrypto.ECKeyGenParams{Name: alg, NamedCurve: curve}, request.Extractable, usages)
		if err != nil {
			return nil, err
		}
		keys = append(keys, pair.PrivateKey, pair.PublicKey)

	default:
		return nil, fmt.Errorf("%w: %s keys are not generated", webcrypto.ErrNotSupported, alg)
	}

	return s.export(ctx, keys)
}

func (s *keyService) export(ctx context.Context, keys []*webcrypto.CryptoKey) ([]vectors.NamedKey, error) {
	named := make([]vectors.NamedKey, 0, len(keys))
	for _, key := range keys {
		name := KeySecret
		switch key.Type {
		case webcrypto.KeyTypePrivate:
			name = KeyPrivate
		case webcrypto.KeyTypePublic:
			name = KeyPublic
		}

		jwk, err := s.subtle.ExportJWK(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", name, err)
		}
		named = append(named, vectors.NamedKey{Name: name, JWK: jwk})
	}

	s.logger.Info(fmt.Sprintf("Generated %d key(s)", len(named)))
	return named, nil
}
