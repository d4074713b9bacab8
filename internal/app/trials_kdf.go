package app

import (
	"context"
	"fmt"

	"github.com/r-lib/jose/internal/domain/vectors"
	"github.com/r-lib/jose/internal/domain/webcrypto"
)

const (
	kdfDerivedBits   = 256
	kdfSaltLength    = 16
	pbkdf2Iterations = 100000
)

var hkdfInfo = []byte("jose")

var hkdfTrial = Trial{
	Name:        "hkdf-sha256",
	Description: "HKDF SHA-256 over the plaintext, random salt, info \"jose\", 256 bits",
	Generate: func(ctx context.Context, subtle webcrypto.SubtleCrypto, plaintext []byte) (*vectors.Vector, error) {
		salt, err := randomBytes(kdfSaltLength)
		if err != nil {
			return nil, err
		}
		params := vectors.Params{Algorithm: webcrypto.AlgorithmHKDF, Hash: webcrypto.HashSHA256, Length: kdfDerivedBits}
		bits, err := deriveHKDF(ctx, subtle, params, plaintext, salt, hkdfInfo)
		if err != nil {
			return nil, err
		}

		v := vectors.NewVector("hkdf-sha256", params, plaintext)
		v.AddOutput(OutputSalt, salt)
		v.AddOutput(OutputInfo, hkdfInfo)
		v.AddOutput(OutputBits, bits)
		return v, nil
	},
	Verify: func(ctx context.Context, subtle webcrypto.SubtleCrypto, v *vectors.Vector) error {
		salt, err := v.Output(OutputSalt)
		if err != nil {
			return err
		}
		info, err := v.Output(OutputInfo)
		if err != nil {
			return err
		}
		bits, err := v.Output(OutputBits)
		if err != nil {
			return err
		}
		derived, err := deriveHKDF(ctx, subtle, v.Params, v.Input, salt, info)
		if err != nil {
			return err
		}
		return expectEqual(OutputBits, bits, derived)
	},
}

var pbkdf2Trial = Trial{
	Name:        "pbkdf2-sha256",
	Description: "PBKDF2 SHA-256 over the plaintext, random salt, 100000 iterations, 256 bits",
	Generate: func(ctx context.Context, subtle webcrypto.SubtleCrypto, plaintext []byte) (*vectors.Vector, error) {
		salt, err := randomBytes(kdfSaltLength)
		if err != nil {
			return nil, err
		}
		params := vectors.Params{
			Algorithm:  webcrypto.AlgorithmPBKDF2,
			Hash:       webcrypto.HashSHA256,
			Length:     kdfDerivedBits,
			Iterations: pbkdf2Iterations,
		}
		bits, err := derivePBKDF2(ctx, subtle, params, plaintext, salt)
		if err != nil {
			return nil, err
		}

		v := vectors.NewVector("pbkdf2-sha256", params, plaintext)
		v.AddOutput(OutputSalt, salt)
		v.AddOutput(OutputBits, bits)
		return v, nil
	},
	Verify: func(ctx context.Context, subtle webcrypto.SubtleCrypto, v *vectors.Vector) error {
		salt, err := v.Output(OutputSalt)
		if err != nil {
			return err
		}
		bits, err := v.Output(OutputBits)
		if err != nil {
			return err
		}
		derived, err := derivePBKDF2(ctx, subtle, v.Params, v.Input, salt)
		if err != nil {
			return err
		}
		return expectEqual(OutputBits, bits, derived)
	},
}

// importSecret imports secret as a non-extractable KDF base key.
func importSecret(ctx context.Context, subtle webcrypto.SubtleCrypto, name webcrypto.AlgorithmName, secret []byte) (*webcrypto.CryptoKey, error) {
	key, err := subtle.ImportKey(ctx, webcrypto.KeyFormatRaw, secret, &webcrypto.AlgorithmIdentifier{Name: name}, false, keyUsages(name))
	if err != nil {
		return nil, fmt.Errorf("failed to import %s key: %w", name, err)
	}
	return key, nil
}

func deriveHKDF(ctx context.Context, subtle webcrypto.SubtleCrypto, params vectors.Params, secret, salt, info []byte) ([]byte, error) {
	key, err := importSecret(ctx, subtle, webcrypto.AlgorithmHKDF, secret)
	if err != nil {
		return nil, err
	}
	bits, err := subtle.DeriveBits(ctx, &webcrypto.HKDFParams{
		Name: webcrypto.AlgorithmHKDF,
		Hash: params.Hash,
		Salt: salt,
		Info: info,
	}, key, params.Length)
	if err != nil {
		return nil, fmt.Errorf("failed to derive bits: %w", err)
	}
	return bits, nil
}

func derivePBKDF2(ctx context.Context, subtle webcrypto.SubtleCrypto, params vectors.Params, password, salt []byte) ([]byte, error) {
	key, err := importSecret(ctx, subtle, webcrypto.AlgorithmPBKDF2, password)
	if err != nil {
		return nil, err
	}
	bits, err := subtle.DeriveBits(ctx, &webcrypto.PBKDF2Params{
		Name:       webcrypto.AlgorithmPBKDF2,
		Hash:       params.Hash,
		Salt:       salt,
		Iterations: params.Iterations,
	}, key, params.Length)
	if err != nil {
		return nil, fmt.Errorf("failed to derive bits: %w", err)
	}
	return bits, nil
}
