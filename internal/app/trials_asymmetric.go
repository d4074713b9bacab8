package app

import (
	"context"
	"fmt"

	"github.com/r-lib/jose/internal/domain/vectors"
	"github.com/r-lib/jose/internal/domain/webcrypto"
)

const (
	rsaModulusLength = 2048
	pssSaltLength    = 32
	ecdhDerivedBits  = 528
)

var rsaPublicExponent = []byte{1, 0, 1}

var rsassaTrial = Trial{
	Name:        "rsassa-pkcs1-v1_5",
	Description: "RSASSA-PKCS1-v1_5 2048-bit key, SHA-256, sign",
	Generate: func(ctx context.Context, subtle webcrypto.SubtleCrypto, plaintext []byte) (*vectors.Vector, error) {
		return generateRSASignature(ctx, subtle, "rsassa-pkcs1-v1_5",
			&webcrypto.AlgorithmIdentifier{Name: webcrypto.AlgorithmRSASSAPKCS1v15}, plaintext)
	},
	Verify: func(ctx context.Context, subtle webcrypto.SubtleCrypto, v *vectors.Vector) error {
		return verifySignature(ctx, subtle, v,
			&webcrypto.RSAHashedImportParams{Name: webcrypto.AlgorithmRSASSAPKCS1v15, Hash: v.Params.Hash},
			&webcrypto.AlgorithmIdentifier{Name: webcrypto.AlgorithmRSASSAPKCS1v15})
	},
}

var rsaPSSTrial = Trial{
	Name:        "rsa-pss",
	Description: "RSA-PSS 2048-bit key, SHA-256, 32-byte salt, sign",
	Generate: func(ctx context.Context, subtle webcrypto.SubtleCrypto, plaintext []byte) (*vectors.Vector, error) {
		v, err := generateRSASignature(ctx, subtle, "rsa-pss",
			&webcrypto.RSAPSSParams{Name: webcrypto.AlgorithmRSAPSS, SaltLength: pssSaltLength}, plaintext)
		if err != nil {
			return nil, err
		}
		v.Params.SaltLength = pssSaltLength
		return v, nil
	},
	Verify: func(ctx context.Context, subtle webcrypto.SubtleCrypto, v *vectors.Vector) error {
		return verifySignature(ctx, subtle, v,
			&webcrypto.RSAHashedImportParams{Name: webcrypto.AlgorithmRSAPSS, Hash: v.Params.Hash},
			&webcrypto.RSAPSSParams{Name: webcrypto.AlgorithmRSAPSS, SaltLength: v.Params.SaltLength})
	},
}

var rsaOAEPTrial = Trial{
	Name:        "rsa-oaep",
	Description: "RSA-OAEP 2048-bit key, SHA-256, encrypt with the public key",
	Generate: func(ctx context.Context, subtle webcrypto.SubtleCrypto, plaintext []byte) (*vectors.Vector, error) {
		pair, v, err := generateRSAPair(ctx, subtle, "rsa-oaep", webcrypto.AlgorithmRSAOAEP, plaintext)
		if err != nil {
			return nil, err
		}
		ct, err := subtle.Encrypt(ctx, &webcrypto.RSAOAEPParams{Name: webcrypto.AlgorithmRSAOAEP}, pair.PublicKey, plaintext)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt: %w", err)
		}
		v.AddOutput(OutputBits, ct)
		return v, nil
	},
	Verify: func(ctx context.Context, subtle webcrypto.SubtleCrypto, v *vectors.Vector) error {
		ct, err := v.Output(OutputBits)
		if err != nil {
			return err
		}
		key, err := importKey(ctx, subtle, v, KeyPrivate,
			&webcrypto.RSAHashedImportParams{Name: webcrypto.AlgorithmRSAOAEP, Hash: v.Params.Hash}, webcrypto.UsageDecrypt)
		if err != nil {
			return err
		}
		pt, err := subtle.Decrypt(ctx, &webcrypto.RSAOAEPParams{Name: webcrypto.AlgorithmRSAOAEP}, key, ct)
		if err != nil {
			return operationMismatch(OutputBits, err)
		}
		return expectEqual("plaintext", v.Input, pt)
	},
}

var ecdsaTrial = Trial{
	Name:        "ecdsa-p521",
	Description: "ECDSA P-521, sign with SHA-256",
	Generate: func(ctx context.Context, subtle webcrypto.SubtleCrypto, plaintext []byte) (*vectors.Vector, error) {
		pair, err := subtle.GenerateKeyPair(ctx, &webcrypto.ECKeyGenParams{Name: webcrypto.AlgorithmECDSA, NamedCurve: webcrypto.CurveP521}, true,
			keyUsages(webcrypto.AlgorithmECDSA))
		if err != nil {
			return nil, fmt.Errorf("failed to generate ECDSA key pair: %w", err)
		}
		v := vectors.NewVector("ecdsa-p521", vectors.Params{
			Algorithm:  webcrypto.AlgorithmECDSA,
			NamedCurve: webcrypto.CurveP521,
			Hash:       webcrypto.HashSHA256,
		}, plaintext)
		if err := exportPair(ctx, subtle, v, pair); err != nil {
			return nil, err
		}
		sig, err := subtle.Sign(ctx, &webcrypto.ECDSAParams{Name: webcrypto.AlgorithmECDSA, Hash: webcrypto.HashSHA256}, pair.PrivateKey, plaintext)
		if err != nil {
			return nil, fmt.Errorf("failed to sign: %w", err)
		}
		v.AddOutput(OutputSignature, sig)
		return v, nil
	},
	Verify: func(ctx context.Context, subtle webcrypto.SubtleCrypto, v *vectors.Vector) error {
		return verifySignature(ctx, subtle, v,
			&webcrypto.ECKeyImportParams{Name: webcrypto.AlgorithmECDSA, NamedCurve: v.Params.NamedCurve},
			&webcrypto.ECDSAParams{Name: webcrypto.AlgorithmECDSA, Hash: v.Params.Hash})
	},
}

var ecdhTrial = Trial{
	Name:        "ecdh-p521",
	Description: "ECDH P-521, derive 528 bits against the own public key",
	Generate: func(ctx context.Context, subtle webcrypto.SubtleCrypto, plaintext []byte) (*vectors.Vector, error) {
		pair, err := subtle.GenerateKeyPair(ctx, &webcrypto.ECKeyGenParams{Name: webcrypto.AlgorithmECDH, NamedCurve: webcrypto.CurveP521}, true,
			keyUsages(webcrypto.AlgorithmECDH))
		if err != nil {
			return nil, fmt.Errorf("failed to generate ECDH key pair: %w", err)
		}
		v := vectors.NewVector("ecdh-p521", vectors.Params{
			Algorithm:  webcrypto.AlgorithmECDH,
			NamedCurve: webcrypto.CurveP521,
			Length:     ecdhDerivedBits,
		}, plaintext)
		if err := exportPair(ctx, subtle, v, pair); err != nil {
			return nil, err
		}
		bits, err := subtle.DeriveBits(ctx, &webcrypto.ECDHKeyDeriveParams{Name: webcrypto.AlgorithmECDH, Public: pair.PublicKey}, pair.PrivateKey, ecdhDerivedBits)
		if err != nil {
			return nil, fmt.Errorf("failed to derive bits: %w", err)
		}
		v.AddOutput(OutputBits, bits)
		return v, nil
	},
	Verify: func(ctx context.Context, subtle webcrypto.SubtleCrypto, v *vectors.Vector) error {
		bits, err := v.Output(OutputBits)
		if err != nil {
			return err
		}
		params := &webcrypto.ECKeyImportParams{Name: webcrypto.AlgorithmECDH, NamedCurve: v.Params.NamedCurve}
		privateKey, err := importKey(ctx, subtle, v, KeyPrivate, params, webcrypto.UsageDeriveBits)
		if err != nil {
			return err
		}
		publicKey, err := importKey(ctx, subtle, v, KeyPublic, params, "")
		if err != nil {
			return err
		}
		derived, err := subtle.DeriveBits(ctx, &webcrypto.ECDHKeyDeriveParams{Name: webcrypto.AlgorithmECDH, Public: publicKey}, privateKey, v.Params.Length)
		if err != nil {
			return err
		}
		return expectEqual(OutputBits, bits, derived)
	},
}

// generateRSAPair generates a 2048-bit SHA-256 key pair for name and starts
// a vector holding both exported halves.
func generateRSAPair(ctx context.Context, subtle webcrypto.SubtleCrypto, trial string, name webcrypto.AlgorithmName, plaintext []byte) (*webcrypto.CryptoKeyPair, *vectors.Vector, error) {
	pair, err := subtle.GenerateKeyPair(ctx, &webcrypto.RSAHashedKeyGenParams{
		Name:           name,
		ModulusLength:  rsaModulusLength,
		PublicExponent: rsaPublicExponent,
		Hash:           webcrypto.HashSHA256,
	}, true, keyUsages(name))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate %s key pair: %w", name, err)
	}

	v := vectors.NewVector(trial, vectors.Params{
		Algorithm:     name,
		Hash:          webcrypto.HashSHA256,
		ModulusLength: rsaModulusLength,
	}, plaintext)
	if err := exportPair(ctx, subtle, v, pair); err != nil {
		return nil, nil, err
	}
	return pair, v, nil
}

func generateRSASignature(ctx context.Context, subtle webcrypto.SubtleCrypto, trial string, params webcrypto.Algorithm, plaintext []byte) (*vectors.Vector, error) {
	pair, v, err := generateRSAPair(ctx, subtle, trial, params.AlgorithmName(), plaintext)
	if err != nil {
		return nil, err
	}
	sig, err := subtle.Sign(ctx, params, pair.PrivateKey, plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}
	v.AddOutput(OutputSignature, sig)
	return v, nil
}

// verifySignature checks the sig output of v against its public key.
func verifySignature(ctx context.Context, subtle webcrypto.SubtleCrypto, v *vectors.Vector, importParams, params webcrypto.Algorithm) error {
	sig, err := v.Output(OutputSignature)
	if err != nil {
		return err
	}
	key, err := importKey(ctx, subtle, v, KeyPublic, importParams, webcrypto.UsageVerify)
	if err != nil {
		return err
	}
	valid, err := subtle.Verify(ctx, params, key, sig, v.Input)
	if err != nil {
		return err
	}
	return expectValid(OutputSignature, valid)
}
