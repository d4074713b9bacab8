package app

import (
	"context"
	"fmt"

	"github.com/r-lib/jose/internal/domain/vectors"
	"github.com/r-lib/jose/internal/domain/webcrypto"
)

const (
	aesKeyLength     = 256
	aesCounterLength = 64
	aesGCMTagLength  = 128
)

var aesCTRTrial = Trial{
	Name:        "aes-ctr",
	Description: "AES-CTR 256-bit key, random 16-byte counter, 64-bit counter length",
	Generate: func(ctx context.Context, subtle webcrypto.SubtleCrypto, plaintext []byte) (*vectors.Vector, error) {
		counter, err := randomBytes(16)
		if err != nil {
			return nil, err
		}
		params := &webcrypto.AESCtrParams{Name: webcrypto.AlgorithmAESCTR, Counter: counter, Length: aesCounterLength}
		return generateAES(ctx, subtle, "aes-ctr", webcrypto.AlgorithmAESCTR, params, OutputCounter, counter, plaintext)
	},
	Verify: func(ctx context.Context, subtle webcrypto.SubtleCrypto, v *vectors.Vector) error {
		counter, err := v.Output(OutputCounter)
		if err != nil {
			return err
		}
		params := &webcrypto.AESCtrParams{Name: webcrypto.AlgorithmAESCTR, Counter: counter, Length: aesCounterLength}
		return verifyAES(ctx, subtle, v, params)
	},
}

var aesCBCTrial = Trial{
	Name:        "aes-cbc",
	Description: "AES-CBC 256-bit key, random 16-byte IV, PKCS#7 padding",
	Generate: func(ctx context.Context, subtle webcrypto.SubtleCrypto, plaintext []byte) (*vectors.Vector, error) {
		iv, err := randomBytes(16)
		if err != nil {
			return nil, err
		}
		params := &webcrypto.AESCbcParams{Name: webcrypto.AlgorithmAESCBC, IV: iv}
		return generateAES(ctx, subtle, "aes-cbc", webcrypto.AlgorithmAESCBC, params, OutputIV, iv, plaintext)
	},
	Verify: func(ctx context.Context, subtle webcrypto.SubtleCrypto, v *vectors.Vector) error {
		iv, err := v.Output(OutputIV)
		if err != nil {
			return err
		}
		return verifyAES(ctx, subtle, v, &webcrypto.AESCbcParams{Name: webcrypto.AlgorithmAESCBC, IV: iv})
	},
}

var aesGCMTrial = Trial{
	Name:        "aes-gcm",
	Description: "AES-GCM 256-bit key, random 12-byte IV, 128-bit tag",
	Generate: func(ctx context.Context, subtle webcrypto.SubtleCrypto, plaintext []byte) (*vectors.Vector, error) {
		iv, err := randomBytes(12)
		if err != nil {
			return nil, err
		}
		params := &webcrypto.AESGcmParams{Name: webcrypto.AlgorithmAESGCM, IV: iv, TagLength: aesGCMTagLength}
		return generateAES(ctx, subtle, "aes-gcm", webcrypto.AlgorithmAESGCM, params, OutputIV, iv, plaintext)
	},
	Verify: func(ctx context.Context, subtle webcrypto.SubtleCrypto, v *vectors.Vector) error {
		iv, err := v.Output(OutputIV)
		if err != nil {
			return err
		}
		return verifyAES(ctx, subtle, v, &webcrypto.AESGcmParams{Name: webcrypto.AlgorithmAESGCM, IV: iv, TagLength: aesGCMTagLength})
	},
}

var hmacTrial = Trial{
	Name:        "hmac-sha256",
	Description: "HMAC SHA-256 with a block-size key, sign",
	Generate: func(ctx context.Context, subtle webcrypto.SubtleCrypto, plaintext []byte) (*vectors.Vector, error) {
		key, err := subtle.GenerateKey(ctx, &webcrypto.HMACKeyGenParams{Name: webcrypto.AlgorithmHMAC, Hash: webcrypto.HashSHA256}, true,
			keyUsages(webcrypto.AlgorithmHMAC))
		if err != nil {
			return nil, fmt.Errorf("failed to generate HMAC key: %w", err)
		}
		jwk, err := subtle.ExportJWK(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to export HMAC key: %w", err)
		}
		mac, err := subtle.Sign(ctx, &webcrypto.AlgorithmIdentifier{Name: webcrypto.AlgorithmHMAC}, key, plaintext)
		if err != nil {
			return nil, fmt.Errorf("failed to sign: %w", err)
		}

		v := vectors.NewVector("hmac-sha256", vectors.Params{
			Algorithm: webcrypto.AlgorithmHMAC,
			Hash:      webcrypto.HashSHA256,
			Length:    key.Algorithm.Length,
		}, plaintext)
		v.AddKey(KeySecret, jwk)
		v.AddOutput(OutputBits, mac)
		return v, nil
	},
	Verify: func(ctx context.Context, subtle webcrypto.SubtleCrypto, v *vectors.Vector) error {
		mac, err := v.Output(OutputBits)
		if err != nil {
			return err
		}
		key, err := importKey(ctx, subtle, v, KeySecret,
			&webcrypto.HMACImportParams{Name: webcrypto.AlgorithmHMAC, Hash: v.Params.Hash}, webcrypto.UsageVerify)
		if err != nil {
			return err
		}
		valid, err := subtle.Verify(ctx, &webcrypto.AlgorithmIdentifier{Name: webcrypto.AlgorithmHMAC}, key, mac, v.Input)
		if err != nil {
			return err
		}
		return expectValid(OutputBits, valid)
	},
}

// generateAES runs one AES encryption under params; nonceLabel names the
// counter or IV output.
func generateAES(ctx context.Context, subtle webcrypto.SubtleCrypto, trial string, name webcrypto.AlgorithmName, params webcrypto.Algorithm, nonceLabel string, nonce, plaintext []byte) (*vectors.Vector, error) {
	key, err := subtle.GenerateKey(ctx, &webcrypto.AESKeyGenParams{Name: name, Length: aesKeyLength}, true, keyUsages(name))
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s key: %w", name, err)
	}
	jwk, err := subtle.ExportJWK(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to export %s key: %w", name, err)
	}
	ct, err := subtle.Encrypt(ctx, params, key, plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt: %w", err)
	}

	v := vectors.NewVector(trial, vectors.Params{Algorithm: name, Length: aesKeyLength}, plaintext)
	v.AddKey(KeySecret, jwk)
	v.AddOutput(nonceLabel, nonce)
	v.AddOutput(OutputCT, ct)
	return v, nil
}

func verifyAES(ctx context.Context, subtle webcrypto.SubtleCrypto, v *vectors.Vector, params webcrypto.Algorithm) error {
	ct, err := v.Output(OutputCT)
	if err != nil {
		return err
	}
	key, err := importKey(ctx, subtle, v, KeySecret, &webcrypto.AlgorithmIdentifier{Name: params.AlgorithmName()}, webcrypto.UsageDecrypt)
	if err != nil {
		return err
	}
	pt, err := subtle.Decrypt(ctx, params, key, ct)
	if err != nil {
		return operationMismatch(OutputCT, err)
	}
	return expectEqual("plaintext", v.Input, pt)
}
