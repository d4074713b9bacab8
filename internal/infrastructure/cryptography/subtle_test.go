//go:build unit
// +build unit

package cryptography

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/r-lib/jose/internal/domain/webcrypto"
	"github.com/r-lib/jose/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rsaExponent = []byte{1, 0, 1}

func setupSubtleCrypto(t *testing.T) webcrypto.SubtleCrypto {
	t.Helper()
	logger := testutil.SetupTestLogger(t)
	subtle, err := NewSubtleCrypto(logger)
	require.NoError(t, err)
	return subtle
}

func usages(u ...webcrypto.KeyUsage) []webcrypto.KeyUsage {
	return u
}

func TestSubtleCryptoGenerateKey(t *testing.T) {
	subtle := setupSubtleCrypto(t)
	ctx := context.Background()

	t.Run("AES", func(t *testing.T) {
		key, err := subtle.GenerateKey(ctx, &webcrypto.AESKeyGenParams{Name: webcrypto.AlgorithmAESGCM, Length: 256}, true,
			usages(webcrypto.UsageDecrypt, webcrypto.UsageEncrypt))
		require.NoError(t, err)
		assert.Equal(t, webcrypto.KeyTypeSecret, key.Type)
		assert.Equal(t, 256, key.Algorithm.Length)
		assert.Equal(t, usages(webcrypto.UsageEncrypt, webcrypto.UsageDecrypt), key.Usages)
		assert.Len(t, key.Material(), 32)
	})

	t.Run("AESInvalidLength", func(t *testing.T) {
		_, err := subtle.GenerateKey(ctx, &webcrypto.AESKeyGenParams{Name: webcrypto.AlgorithmAESCBC, Length: 100}, true,
			usages(webcrypto.UsageEncrypt))
		assert.ErrorIs(t, err, webcrypto.ErrSyntax)
	})

	t.Run("HMACDefaultLength", func(t *testing.T) {
		key, err := subtle.GenerateKey(ctx, &webcrypto.HMACKeyGenParams{Name: webcrypto.AlgorithmHMAC, Hash: webcrypto.HashSHA256}, true,
			usages(webcrypto.UsageSign, webcrypto.UsageVerify))
		require.NoError(t, err)
		assert.Equal(t, 512, key.Algorithm.Length)
		assert.Len(t, key.Material(), 64)

		key, err = subtle.GenerateKey(ctx, &webcrypto.HMACKeyGenParams{Name: webcrypto.AlgorithmHMAC, Hash: webcrypto.HashSHA512}, true,
			usages(webcrypto.UsageSign))
		require.NoError(t, err)
		assert.Equal(t, 1024, key.Algorithm.Length)
	})

	t.Run("EmptyUsages", func(t *testing.T) {
		_, err := subtle.GenerateKey(ctx, &webcrypto.AESKeyGenParams{Name: webcrypto.AlgorithmAESCTR, Length: 128}, true, nil)
		assert.ErrorIs(t, err, webcrypto.ErrSyntax)
	})

	t.Run("ForeignUsage", func(t *testing.T) {
		_, err := subtle.GenerateKey(ctx, &webcrypto.AESKeyGenParams{Name: webcrypto.AlgorithmAESCTR, Length: 128}, true,
			usages(webcrypto.UsageSign))
		assert.ErrorIs(t, err, webcrypto.ErrSyntax)
	})

	t.Run("PairAlgorithm", func(t *testing.T) {
		_, err := subtle.GenerateKey(ctx, &webcrypto.ECKeyGenParams{Name: webcrypto.AlgorithmECDSA, NamedCurve: webcrypto.CurveP256}, true,
			usages(webcrypto.UsageSign))
		assert.ErrorIs(t, err, webcrypto.ErrNotSupported)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := subtle.GenerateKey(canceled, &webcrypto.AESKeyGenParams{Name: webcrypto.AlgorithmAESCTR, Length: 128}, true,
			usages(webcrypto.UsageEncrypt))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSubtleCryptoGenerateKeyPair(t *testing.T) {
	subtle := setupSubtleCrypto(t)
	ctx := context.Background()

	t.Run("RSASplitsUsages", func(t *testing.T) {
		pair, err := subtle.GenerateKeyPair(ctx, &webcrypto.RSAHashedKeyGenParams{
			Name:           webcrypto.AlgorithmRSAOAEP,
			ModulusLength:  1024,
			PublicExponent: rsaExponent,
			Hash:           webcrypto.HashSHA256,
		}, false, usages(webcrypto.UsageEncrypt, webcrypto.UsageDecrypt))
		require.NoError(t, err)

		assert.Equal(t, webcrypto.KeyTypePrivate, pair.PrivateKey.Type)
		assert.False(t, pair.PrivateKey.Extractable)
		assert.Equal(t, usages(webcrypto.UsageDecrypt), pair.PrivateKey.Usages)

		assert.Equal(t, webcrypto.KeyTypePublic, pair.PublicKey.Type)
		assert.True(t, pair.PublicKey.Extractable)
		assert.Equal(t, usages(webcrypto.UsageEncrypt), pair.PublicKey.Usages)
		assert.Equal(t, rsaExponent, pair.PublicKey.Algorithm.PublicExponent)
		assert.Equal(t, 1024, pair.PublicKey.Algorithm.ModulusLength)
	})

	t.Run("RSAUnsupportedExponent", func(t *testing.T) {
		_, err := subtle.GenerateKeyPair(ctx, &webcrypto.RSAHashedKeyGenParams{
			Name:           webcrypto.AlgorithmRSASSAPKCS1v15,
			ModulusLength:  1024,
			PublicExponent: []byte{3},
			Hash:           webcrypto.HashSHA256,
		}, true, usages(webcrypto.UsageSign))
		assert.ErrorIs(t, err, webcrypto.ErrNotSupported)
	})

	t.Run("RSAModulusNotMultipleOf8", func(t *testing.T) {
		_, err := subtle.GenerateKeyPair(ctx, &webcrypto.RSAHashedKeyGenParams{
			Name:           webcrypto.AlgorithmRSASSAPKCS1v15,
			ModulusLength:  1025,
			PublicExponent: rsaExponent,
			Hash:           webcrypto.HashSHA256,
		}, true, usages(webcrypto.UsageSign))
		assert.ErrorIs(t, err, webcrypto.ErrSyntax)
	})

	t.Run("ECDHPublicHasNoUsages", func(t *testing.T) {
		pair, err := subtle.GenerateKeyPair(ctx, &webcrypto.ECKeyGenParams{Name: webcrypto.AlgorithmECDH, NamedCurve: webcrypto.CurveP521}, true,
			usages(webcrypto.UsageDeriveKey, webcrypto.UsageDeriveBits))
		require.NoError(t, err)
		assert.Equal(t, usages(webcrypto.UsageDeriveKey, webcrypto.UsageDeriveBits), pair.PrivateKey.Usages)
		assert.Empty(t, pair.PublicKey.Usages)
		assert.NotNil(t, pair.PublicKey.Usages)
	})

	t.Run("PublicOnlyUsages", func(t *testing.T) {
		_, err := subtle.GenerateKeyPair(ctx, &webcrypto.ECKeyGenParams{Name: webcrypto.AlgorithmECDSA, NamedCurve: webcrypto.CurveP256}, true,
			usages(webcrypto.UsageVerify))
		assert.ErrorIs(t, err, webcrypto.ErrSyntax)
	})
}

func TestSubtleCryptoOperations(t *testing.T) {
	subtle := setupSubtleCrypto(t)
	ctx := context.Background()
	data := []byte("testje")

	t.Run("AESCTRRoundTrip", func(t *testing.T) {
		key, err := subtle.GenerateKey(ctx, &webcrypto.AESKeyGenParams{Name: webcrypto.AlgorithmAESCTR, Length: 256}, true,
			usages(webcrypto.UsageEncrypt, webcrypto.UsageDecrypt))
		require.NoError(t, err)

		params := &webcrypto.AESCtrParams{Name: webcrypto.AlgorithmAESCTR, Counter: make([]byte, 16), Length: 64}
		ct, err := subtle.Encrypt(ctx, params, key, data)
		require.NoError(t, err)
		pt, err := subtle.Decrypt(ctx, params, key, ct)
		require.NoError(t, err)
		assert.Equal(t, data, pt)
	})

	t.Run("MissingUsage", func(t *testing.T) {
		key, err := subtle.GenerateKey(ctx, &webcrypto.AESKeyGenParams{Name: webcrypto.AlgorithmAESCBC, Length: 128}, true,
			usages(webcrypto.UsageEncrypt))
		require.NoError(t, err)

		_, err = subtle.Decrypt(ctx, &webcrypto.AESCbcParams{Name: webcrypto.AlgorithmAESCBC, IV: make([]byte, 16)}, key, make([]byte, 16))
		assert.ErrorIs(t, err, webcrypto.ErrInvalidAccess)
	})

	t.Run("AlgorithmMismatch", func(t *testing.T) {
		key, err := subtle.GenerateKey(ctx, &webcrypto.AESKeyGenParams{Name: webcrypto.AlgorithmAESCBC, Length: 128}, true,
			usages(webcrypto.UsageEncrypt))
		require.NoError(t, err)

		_, err = subtle.Encrypt(ctx, &webcrypto.AESGcmParams{Name: webcrypto.AlgorithmAESGCM, IV: make([]byte, 12)}, key, data)
		assert.ErrorIs(t, err, webcrypto.ErrInvalidAccess)
	})

	t.Run("HMACSignVerify", func(t *testing.T) {
		key, err := subtle.GenerateKey(ctx, &webcrypto.HMACKeyGenParams{Name: webcrypto.AlgorithmHMAC, Hash: webcrypto.HashSHA256}, true,
			usages(webcrypto.UsageSign, webcrypto.UsageVerify))
		require.NoError(t, err)

		alg := &webcrypto.AlgorithmIdentifier{Name: webcrypto.AlgorithmHMAC}
		mac, err := subtle.Sign(ctx, alg, key, data)
		require.NoError(t, err)
		assert.Len(t, mac, 32)

		valid, err := subtle.Verify(ctx, alg, key, mac, data)
		require.NoError(t, err)
		assert.True(t, valid)
	})

	t.Run("ECDSASignVerify", func(t *testing.T) {
		pair, err := subtle.GenerateKeyPair(ctx, &webcrypto.ECKeyGenParams{Name: webcrypto.AlgorithmECDSA, NamedCurve: webcrypto.CurveP521}, true,
			usages(webcrypto.UsageSign, webcrypto.UsageVerify))
		require.NoError(t, err)

		params := &webcrypto.ECDSAParams{Name: webcrypto.AlgorithmECDSA, Hash: webcrypto.HashSHA256}
		sig, err := subtle.Sign(ctx, params, pair.PrivateKey, data)
		require.NoError(t, err)
		assert.Len(t, sig, 132)

		valid, err := subtle.Verify(ctx, params, pair.PublicKey, sig, data)
		require.NoError(t, err)
		assert.True(t, valid)

		_, err = subtle.Sign(ctx, params, pair.PublicKey, data)
		assert.ErrorIs(t, err, webcrypto.ErrInvalidAccess)
	})

	t.Run("ECDSAWrongParamsType", func(t *testing.T) {
		pair, err := subtle.GenerateKeyPair(ctx, &webcrypto.ECKeyGenParams{Name: webcrypto.AlgorithmECDSA, NamedCurve: webcrypto.CurveP256}, true,
			usages(webcrypto.UsageSign))
		require.NoError(t, err)

		_, err = subtle.Sign(ctx, &webcrypto.AlgorithmIdentifier{Name: webcrypto.AlgorithmECDSA}, pair.PrivateKey, data)
		assert.ErrorIs(t, err, webcrypto.ErrSyntax)
	})

	t.Run("ECDHDeriveBits", func(t *testing.T) {
		pair, err := subtle.GenerateKeyPair(ctx, &webcrypto.ECKeyGenParams{Name: webcrypto.AlgorithmECDH, NamedCurve: webcrypto.CurveP521}, true,
			usages(webcrypto.UsageDeriveKey, webcrypto.UsageDeriveBits))
		require.NoError(t, err)

		bits, err := subtle.DeriveBits(ctx, &webcrypto.ECDHKeyDeriveParams{Name: webcrypto.AlgorithmECDH, Public: pair.PublicKey}, pair.PrivateKey, 528)
		require.NoError(t, err)
		assert.Len(t, bits, 66)
	})

	t.Run("ECDHCurveMismatch", func(t *testing.T) {
		pair, err := subtle.GenerateKeyPair(ctx, &webcrypto.ECKeyGenParams{Name: webcrypto.AlgorithmECDH, NamedCurve: webcrypto.CurveP521}, true,
			usages(webcrypto.UsageDeriveBits))
		require.NoError(t, err)
		other, err := subtle.GenerateKeyPair(ctx, &webcrypto.ECKeyGenParams{Name: webcrypto.AlgorithmECDH, NamedCurve: webcrypto.CurveP256}, true,
			usages(webcrypto.UsageDeriveBits))
		require.NoError(t, err)

		_, err = subtle.DeriveBits(ctx, &webcrypto.ECDHKeyDeriveParams{Name: webcrypto.AlgorithmECDH, Public: other.PublicKey}, pair.PrivateKey, 0)
		assert.ErrorIs(t, err, webcrypto.ErrInvalidAccess)

		_, err = subtle.DeriveBits(ctx, &webcrypto.ECDHKeyDeriveParams{Name: webcrypto.AlgorithmECDH, Public: pair.PrivateKey}, pair.PrivateKey, 0)
		assert.ErrorIs(t, err, webcrypto.ErrInvalidAccess)
	})

	t.Run("PBKDF2DeriveBits", func(t *testing.T) {
		key, err := subtle.ImportKey(ctx, webcrypto.KeyFormatRaw, []byte("password"),
			&webcrypto.AlgorithmIdentifier{Name: webcrypto.AlgorithmPBKDF2}, false, usages(webcrypto.UsageDeriveBits))
		require.NoError(t, err)

		bits, err := subtle.DeriveBits(ctx, &webcrypto.PBKDF2Params{
			Name:       webcrypto.AlgorithmPBKDF2,
			Hash:       webcrypto.HashSHA256,
			Salt:       []byte("salt"),
			Iterations: 1,
		}, key, 256)
		require.NoError(t, err)
		assert.Equal(t, "120fb6cffcf8b32c43e7225256c4f837a86548c92ccc35480805987cb70be17b", hex.EncodeToString(bits))
	})

	t.Run("Digest", func(t *testing.T) {
		sum, err := subtle.Digest(ctx, webcrypto.HashSHA256, []byte("abc"))
		require.NoError(t, err)
		assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", hex.EncodeToString(sum))

		_, err = subtle.Digest(ctx, webcrypto.HashName("MD5"), []byte("abc"))
		assert.ErrorIs(t, err, webcrypto.ErrNotSupported)
	})
}

func TestSubtleCryptoParamsTypeMismatch(t *testing.T) {
	subtle := setupSubtleCrypto(t)
	ctx := context.Background()
	data := []byte("hello!")

	gcmKey, err := subtle.GenerateKey(ctx, &webcrypto.AESKeyGenParams{Name: webcrypto.AlgorithmAESGCM, Length: 128}, true,
		usages(webcrypto.UsageEncrypt, webcrypto.UsageDecrypt))
	require.NoError(t, err)
	hmacKey, err := subtle.GenerateKey(ctx, &webcrypto.HMACKeyGenParams{Name: webcrypto.AlgorithmHMAC, Hash: webcrypto.HashSHA256}, true,
		usages(webcrypto.UsageSign, webcrypto.UsageVerify))
	require.NoError(t, err)
	pbkdf2Key, err := subtle.ImportKey(ctx, webcrypto.KeyFormatRaw, []byte("password"),
		&webcrypto.AlgorithmIdentifier{Name: webcrypto.AlgorithmPBKDF2}, false, usages(webcrypto.UsageDeriveBits))
	require.NoError(t, err)

	ctrNamedGCM := &webcrypto.AESCtrParams{Name: webcrypto.AlgorithmAESGCM, Counter: make([]byte, 16), Length: 64}
	pssNamedHMAC := &webcrypto.RSAPSSParams{Name: webcrypto.AlgorithmHMAC, SaltLength: 32}

	t.Run("Encrypt", func(t *testing.T) {
		out, err := subtle.Encrypt(ctx, ctrNamedGCM, gcmKey, data)
		assert.ErrorIs(t, err, webcrypto.ErrSyntax)
		assert.Nil(t, out)
	})

	t.Run("Decrypt", func(t *testing.T) {
		_, err := subtle.Decrypt(ctx, &webcrypto.AESCbcParams{Name: webcrypto.AlgorithmAESGCM, IV: make([]byte, 16)}, gcmKey, make([]byte, 32))
		assert.ErrorIs(t, err, webcrypto.ErrSyntax)
	})

	t.Run("Sign", func(t *testing.T) {
		_, err := subtle.Sign(ctx, pssNamedHMAC, hmacKey, data)
		assert.ErrorIs(t, err, webcrypto.ErrSyntax)
	})

	t.Run("Verify", func(t *testing.T) {
		_, err := subtle.Verify(ctx, &webcrypto.ECDSAParams{Name: webcrypto.AlgorithmHMAC, Hash: webcrypto.HashSHA256}, hmacKey, make([]byte, 32), data)
		assert.ErrorIs(t, err, webcrypto.ErrSyntax)
	})

	t.Run("DeriveBits", func(t *testing.T) {
		_, err := subtle.DeriveBits(ctx, &webcrypto.HKDFParams{Name: webcrypto.AlgorithmPBKDF2, Hash: webcrypto.HashSHA256}, pbkdf2Key, 256)
		assert.ErrorIs(t, err, webcrypto.ErrSyntax)
	})
}
