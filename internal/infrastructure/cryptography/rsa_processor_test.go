//go:build unit
// +build unit

package cryptography

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"testing"

	"github.com/r-lib/jose/internal/domain/cryptoalg"
	"github.com/r-lib/jose/internal/domain/webcrypto"
	"github.com/r-lib/jose/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	TestKeySize2048 = 2048
	TestExponent    = 65537
)

func setupRSAProcessor(t *testing.T) cryptoalg.RSAProcessor {
	t.Helper()
	logger := testutil.SetupTestLogger(t)
	processor, err := NewRSAProcessor(logger)
	require.NoError(t, err)
	return processor
}

func TestRSAProcessor(t *testing.T) {
	processor := setupRSAProcessor(t)

	privateKey, publicKey, err := processor.GenerateKeys(TestKeySize2048, TestExponent)
	require.NoError(t, err)

	t.Run("GenerateKeys", func(t *testing.T) {
		assert.Equal(t, TestKeySize2048, privateKey.N.BitLen())
		assert.Equal(t, TestExponent, publicKey.E)
	})

	t.Run("UnsupportedExponent", func(t *testing.T) {
		_, _, err := processor.GenerateKeys(TestKeySize2048, 3)
		assert.ErrorIs(t, err, webcrypto.ErrNotSupported)
	})

	t.Run("PKCS1v15SignAndVerify", func(t *testing.T) {
		data := []byte("testje")
		signature, err := processor.SignPKCS1v15(crypto.SHA256, privateKey, data)
		require.NoError(t, err)
		assert.Len(t, signature, 256)

		valid, err := processor.VerifyPKCS1v15(crypto.SHA256, publicKey, signature, data)
		require.NoError(t, err)
		assert.True(t, valid)

		valid, err = processor.VerifyPKCS1v15(crypto.SHA256, publicKey, signature, []byte("tampered"))
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("PSSSignAndVerify", func(t *testing.T) {
		data := []byte("testje")
		signature, err := processor.SignPSS(crypto.SHA256, 32, privateKey, data)
		require.NoError(t, err)

		valid, err := processor.VerifyPSS(crypto.SHA256, 32, publicKey, signature, data)
		require.NoError(t, err)
		assert.True(t, valid)

		valid, err = processor.VerifyPSS(crypto.SHA256, 20, publicKey, signature, data)
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("PSSZeroSalt", func(t *testing.T) {
		data := []byte("testje")
		signature, err := processor.SignPSS(crypto.SHA256, 0, privateKey, data)
		require.NoError(t, err)
		assert.Len(t, signature, 256)

		again, err := processor.SignPSS(crypto.SHA256, 0, privateKey, data)
		require.NoError(t, err)
		assert.Equal(t, signature, again)

		valid, err := processor.VerifyPSS(crypto.SHA256, 0, publicKey, signature, data)
		require.NoError(t, err)
		assert.True(t, valid)

		digest := sha256.Sum256(data)
		require.NoError(t, rsa.VerifyPSS(publicKey, crypto.SHA256, digest[:], signature, &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthAuto}))

		valid, err = processor.VerifyPSS(crypto.SHA256, 0, publicKey, signature, []byte("tampered"))
		require.NoError(t, err)
		assert.False(t, valid)

		salted, err := processor.SignPSS(crypto.SHA256, 32, privateKey, data)
		require.NoError(t, err)
		valid, err = processor.VerifyPSS(crypto.SHA256, 0, publicKey, salted, data)
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("OAEPEncryptDecrypt", func(t *testing.T) {
		label := []byte("label")
		cipherText, err := processor.EncryptOAEP(crypto.SHA256, publicKey, label, []byte("testje"))
		require.NoError(t, err)
		assert.Len(t, cipherText, 256)

		plainText, err := processor.DecryptOAEP(crypto.SHA256, privateKey, label, cipherText)
		require.NoError(t, err)
		assert.Equal(t, []byte("testje"), plainText)

		_, err = processor.DecryptOAEP(crypto.SHA256, privateKey, []byte("other"), cipherText)
		assert.ErrorIs(t, err, webcrypto.ErrOperation)
	})

	t.Run("NilKeys", func(t *testing.T) {
		_, err := processor.SignPKCS1v15(crypto.SHA256, nil, []byte("testje"))
		assert.Error(t, err)

		_, err = processor.EncryptOAEP(crypto.SHA256, nil, nil, []byte("testje"))
		assert.Error(t, err)
	})
}
