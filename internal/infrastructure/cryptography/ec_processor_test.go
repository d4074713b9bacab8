//go:build unit
// +build unit

package cryptography

import (
	"crypto"
	"crypto/ecdh"
	"crypto/elliptic"
	"testing"

	"github.com/r-lib/jose/internal/domain/cryptoalg"
	"github.com/r-lib/jose/internal/domain/webcrypto"
	"github.com/r-lib/jose/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupECProcessor(t *testing.T) cryptoalg.ECProcessor {
	t.Helper()
	logger := testutil.SetupTestLogger(t)
	processor, err := NewECProcessor(logger)
	require.NoError(t, err)
	return processor
}

func TestECProcessor(t *testing.T) {
	processor := setupECProcessor(t)

	t.Run("SignAndVerifyP521", func(t *testing.T) {
		privateKey, publicKey, err := processor.GenerateECDSAKeys(elliptic.P521())
		require.NoError(t, err)

		data := []byte("testje")
		signature, err := processor.Sign(crypto.SHA256, privateKey, data)
		require.NoError(t, err)
		assert.Len(t, signature, 132)

		valid, err := processor.Verify(crypto.SHA256, publicKey, signature, data)
		require.NoError(t, err)
		assert.True(t, valid)

		valid, err = processor.Verify(crypto.SHA256, publicKey, signature, []byte("tampered"))
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("VerifyWrongLength", func(t *testing.T) {
		_, publicKey, err := processor.GenerateECDSAKeys(elliptic.P256())
		require.NoError(t, err)

		valid, err := processor.Verify(crypto.SHA256, publicKey, make([]byte, 63), []byte("testje"))
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("SignNilKey", func(t *testing.T) {
		_, err := processor.Sign(crypto.SHA256, nil, []byte("testje"))
		assert.Error(t, err)
	})

	t.Run("DeriveBitsAgreement", func(t *testing.T) {
		alicePriv, alicePub, err := processor.GenerateECDHKeys(ecdh.P521())
		require.NoError(t, err)
		bobPriv, bobPub, err := processor.GenerateECDHKeys(ecdh.P521())
		require.NoError(t, err)

		ab, err := processor.DeriveBits(alicePriv, bobPub, 528)
		require.NoError(t, err)
		ba, err := processor.DeriveBits(bobPriv, alicePub, 528)
		require.NoError(t, err)

		assert.Len(t, ab, 66)
		assert.Equal(t, ab, ba)
	})

	t.Run("DeriveBitsLengths", func(t *testing.T) {
		privateKey, publicKey, err := processor.GenerateECDHKeys(ecdh.P256())
		require.NoError(t, err)

		full, err := processor.DeriveBits(privateKey, publicKey, 0)
		require.NoError(t, err)
		assert.Len(t, full, 32)

		_, err = processor.DeriveBits(privateKey, publicKey, 264)
		assert.ErrorIs(t, err, webcrypto.ErrOperation)
	})
}

func TestTruncateBits(t *testing.T) {
	secret := func() []byte { return []byte{0xff, 0xff, 0xff} }

	out, err := truncateBits(secret(), 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xff, 0xff}, out)

	out, err = truncateBits(secret(), 16)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xff}, out)

	out, err = truncateBits(secret(), 12)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xf0}, out)

	_, err = truncateBits(secret(), 25)
	assert.ErrorIs(t, err, webcrypto.ErrOperation)
}
