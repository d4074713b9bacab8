//go:build unit
// +build unit

package cryptography

import (
	"encoding/hex"
	"testing"

	"github.com/r-lib/jose/internal/domain/cryptoalg"
	"github.com/r-lib/jose/internal/domain/webcrypto"
	"github.com/r-lib/jose/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAESProcessor(t *testing.T) cryptoalg.AESProcessor {
	t.Helper()
	logger := testutil.SetupTestLogger(t)
	processor, err := NewAESProcessor(logger)
	require.NoError(t, err)
	return processor
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestAESProcessor(t *testing.T) {
	processor := setupAESProcessor(t)

	t.Run("GenerateKey", func(t *testing.T) {
		for _, bits := range []int{128, 192, 256} {
			key, err := processor.GenerateKey(bits)
			require.NoError(t, err)
			assert.Len(t, key, bits/8)
		}

		_, err := processor.GenerateKey(64)
		assert.ErrorIs(t, err, webcrypto.ErrOperation)
	})

	t.Run("CTRKnownAnswer", func(t *testing.T) {
		key := mustHex(t, "2b7e151628aed2a6abf7158809cf4f3c")
		counter := mustHex(t, "f0f1f2f3f4f5f6f7f8f9fafbfcfdfeff")
		plainText := mustHex(t, "6bc1bee22e409f96e93d7e117393172a")

		cipherText, err := processor.EncryptCTR(key, counter, 64, plainText)
		require.NoError(t, err)
		assert.Equal(t, "874d6191b620e3261bef6864990db6ce", hex.EncodeToString(cipherText))

		decrypted, err := processor.DecryptCTR(key, counter, 64, cipherText)
		require.NoError(t, err)
		assert.Equal(t, plainText, decrypted)
	})

	t.Run("CTRPartialBlock", func(t *testing.T) {
		key, err := processor.GenerateKey(256)
		require.NoError(t, err)
		counter := make([]byte, 16)

		cipherText, err := processor.EncryptCTR(key, counter, 64, []byte("testje"))
		require.NoError(t, err)
		assert.Len(t, cipherText, 6)
	})

	t.Run("CTRCounterExhausted", func(t *testing.T) {
		key, err := processor.GenerateKey(128)
		require.NoError(t, err)
		counter := make([]byte, 16)

		_, err = processor.EncryptCTR(key, counter, 1, make([]byte, 32))
		assert.NoError(t, err)

		_, err = processor.EncryptCTR(key, counter, 1, make([]byte, 33))
		assert.ErrorIs(t, err, webcrypto.ErrOperation)
	})

	t.Run("CTRInvalidCounter", func(t *testing.T) {
		key, err := processor.GenerateKey(128)
		require.NoError(t, err)

		_, err = processor.EncryptCTR(key, make([]byte, 8), 64, []byte("data"))
		assert.ErrorIs(t, err, webcrypto.ErrOperation)

		_, err = processor.EncryptCTR(key, make([]byte, 16), 0, []byte("data"))
		assert.ErrorIs(t, err, webcrypto.ErrOperation)
	})

	t.Run("CBCKnownAnswer", func(t *testing.T) {
		key := mustHex(t, "2b7e151628aed2a6abf7158809cf4f3c")
		iv := mustHex(t, "000102030405060708090a0b0c0d0e0f")
		plainText := mustHex(t, "6bc1bee22e409f96e93d7e117393172aae2d8a571e03ac9c9eb76fac45af8e51")

		cipherText, err := processor.EncryptCBC(key, iv, plainText)
		require.NoError(t, err)
		require.Len(t, cipherText, 48)
		assert.Equal(t, "7649abac8119b246cee98e9b12e9197d5086cb9b507219ee95db113a917678b2", hex.EncodeToString(cipherText[:32]))

		decrypted, err := processor.DecryptCBC(key, iv, cipherText)
		require.NoError(t, err)
		assert.Equal(t, plainText, decrypted)
	})

	t.Run("CBCEncryptDecrypt", func(t *testing.T) {
		key, err := processor.GenerateKey(256)
		require.NoError(t, err)
		iv := make([]byte, 16)

		plainText := []byte("sixteen byte msg")
		cipherText, err := processor.EncryptCBC(key, iv, plainText)
		require.NoError(t, err)
		assert.Len(t, cipherText, 32)

		decrypted, err := processor.DecryptCBC(key, iv, cipherText)
		require.NoError(t, err)
		assert.Equal(t, plainText, decrypted)
	})

	t.Run("CBCBadPadding", func(t *testing.T) {
		key, err := processor.GenerateKey(128)
		require.NoError(t, err)
		iv := make([]byte, 16)

		_, err = processor.DecryptCBC(key, iv, make([]byte, 15))
		assert.ErrorIs(t, err, webcrypto.ErrOperation)
	})

	t.Run("GCMEncryptDecrypt", func(t *testing.T) {
		key, err := processor.GenerateKey(256)
		require.NoError(t, err)
		iv := make([]byte, 12)
		aad := []byte("header")

		cipherText, err := processor.EncryptGCM(key, iv, aad, 128, []byte("testje"))
		require.NoError(t, err)
		assert.Len(t, cipherText, 6+16)

		decrypted, err := processor.DecryptGCM(key, iv, aad, 128, cipherText)
		require.NoError(t, err)
		assert.Equal(t, []byte("testje"), decrypted)

		_, err = processor.DecryptGCM(key, iv, []byte("other"), 128, cipherText)
		assert.ErrorIs(t, err, webcrypto.ErrOperation)
	})

	t.Run("GCMKnownAnswer", func(t *testing.T) {
		key := make([]byte, 16)
		iv := make([]byte, 12)
		plainText := make([]byte, 16)

		cipherText, err := processor.EncryptGCM(key, iv, nil, 128, plainText)
		require.NoError(t, err)
		assert.Equal(t, "0388dace60b6a392f328c2b971b2fe78ab6e47d42cec13bdf53a67b21257bddf", hex.EncodeToString(cipherText))

		truncated, err := processor.EncryptGCM(key, iv, nil, 64, plainText)
		require.NoError(t, err)
		assert.Equal(t, "0388dace60b6a392f328c2b971b2fe78ab6e47d42cec13bd", hex.EncodeToString(truncated))

		decrypted, err := processor.DecryptGCM(key, iv, nil, 64, truncated)
		require.NoError(t, err)
		assert.Equal(t, plainText, decrypted)
	})

	t.Run("GCMShortTag", func(t *testing.T) {
		key, err := processor.GenerateKey(128)
		require.NoError(t, err)
		aad := []byte("header")

		tests := []struct {
			name      string
			ivSize    int
			tagLength int
		}{
			{"Tag32", 12, 32},
			{"Tag64", 12, 64},
			{"Tag96", 12, 96},
			{"LongNonceTag96", 16, 96},
			{"LongNonceTag120", 16, 120},
			{"ShortNonceTag32", 8, 32},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				iv := make([]byte, tt.ivSize)

				cipherText, err := processor.EncryptGCM(key, iv, aad, tt.tagLength, []byte("testje"))
				require.NoError(t, err)
				assert.Len(t, cipherText, 6+tt.tagLength/8)

				decrypted, err := processor.DecryptGCM(key, iv, aad, tt.tagLength, cipherText)
				require.NoError(t, err)
				assert.Equal(t, []byte("testje"), decrypted)

				tampered := append([]byte(nil), cipherText...)
				tampered[len(tampered)-1] ^= 0x01
				_, err = processor.DecryptGCM(key, iv, aad, tt.tagLength, tampered)
				assert.ErrorIs(t, err, webcrypto.ErrOperation)

				flipped := append([]byte(nil), cipherText...)
				flipped[0] ^= 0x01
				_, err = processor.DecryptGCM(key, iv, aad, tt.tagLength, flipped)
				assert.ErrorIs(t, err, webcrypto.ErrOperation)
			})
		}
	})

	t.Run("GCMInvalidTagLength", func(t *testing.T) {
		key, err := processor.GenerateKey(128)
		require.NoError(t, err)

		_, err = processor.EncryptGCM(key, make([]byte, 12), nil, 40, []byte("testje"))
		assert.ErrorIs(t, err, webcrypto.ErrOperation)

		_, err = processor.DecryptGCM(key, make([]byte, 12), nil, 128, make([]byte, 15))
		assert.ErrorIs(t, err, webcrypto.ErrOperation)
	})

	t.Run("GCMLongNonce", func(t *testing.T) {
		key, err := processor.GenerateKey(128)
		require.NoError(t, err)
		iv := make([]byte, 16)

		cipherText, err := processor.EncryptGCM(key, iv, nil, 128, []byte("testje"))
		require.NoError(t, err)

		decrypted, err := processor.DecryptGCM(key, iv, nil, 128, cipherText)
		require.NoError(t, err)
		assert.Equal(t, []byte("testje"), decrypted)
	})
}

func TestIncrementCounter(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		length int
		want   string
	}{
		{"simple", "000000000000000000000000000000fe", 64, "000000000000000000000000000000ff"},
		{"carry", "000000000000000000000000000000ff", 64, "00000000000000000000000000000100"},
		{"wrap within length", "0000000000000000000000000000aaff", 8, "0000000000000000000000000000aa00"},
		{"wrap partial byte", "0000000000000000000000000000000f", 4, "00000000000000000000000000000000"},
		{"partial byte keeps high bits", "000000000000000000000000000000f7", 3, "000000000000000000000000000000f0"},
		{"full width", "ffffffffffffffffffffffffffffffff", 128, "00000000000000000000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctr := mustHex(t, tt.in)
			incrementCounter(ctr, tt.length)
			assert.Equal(t, tt.want, hex.EncodeToString(ctr))
		})
	}
}
