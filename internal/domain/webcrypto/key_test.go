//go:build unit
// +build unit

package webcrypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyUsage(t *testing.T) {
	u, err := ParseKeyUsage("deriveBits")
	require.NoError(t, err)
	assert.Equal(t, UsageDeriveBits, u)

	_, err = ParseKeyUsage("DeriveBits")
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestNewCryptoKey(t *testing.T) {
	usages := []KeyUsage{UsageSign, UsageVerify}
	material := []byte{1, 2, 3}

	key := NewCryptoKey(KeyTypeSecret, true, KeyAlgorithm{Name: AlgorithmHMAC, Hash: HashSHA256, Length: 24}, usages, material)

	usages[0] = UsageEncrypt
	assert.Equal(t, []KeyUsage{UsageSign, UsageVerify}, key.Usages)
	assert.True(t, key.HasUsage(UsageVerify))
	assert.False(t, key.HasUsage(UsageEncrypt))
	assert.Equal(t, material, key.Material())
}
