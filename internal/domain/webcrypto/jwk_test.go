//go:build unit
// +build unit

package webcrypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWK_String(t *testing.T) {
	ext := true
	jwk := &JWK{
		Crv:    "P-521",
		D:      "ZA",
		Ext:    &ext,
		KeyOps: []string{"sign"},
		Kty:    KtyEC,
		X:      "eA",
		Y:      "eQ",
	}

	assert.Equal(t, `{"crv":"P-521","d":"ZA","ext":true,"key_ops":["sign"],"kty":"EC","x":"eA","y":"eQ"}`, jwk.String())
	assert.True(t, jwk.IsPrivate())
}

func TestJWK_KeyOpsAlwaysPresent(t *testing.T) {
	jwk := &JWK{Kty: KtyOct, KeyOps: []string{}}
	assert.Equal(t, `{"key_ops":[],"kty":"oct"}`, jwk.String())
}

func TestParseJWK(t *testing.T) {
	jwk, err := ParseJWK([]byte(`{"alg":"A256GCM","ext":false,"k":"AAEC","key_ops":["encrypt","decrypt"],"kty":"oct"}`))
	require.NoError(t, err)
	assert.Equal(t, "A256GCM", jwk.Alg)
	require.NotNil(t, jwk.Ext)
	assert.False(t, *jwk.Ext)
	assert.False(t, jwk.IsPrivate())

	_, err = ParseJWK([]byte(`{"kty":`))
	assert.ErrorIs(t, err, ErrData)
}
