package webcrypto

import (
	"fmt"
	"slices"
)

// KeyType is the WebCrypto key type.
type KeyType string

// Key types
const (
	KeyTypeSecret  KeyType = "secret"
	KeyTypePrivate KeyType = "private"
	KeyTypePublic  KeyType = "public"
)

// KeyUsage names an operation a key may be used for.
type KeyUsage string

// Key usages
const (
	UsageEncrypt    KeyUsage = "encrypt"
	UsageDecrypt    KeyUsage = "decrypt"
	UsageSign       KeyUsage = "sign"
	UsageVerify     KeyUsage = "verify"
	UsageDeriveKey  KeyUsage = "deriveKey"
	UsageDeriveBits KeyUsage = "deriveBits"
	UsageWrapKey    KeyUsage = "wrapKey"
	UsageUnwrapKey  KeyUsage = "unwrapKey"
)

// ParseKeyUsage validates a usage string.
func ParseKeyUsage(s string) (KeyUsage, error) {
	u := KeyUsage(s)
	switch u {
	case UsageEncrypt, UsageDecrypt, UsageSign, UsageVerify,
		UsageDeriveKey, UsageDeriveBits, UsageWrapKey, UsageUnwrapKey:
		return u, nil
	default:
		return "", fmt.Errorf("%w: unrecognized key usage %q", ErrSyntax, s)
	}
}

// KeyAlgorithm describes the algorithm a key is bound to, as exposed on
// CryptoKey.algorithm.
type KeyAlgorithm struct {
	Name           AlgorithmName `json:"name"`
	Length         int           `json:"length,omitempty"`
	Hash           HashName      `json:"hash,omitempty"`
	NamedCurve     NamedCurve    `json:"namedCurve,omitempty"`
	ModulusLength  int           `json:"modulusLength,omitempty"`
	PublicExponent []byte        `json:"publicExponent,omitempty"`
}

// CryptoKey is an opaque key handle. The key material is only reachable by
// the SubtleCrypto implementation that created the handle.
type CryptoKey struct {
	Type        KeyType
	Extractable bool
	Algorithm   KeyAlgorithm
	Usages      []KeyUsage

	material any
}

// NewCryptoKey wraps key material into a handle.
func NewCryptoKey(keyType KeyType, extractable bool, algorithm KeyAlgorithm, usages []KeyUsage, material any) *CryptoKey {
	return &CryptoKey{
		Type:        keyType,
		Extractable: extractable,
		Algorithm:   algorithm,
		Usages:      slices.Clone(usages),
		material:    material,
	}
}

// Material returns the wrapped key material.
func (k *CryptoKey) Material() any {
	return k.material
}

// HasUsage reports whether the key permits the given usage.
func (k *CryptoKey) HasUsage(usage KeyUsage) bool {
	return slices.Contains(k.Usages, usage)
}

// CryptoKeyPair holds the two halves of an asymmetric key.
type CryptoKeyPair struct {
	PrivateKey *CryptoKey
	PublicKey  *CryptoKey
}
