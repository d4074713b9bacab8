package webcrypto

import "context"

// SubtleCrypto is the platform cryptographic API: key generation, import
// and export, sign/verify, encrypt/decrypt and bit derivation.
type SubtleCrypto interface {
	// GenerateKey generates a secret key (AES, HMAC).
	GenerateKey(ctx context.Context, algorithm Algorithm, extractable bool, usages []KeyUsage) (*CryptoKey, error)

	// GenerateKeyPair generates an asymmetric key pair (RSA, ECDSA, ECDH).
	// The public key is always extractable.
	GenerateKeyPair(ctx context.Context, algorithm Algorithm, extractable bool, usages []KeyUsage) (*CryptoKeyPair, error)

	// ImportKey imports raw, spki or pkcs8 encoded key material.
	ImportKey(ctx context.Context, format KeyFormat, keyData []byte, algorithm Algorithm, extractable bool, usages []KeyUsage) (*CryptoKey, error)

	// ImportJWK imports a JSON Web Key.
	ImportJWK(ctx context.Context, jwk *JWK, algorithm Algorithm, extractable bool, usages []KeyUsage) (*CryptoKey, error)

	// ExportKey exports a key as raw, spki or pkcs8 bytes.
	ExportKey(ctx context.Context, format KeyFormat, key *CryptoKey) ([]byte, error)

	// ExportJWK exports a key as a JSON Web Key.
	ExportJWK(ctx context.Context, key *CryptoKey) (*JWK, error)

	// Sign signs data with a private or secret key.
	Sign(ctx context.Context, algorithm Algorithm, key *CryptoKey, data []byte) ([]byte, error)

	// Verify checks a signature. A signature that does not match returns
	// false with a nil error.
	Verify(ctx context.Context, algorithm Algorithm, key *CryptoKey, signature, data []byte) (bool, error)

	// Encrypt encrypts data.
	Encrypt(ctx context.Context, algorithm Algorithm, key *CryptoKey, data []byte) ([]byte, error)

	// Decrypt decrypts data.
	Decrypt(ctx context.Context, algorithm Algorithm, key *CryptoKey, data []byte) ([]byte, error)

	// DeriveBits derives length bits from a base key. A zero length derives
	// the full ECDH shared secret.
	DeriveBits(ctx context.Context, algorithm Algorithm, baseKey *CryptoKey, length int) ([]byte, error)

	// Digest hashes data.
	Digest(ctx context.Context, hash HashName, data []byte) ([]byte, error)
}
