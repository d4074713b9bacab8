package cryptoalg

import "crypto"

// KDFProcessor derives key material from a secret.
type KDFProcessor interface {
	// HKDF derives lengthBits bits with HKDF extract-and-expand.
	HKDF(hash crypto.Hash, secret, salt, info []byte, lengthBits int) ([]byte, error)

	// PBKDF2 derives lengthBits bits from a password.
	PBKDF2(hash crypto.Hash, password, salt []byte, iterations, lengthBits int) ([]byte, error)
}
