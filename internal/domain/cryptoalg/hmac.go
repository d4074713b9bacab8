package cryptoalg

import "crypto"

// HMACProcessor handles keyed-hash message authentication.
type HMACProcessor interface {
	// GenerateKey generates a random key of lengthBits bits.
	GenerateKey(lengthBits int) ([]byte, error)

	// Sign computes the MAC of data.
	Sign(hash crypto.Hash, key, data []byte) ([]byte, error)

	// Verify recomputes the MAC and compares it in constant time.
	Verify(hash crypto.Hash, key, signature, data []byte) (bool, error)
}
