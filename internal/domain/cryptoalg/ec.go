package cryptoalg

import (
	"crypto"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
)

// ECProcessor handles elliptic curve signatures (ECDSA) and key agreement (ECDH).
type ECProcessor interface {
	// GenerateECDSAKeys generates an ECDSA key pair on the specified curve.
	GenerateECDSAKeys(curve elliptic.Curve) (*ecdsa.PrivateKey, *ecdsa.PublicKey, error)

	// GenerateECDHKeys generates an ECDH key pair on the specified curve.
	GenerateECDHKeys(curve ecdh.Curve) (*ecdh.PrivateKey, *ecdh.PublicKey, error)

	// Sign returns the raw r || s signature over the digest of message, each
	// half left-padded to the curve's byte length.
	Sign(hash crypto.Hash, privateKey *ecdsa.PrivateKey, message []byte) ([]byte, error)

	// Verify checks a raw r || s signature. Malformed signatures verify false.
	Verify(hash crypto.Hash, publicKey *ecdsa.PublicKey, signature, message []byte) (bool, error)

	// DeriveBits computes the ECDH shared secret and truncates it to
	// lengthBits bits. A zero length returns the full secret.
	DeriveBits(privateKey *ecdh.PrivateKey, publicKey *ecdh.PublicKey, lengthBits int) ([]byte, error)
}
