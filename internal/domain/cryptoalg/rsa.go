package cryptoalg

import (
	"crypto"
	"crypto/rsa"
)

// RSAProcessor handles RSA asymmetric cryptographic operations.
type RSAProcessor interface {
	// GenerateKeys generates an RSA key pair with the specified modulus size
	// and public exponent.
	GenerateKeys(modulusBits, publicExponent int) (*rsa.PrivateKey, *rsa.PublicKey, error)

	// SignPKCS1v15 signs the digest of data with RSASSA-PKCS1-v1_5.
	SignPKCS1v15(hash crypto.Hash, privateKey *rsa.PrivateKey, data []byte) ([]byte, error)

	// VerifyPKCS1v15 verifies an RSASSA-PKCS1-v1_5 signature.
	VerifyPKCS1v15(hash crypto.Hash, publicKey *rsa.PublicKey, signature, data []byte) (bool, error)

	// SignPSS signs the digest of data with RSA-PSS using saltLength bytes of salt.
	SignPSS(hash crypto.Hash, saltLength int, privateKey *rsa.PrivateKey, data []byte) ([]byte, error)

	// VerifyPSS verifies an RSA-PSS signature.
	VerifyPSS(hash crypto.Hash, saltLength int, publicKey *rsa.PublicKey, signature, data []byte) (bool, error)

	// EncryptOAEP encrypts a single message block with RSA-OAEP.
	// NOTE: the message must be shorter than the modulus minus the OAEP overhead.
	EncryptOAEP(hash crypto.Hash, publicKey *rsa.PublicKey, label, plainText []byte) ([]byte, error)

	// DecryptOAEP decrypts RSA-OAEP ciphertext.
	DecryptOAEP(hash crypto.Hash, privateKey *rsa.PrivateKey, label, cipherText []byte) ([]byte, error)
}
