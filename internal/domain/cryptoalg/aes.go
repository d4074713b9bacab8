package cryptoalg

// AESProcessor handles AES symmetric encryption operations in the three
// WebCrypto modes.
type AESProcessor interface {
	// GenerateKey generates a random AES key of the specified size in bits.
	// Supported key sizes: 128, 192, 256.
	GenerateKey(lengthBits int) ([]byte, error)

	// EncryptCTR encrypts data in counter mode. Only the rightmost
	// counterLength bits of the 16-byte counter block are incremented.
	EncryptCTR(key, counter []byte, counterLength int, data []byte) ([]byte, error)

	// DecryptCTR is the inverse of EncryptCTR.
	DecryptCTR(key, counter []byte, counterLength int, data []byte) ([]byte, error)

	// EncryptCBC encrypts data in CBC mode with PKCS#7 padding.
	EncryptCBC(key, iv, data []byte) ([]byte, error)

	// DecryptCBC decrypts CBC ciphertext and strips the PKCS#7 padding.
	DecryptCBC(key, iv, data []byte) ([]byte, error)

	// EncryptGCM seals data; the authentication tag of tagLength bits is
	// appended to the ciphertext.
	EncryptGCM(key, iv, additionalData []byte, tagLength int, data []byte) ([]byte, error)

	// DecryptGCM opens data sealed by EncryptGCM.
	DecryptGCM(key, iv, additionalData []byte, tagLength int, data []byte) ([]byte, error)
}
