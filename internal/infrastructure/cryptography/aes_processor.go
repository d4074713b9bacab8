package cryptography

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"github.com/r-lib/jose/internal/domain/cryptoalg"
	"github.com/r-lib/jose/internal/domain/webcrypto"
	"github.com/r-lib/jose/internal/pkg/logger"
)

// aesProcessor struct that implements the AESProcessor interface
type aesProcessor struct {
	logger logger.Logger
}

// NewAESProcessor creates and returns a new instance of aesProcessor
func NewAESProcessor(logger logger.Logger) (cryptoalg.AESProcessor, error) {
	return &aesProcessor{
		logger: logger,
	}, nil
}

// GenerateKey generates a random AES key of the specified size in bits.
func (a *aesProcessor) GenerateKey(lengthBits int) ([]byte, error) {
	switch lengthBits {
	case 128, 192, 256:
	default:
		return nil, fmt.Errorf("%w: AES key length must be 128, 192 or 256 bits, got %d", webcrypto.ErrOperation, lengthBits)
	}

	key := make([]byte, lengthBits/8)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate AES key: %w", err)
	}

	a.logger.Debug("Generated AES-", lengthBits, " key")
	return key, nil
}

// EncryptCTR encrypts data in counter mode.
func (a *aesProcessor) EncryptCTR(key, counter []byte, counterLength int, data []byte) ([]byte, error) {
	block, err := newAESBlock(key)
	if err != nil {
		return nil, err
	}
	if len(counter) != aes.BlockSize {
		return nil, fmt.Errorf("%w: AES-CTR counter must be %d bytes", webcrypto.ErrOperation, aes.BlockSize)
	}
	if counterLength < 1 || counterLength > 128 {
		return nil, fmt.Errorf("%w: AES-CTR counter length must be between 1 and 128", webcrypto.ErrOperation)
	}

	blocks := (len(data) + aes.BlockSize - 1) / aes.BlockSize
	if counterLength < 64 && uint64(blocks) > uint64(1)<<counterLength {
		return nil, fmt.Errorf("%w: AES-CTR input of %d blocks would reuse the %d-bit counter", webcrypto.ErrOperation, blocks, counterLength)
	}

	out := make([]byte, len(data))
	ctr := bytes.Clone(counter)
	keystream := make([]byte, aes.BlockSize)
	for off := 0; off < len(data); off += aes.BlockSize {
		block.Encrypt(keystream, ctr)
		end := min(off+aes.BlockSize, len(data))
		subtleXOR(out[off:end], data[off:end], keystream)
		incrementCounter(ctr, counterLength)
	}

	a.logger.Debug("AES-CTR transformed ", len(data), " bytes")
	return out, nil
}

// DecryptCTR is the inverse of EncryptCTR.
func (a *aesProcessor) DecryptCTR(key, counter []byte, counterLength int, data []byte) ([]byte, error) {
	return a.EncryptCTR(key, counter, counterLength, data)
}

// EncryptCBC encrypts data in CBC mode with PKCS#7 padding.
func (a *aesProcessor) EncryptCBC(key, iv, data []byte) ([]byte, error) {
	block, err := newAESBlock(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("%w: AES-CBC iv must be %d bytes", webcrypto.ErrOperation, aes.BlockSize)
	}

	padded := pkcs7Pad(data, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)

	a.logger.Debug("AES-CBC encrypted ", len(data), " bytes")
	return out, nil
}

// DecryptCBC decrypts CBC ciphertext and strips the PKCS#7 padding.
func (a *aesProcessor) DecryptCBC(key, iv, data []byte) ([]byte, error) {
	block, err := newAESBlock(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("%w: AES-CBC iv must be %d bytes", webcrypto.ErrOperation, aes.BlockSize)
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: AES-CBC ciphertext is not a multiple of the block size", webcrypto.ErrOperation)
	}

	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data)

	plainText, err := pkcs7Unpad(out, aes.BlockSize)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("AES-CBC decrypted ", len(plainText), " bytes")
	return plainText, nil
}

// EncryptGCM seals data and appends the first tagLength bits of the
// authentication tag.
func (a *aesProcessor) EncryptGCM(key, iv, additionalData []byte, tagLength int, data []byte) ([]byte, error) {
	gcm, tagSize, err := newGCM(key, len(iv), tagLength)
	if err != nil {
		return nil, err
	}

	sealed := gcm.Seal(nil, iv, data, additionalData)
	out := sealed[:len(data)+tagSize]

	a.logger.Debug("AES-GCM encrypted ", len(data), " bytes")
	return out, nil
}

// DecryptGCM opens data sealed by EncryptGCM. The plaintext is recovered
// from the keystream and then resealed, so truncated tags are checked the
// same way as full ones.
func (a *aesProcessor) DecryptGCM(key, iv, additionalData []byte, tagLength int, data []byte) ([]byte, error) {
	gcm, tagSize, err := newGCM(key, len(iv), tagLength)
	if err != nil {
		return nil, err
	}
	if len(data) < tagSize {
		return nil, fmt.Errorf("%w: AES-GCM ciphertext shorter than the tag", webcrypto.ErrOperation)
	}

	cipherText, tag := data[:len(data)-tagSize], data[len(data)-tagSize:]

	keystream := gcm.Seal(nil, iv, make([]byte, len(cipherText)), nil)
	plainText := make([]byte, len(cipherText))
	subtleXOR(plainText, cipherText, keystream)

	resealed := gcm.Seal(nil, iv, plainText, additionalData)
	if subtle.ConstantTimeCompare(resealed[len(cipherText):len(cipherText)+tagSize], tag) != 1 {
		return nil, fmt.Errorf("%w: AES-GCM authentication failed", webcrypto.ErrOperation)
	}

	a.logger.Debug("AES-GCM decrypted ", len(plainText), " bytes")
	return plainText, nil
}

func newAESBlock(key []byte) (cipher.Block, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", webcrypto.ErrOperation, err)
	}
	return block, nil
}

// newGCM builds a full-tag AEAD for the nonce size and returns the tag size
// in bytes the caller keeps.
func newGCM(key []byte, nonceSize, tagLength int) (cipher.AEAD, int, error) {
	block, err := newAESBlock(key)
	if err != nil {
		return nil, 0, err
	}
	if nonceSize == 0 {
		return nil, 0, fmt.Errorf("%w: AES-GCM iv must not be empty", webcrypto.ErrOperation)
	}

	switch tagLength {
	case 0:
		tagLength = 128
	case 32, 64, 96, 104, 112, 120, 128:
	default:
		return nil, 0, fmt.Errorf("%w: AES-GCM tag length %d", webcrypto.ErrOperation, tagLength)
	}

	gcm, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", webcrypto.ErrOperation, err)
	}
	return gcm, tagLength / 8, nil
}

// incrementCounter adds one to the rightmost length bits of ctr, wrapping
// within those bits and leaving the rest of the block untouched.
func incrementCounter(ctr []byte, length int) {
	for i := len(ctr) - 1; i >= 0 && length > 0; i-- {
		if length >= 8 {
			ctr[i]++
			if ctr[i] != 0 {
				return
			}
			length -= 8
			continue
		}
		mask := byte(1<<length) - 1
		ctr[i] = (ctr[i] &^ mask) | ((ctr[i] + 1) & mask)
		return
	}
}

func subtleXOR(dst, src, keystream []byte) {
	for i := range src {
		dst[i] = src[i] ^ keystream[i]
	}
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty padded data", webcrypto.ErrOperation)
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, fmt.Errorf("%w: invalid PKCS#7 padding", webcrypto.ErrOperation)
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("%w: invalid PKCS#7 padding", webcrypto.ErrOperation)
		}
	}
	return data[:len(data)-padLen], nil
}
