package cryptography

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/r-lib/jose/internal/domain/cryptoalg"
	"github.com/r-lib/jose/internal/domain/webcrypto"
	"github.com/r-lib/jose/internal/pkg/logger"
)

// rsaProcessor struct that implements the RSAProcessor interface
type rsaProcessor struct {
	logger logger.Logger
}

// NewRSAProcessor creates and returns a new instance of rsaProcessor
func NewRSAProcessor(logger logger.Logger) (cryptoalg.RSAProcessor, error) {
	return &rsaProcessor{
		logger: logger,
	}, nil
}

// GenerateKeys generates an RSA key pair. The standard library only produces
// keys with the exponent 65537.
func (r *rsaProcessor) GenerateKeys(modulusBits, publicExponent int) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	if publicExponent != 65537 {
		return nil, nil, fmt.Errorf("%w: RSA public exponent %d", webcrypto.ErrNotSupported, publicExponent)
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, modulusBits)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to generate RSA keys: %v", webcrypto.ErrOperation, err)
	}
	publicKey := &privateKey.PublicKey

	r.logger.Info("Generated RSA-", modulusBits, " key pair")
	return privateKey, publicKey, nil
}

// SignPKCS1v15 signs the digest of data with RSASSA-PKCS1-v1_5.
func (r *rsaProcessor) SignPKCS1v15(hash crypto.Hash, privateKey *rsa.PrivateKey, data []byte) ([]byte, error) {
	if privateKey == nil {
		return nil, errors.New("private key cannot be nil")
	}
	digest, err := digestOf(hash, data)
	if err != nil {
		return nil, err
	}

	signature, err := rsa.SignPKCS1v15(rand.Reader, privateKey, hash, digest)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to sign data: %v", webcrypto.ErrOperation, err)
	}

	r.logger.Debug("RSASSA-PKCS1-v1_5 signing succeeded")
	return signature, nil
}

// VerifyPKCS1v15 verifies an RSASSA-PKCS1-v1_5 signature.
func (r *rsaProcessor) VerifyPKCS1v15(hash crypto.Hash, publicKey *rsa.PublicKey, signature, data []byte) (bool, error) {
	if publicKey == nil {
		return false, errors.New("public key cannot be nil")
	}
	digest, err := digestOf(hash, data)
	if err != nil {
		return false, err
	}

	if err := rsa.VerifyPKCS1v15(publicKey, hash, digest, signature); err != nil {
		r.logger.Debug("RSASSA-PKCS1-v1_5 signature rejected: ", err)
		return false, nil
	}
	return true, nil
}

// SignPSS signs the digest of data with RSA-PSS.
func (r *rsaProcessor) SignPSS(hash crypto.Hash, saltLength int, privateKey *rsa.PrivateKey, data []byte) ([]byte, error) {
	if privateKey == nil {
		return nil, errors.New("private key cannot be nil")
	}
	digest, err := digestOf(hash, data)
	if err != nil {
		return nil, err
	}

	if saltLength == 0 {
		signature, err := signPSSUnsalted(privateKey, hash, digest)
		if err != nil {
			return nil, err
		}
		r.logger.Debug("RSA-PSS signing without salt succeeded")
		return signature, nil
	}

	opts, err := pssOptions(hash, saltLength)
	if err != nil {
		return nil, err
	}

	signature, err := rsa.SignPSS(rand.Reader, privateKey, hash, digest, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to sign data: %v", webcrypto.ErrOperation, err)
	}

	r.logger.Debug("RSA-PSS signing succeeded")
	return signature, nil
}

// VerifyPSS verifies an RSA-PSS signature.
func (r *rsaProcessor) VerifyPSS(hash crypto.Hash, saltLength int, publicKey *rsa.PublicKey, signature, data []byte) (bool, error) {
	if publicKey == nil {
		return false, errors.New("public key cannot be nil")
	}
	digest, err := digestOf(hash, data)
	if err != nil {
		return false, err
	}

	if saltLength == 0 {
		return verifyPSSUnsalted(publicKey, hash, digest, signature), nil
	}

	opts, err := pssOptions(hash, saltLength)
	if err != nil {
		return false, err
	}

	if err := rsa.VerifyPSS(publicKey, hash, digest, signature, opts); err != nil {
		r.logger.Debug("RSA-PSS signature rejected: ", err)
		return false, nil
	}
	return true, nil
}

// EncryptOAEP encrypts a single message block with RSA-OAEP.
func (r *rsaProcessor) EncryptOAEP(hash crypto.Hash, publicKey *rsa.PublicKey, label, plainText []byte) ([]byte, error) {
	if publicKey == nil {
		return nil, errors.New("public key cannot be nil")
	}
	if !hash.Available() {
		return nil, fmt.Errorf("%w: hash %v", webcrypto.ErrNotSupported, hash)
	}

	cipherText, err := rsa.EncryptOAEP(hash.New(), rand.Reader, publicKey, plainText, label)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encrypt data: %v", webcrypto.ErrOperation, err)
	}

	r.logger.Debug("RSA-OAEP encryption succeeded")
	return cipherText, nil
}

// DecryptOAEP decrypts RSA-OAEP ciphertext.
func (r *rsaProcessor) DecryptOAEP(hash crypto.Hash, privateKey *rsa.PrivateKey, label, cipherText []byte) ([]byte, error) {
	if privateKey == nil {
		return nil, errors.New("private key cannot be nil")
	}
	if !hash.Available() {
		return nil, fmt.Errorf("%w: hash %v", webcrypto.ErrNotSupported, hash)
	}

	plainText, err := rsa.DecryptOAEP(hash.New(), rand.Reader, privateKey, cipherText, label)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decrypt data: %v", webcrypto.ErrOperation, err)
	}

	r.logger.Debug("RSA-OAEP decryption succeeded")
	return plainText, nil
}

// pssOptions maps a positive WebCrypto salt length onto rsa.PSSOptions. The
// standard library reads 0 as "auto", so unsalted PSS goes through
// signPSSUnsalted and verifyPSSUnsalted instead.
func pssOptions(hash crypto.Hash, saltLength int) (*rsa.PSSOptions, error) {
	if saltLength <= 0 {
		return nil, fmt.Errorf("%w: RSA-PSS salt length %d", webcrypto.ErrOperation, saltLength)
	}
	return &rsa.PSSOptions{SaltLength: saltLength, Hash: hash}, nil
}

// signPSSUnsalted signs with an empty salt (RFC 8017 8.1.1 with sLen = 0).
func signPSSUnsalted(privateKey *rsa.PrivateKey, hash crypto.Hash, digest []byte) ([]byte, error) {
	em, err := encodePSSUnsalted(hash, digest, privateKey.N.BitLen()-1)
	if err != nil {
		return nil, err
	}

	s, err := rsaPrivateOp(privateKey, new(big.Int).SetBytes(em))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to sign data: %v", webcrypto.ErrOperation, err)
	}
	signature := s.FillBytes(make([]byte, privateKey.Size()))

	if !verifyPSSUnsalted(&privateKey.PublicKey, hash, digest, signature) {
		return nil, fmt.Errorf("%w: RSA-PSS signature failed its own verification", webcrypto.ErrOperation)
	}
	return signature, nil
}

// verifyPSSUnsalted checks a signature made with an empty salt. With sLen = 0
// the encoding is deterministic, so the recovered message representative
// must equal the re-encoded digest.
func verifyPSSUnsalted(publicKey *rsa.PublicKey, hash crypto.Hash, digest, signature []byte) bool {
	if len(signature) != publicKey.Size() {
		return false
	}
	s := new(big.Int).SetBytes(signature)
	if s.Cmp(publicKey.N) >= 0 {
		return false
	}

	emBits := publicKey.N.BitLen() - 1
	m := new(big.Int).Exp(s, big.NewInt(int64(publicKey.E)), publicKey.N)
	if m.BitLen() > emBits {
		return false
	}

	em, err := encodePSSUnsalted(hash, digest, emBits)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(m.FillBytes(make([]byte, len(em))), em) == 1
}

// encodePSSUnsalted is EMSA-PSS-ENCODE (RFC 8017 9.1.1) with an empty salt.
func encodePSSUnsalted(hash crypto.Hash, digest []byte, emBits int) ([]byte, error) {
	hLen := hash.Size()
	emLen := (emBits + 7) / 8
	if emLen < hLen+2 {
		return nil, fmt.Errorf("%w: RSA key too small for RSA-PSS with %v", webcrypto.ErrOperation, hash)
	}

	h := hash.New()
	h.Write(make([]byte, 8))
	h.Write(digest)
	mHash := h.Sum(nil)

	em := make([]byte, emLen)
	db := em[:emLen-hLen-1]
	db[len(db)-1] = 0x01
	mgf1XOR(db, hash, mHash)
	db[0] &= 0xff >> (8*emLen - emBits)
	copy(em[emLen-hLen-1:], mHash)
	em[emLen-1] = 0xbc
	return em, nil
}

// mgf1XOR xors out with the MGF1 mask generated from seed.
func mgf1XOR(out []byte, hash crypto.Hash, seed []byte) {
	var counter [4]byte
	done := 0
	for c := uint32(0); done < len(out); c++ {
		binary.BigEndian.PutUint32(counter[:], c)
		h := hash.New()
		h.Write(seed)
		h.Write(counter[:])
		for _, b := range h.Sum(nil) {
			if done == len(out) {
				break
			}
			out[done] ^= b
			done++
		}
	}
}

// rsaPrivateOp computes m^d mod n with random blinding.
func rsaPrivateOp(privateKey *rsa.PrivateKey, m *big.Int) (*big.Int, error) {
	n := privateKey.N
	var blind, unblind *big.Int
	for unblind == nil {
		var err error
		blind, err = rand.Int(rand.Reader, n)
		if err != nil {
			return nil, err
		}
		if blind.Sign() == 0 {
			continue
		}
		unblind = new(big.Int).ModInverse(blind, n)
	}

	c := new(big.Int).Exp(blind, big.NewInt(int64(privateKey.E)), n)
	c.Mul(c, m).Mod(c, n)
	s := c.Exp(c, privateKey.D, n)
	s.Mul(s, unblind).Mod(s, n)
	return s, nil
}

func digestOf(hash crypto.Hash, data []byte) ([]byte, error) {
	if !hash.Available() {
		return nil, fmt.Errorf("%w: hash %v", webcrypto.ErrNotSupported, hash)
	}
	h := hash.New()
	h.Write(data)
	return h.Sum(nil), nil
}
