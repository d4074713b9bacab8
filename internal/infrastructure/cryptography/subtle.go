package cryptography

import (
	"context"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/rsa"
	"fmt"
	"math/big"

	"github.com/r-lib/jose/internal/domain/cryptoalg"
	"github.com/r-lib/jose/internal/domain/webcrypto"
	"github.com/r-lib/jose/internal/pkg/logger"
)

// subtleCrypto implements webcrypto.SubtleCrypto on top of the per-family
// processors. It validates parameters, enforces key usages and
// extractability, and converts between key handles and native key types.
type subtleCrypto struct {
	aes    cryptoalg.AESProcessor
	hmac   cryptoalg.HMACProcessor
	rsa    cryptoalg.RSAProcessor
	ec     cryptoalg.ECProcessor
	kdf    cryptoalg.KDFProcessor
	logger logger.Logger
}

// NewSubtleCrypto creates a SubtleCrypto backed by the standard library.
func NewSubtleCrypto(logger logger.Logger) (webcrypto.SubtleCrypto, error) {
	aesProcessor, err := NewAESProcessor(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES processor: %w", err)
	}
	hmacProcessor, err := NewHMACProcessor(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create HMAC processor: %w", err)
	}
	rsaProcessor, err := NewRSAProcessor(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create RSA processor: %w", err)
	}
	ecProcessor, err := NewECProcessor(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create EC processor: %w", err)
	}
	kdfProcessor, err := NewKDFProcessor(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create KDF processor: %w", err)
	}

	return &subtleCrypto{
		aes:    aesProcessor,
		hmac:   hmacProcessor,
		rsa:    rsaProcessor,
		ec:     ecProcessor,
		kdf:    kdfProcessor,
		logger: logger,
	}, nil
}

func (s *subtleCrypto) GenerateKey(ctx context.Context, algorithm webcrypto.Algorithm, extractable bool, usages []webcrypto.KeyUsage) (*webcrypto.CryptoKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := algorithm.Validate(); err != nil {
		return nil, err
	}

	switch p := algorithm.(type) {
	case *webcrypto.AESKeyGenParams:
		if !p.Name.IsAES() {
			return nil, fmt.Errorf("%w: %s is not an AES algorithm", webcrypto.ErrNotSupported, p.Name)
		}
		keyUsages, err := secretUsages(p.Name, usages)
		if err != nil {
			return nil, err
		}
		key, err := s.aes.GenerateKey(p.Length)
		if err != nil {
			return nil, err
		}
		return webcrypto.NewCryptoKey(webcrypto.KeyTypeSecret, extractable,
			webcrypto.KeyAlgorithm{Name: p.Name, Length: p.Length}, keyUsages, key), nil

	case *webcrypto.HMACKeyGenParams:
		if p.Name != webcrypto.AlgorithmHMAC {
			return nil, fmt.Errorf("%w: %s is not HMAC", webcrypto.ErrNotSupported, p.Name)
		}
		if _, err := cryptoHash(p.Hash); err != nil {
			return nil, err
		}
		keyUsages, err := secretUsages(p.Name, usages)
		if err != nil {
			return nil, err
		}
		length := p.Length
		if length == 0 {
			length = p.Hash.BlockSizeBits()
		}
		key, err := s.hmac.GenerateKey(length)
		if err != nil {
			return nil, err
		}
		return webcrypto.NewCryptoKey(webcrypto.KeyTypeSecret, extractable,
			webcrypto.KeyAlgorithm{Name: p.Name, Length: length, Hash: p.Hash}, keyUsages, key), nil

	default:
		return nil, fmt.Errorf("%w: generateKey for %s yields a key pair or is not supported", webcrypto.ErrNotSupported, algorithm.AlgorithmName())
	}
}

func (s *subtleCrypto) GenerateKeyPair(ctx context.Context, algorithm webcrypto.Algorithm, extractable bool, usages []webcrypto.KeyUsage) (*webcrypto.CryptoKeyPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := algorithm.Validate(); err != nil {
		return nil, err
	}

	switch p := algorithm.(type) {
	case *webcrypto.RSAHashedKeyGenParams:
		if !p.Name.IsRSA() {
			return nil, fmt.Errorf("%w: %s is not an RSA algorithm", webcrypto.ErrNotSupported, p.Name)
		}
		if _, err := cryptoHash(p.Hash); err != nil {
			return nil, err
		}
		privateUsages, publicUsages, err := pairUsages(p.Name, usages)
		if err != nil {
			return nil, err
		}
		exponent, err := publicExponent(p.PublicExponent)
		if err != nil {
			return nil, err
		}
		privateKey, publicKey, err := s.rsa.GenerateKeys(p.ModulusLength, exponent)
		if err != nil {
			return nil, err
		}
		keyAlgorithm := webcrypto.KeyAlgorithm{
			Name:           p.Name,
			ModulusLength:  p.ModulusLength,
			PublicExponent: big.NewInt(int64(exponent)).Bytes(),
			Hash:           p.Hash,
		}
		return &webcrypto.CryptoKeyPair{
			PrivateKey: webcrypto.NewCryptoKey(webcrypto.KeyTypePrivate, extractable, keyAlgorithm, privateUsages, privateKey),
			PublicKey:  webcrypto.NewCryptoKey(webcrypto.KeyTypePublic, true, keyAlgorithm, publicUsages, publicKey),
		}, nil

	case *webcrypto.ECKeyGenParams:
		privateUsages, publicUsages, err := pairUsages(p.Name, usages)
		if err != nil {
			return nil, err
		}
		keyAlgorithm := webcrypto.KeyAlgorithm{Name: p.Name, NamedCurve: p.NamedCurve}

		var privateMaterial, publicMaterial any
		switch p.Name {
		case webcrypto.AlgorithmECDSA:
			curve, err := ellipticCurve(p.NamedCurve)
			if err != nil {
				return nil, err
			}
			privateKey, publicKey, err := s.ec.GenerateECDSAKeys(curve)
			if err != nil {
				return nil, err
			}
			privateMaterial, publicMaterial = privateKey, publicKey
		case webcrypto.AlgorithmECDH:
			curve, err := ecdhCurve(p.NamedCurve)
			if err != nil {
				return nil, err
			}
			privateKey, publicKey, err := s.ec.GenerateECDHKeys(curve)
			if err != nil {
				return nil, err
			}
			privateMaterial, publicMaterial = privateKey, publicKey
		default:
			return nil, fmt.Errorf("%w: %s is not an elliptic curve algorithm", webcrypto.ErrNotSupported, p.Name)
		}
		return &webcrypto.CryptoKeyPair{
			PrivateKey: webcrypto.NewCryptoKey(webcrypto.KeyTypePrivate, extractable, keyAlgorithm, privateUsages, privateMaterial),
			PublicKey:  webcrypto.NewCryptoKey(webcrypto.KeyTypePublic, true, keyAlgorithm, publicUsages, publicMaterial),
		}, nil

	default:
		return nil, fmt.Errorf("%w: generateKey for %s yields a secret key or is not supported", webcrypto.ErrNotSupported, algorithm.AlgorithmName())
	}
}

func (s *subtleCrypto) Sign(ctx context.Context, algorithm webcrypto.Algorithm, key *webcrypto.CryptoKey, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := algorithm.Validate(); err != nil {
		return nil, err
	}
	name := algorithm.AlgorithmName()
	if err := checkParamsType(algorithm); err != nil {
		return nil, err
	}
	if err := requireUsage(key, name, webcrypto.UsageSign); err != nil {
		return nil, err
	}

	switch name {
	case webcrypto.AlgorithmHMAC:
		hash, err := cryptoHash(key.Algorithm.Hash)
		if err != nil {
			return nil, err
		}
		return s.hmac.Sign(hash, key.Material().([]byte), data)

	case webcrypto.AlgorithmRSASSAPKCS1v15:
		hash, err := cryptoHash(key.Algorithm.Hash)
		if err != nil {
			return nil, err
		}
		return s.rsa.SignPKCS1v15(hash, key.Material().(*rsa.PrivateKey), data)

	case webcrypto.AlgorithmRSAPSS:
		p, ok := algorithm.(*webcrypto.RSAPSSParams)
		if !ok {
			return nil, paramsTypeError(name, "RSAPSSParams")
		}
		hash, err := cryptoHash(key.Algorithm.Hash)
		if err != nil {
			return nil, err
		}
		return s.rsa.SignPSS(hash, p.SaltLength, key.Material().(*rsa.PrivateKey), data)

	case webcrypto.AlgorithmECDSA:
		p, ok := algorithm.(*webcrypto.ECDSAParams)
		if !ok {
			return nil, paramsTypeError(name, "ECDSAParams")
		}
		hash, err := cryptoHash(p.Hash)
		if err != nil {
			return nil, err
		}
		return s.ec.Sign(hash, key.Material().(*ecdsa.PrivateKey), data)

	default:
		return nil, fmt.Errorf("%w: sign with %s", webcrypto.ErrNotSupported, name)
	}
}

func (s *subtleCrypto) Verify(ctx context.Context, algorithm webcrypto.Algorithm, key *webcrypto.CryptoKey, signature, data []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := algorithm.Validate(); err != nil {
		return false, err
	}
	name := algorithm.AlgorithmName()
	if err := checkParamsType(algorithm); err != nil {
		return false, err
	}
	if err := requireUsage(key, name, webcrypto.UsageVerify); err != nil {
		return false, err
	}

	switch name {
	case webcrypto.AlgorithmHMAC:
		hash, err := cryptoHash(key.Algorithm.Hash)
		if err != nil {
			return false, err
		}
		return s.hmac.Verify(hash, key.Material().([]byte), signature, data)

	case webcrypto.AlgorithmRSASSAPKCS1v15:
		hash, err := cryptoHash(key.Algorithm.Hash)
		if err != nil {
			return false, err
		}
		return s.rsa.VerifyPKCS1v15(hash, key.Material().(*rsa.PublicKey), signature, data)

	case webcrypto.AlgorithmRSAPSS:
		p, ok := algorithm.(*webcrypto.RSAPSSParams)
		if !ok {
			return false, paramsTypeError(name, "RSAPSSParams")
		}
		hash, err := cryptoHash(key.Algorithm.Hash)
		if err != nil {
			return false, err
		}
		return s.rsa.VerifyPSS(hash, p.SaltLength, key.Material().(*rsa.PublicKey), signature, data)

	case webcrypto.AlgorithmECDSA:
		p, ok := algorithm.(*webcrypto.ECDSAParams)
		if !ok {
			return false, paramsTypeError(name, "ECDSAParams")
		}
		hash, err := cryptoHash(p.Hash)
		if err != nil {
			return false, err
		}
		return s.ec.Verify(hash, key.Material().(*ecdsa.PublicKey), signature, data)

	default:
		return false, fmt.Errorf("%w: verify with %s", webcrypto.ErrNotSupported, name)
	}
}

func (s *subtleCrypto) Encrypt(ctx context.Context, algorithm webcrypto.Algorithm, key *webcrypto.CryptoKey, data []byte) ([]byte, error) {
	return s.crypt(ctx, algorithm, key, data, webcrypto.UsageEncrypt)
}

func (s *subtleCrypto) Decrypt(ctx context.Context, algorithm webcrypto.Algorithm, key *webcrypto.CryptoKey, data []byte) ([]byte, error) {
	return s.crypt(ctx, algorithm, key, data, webcrypto.UsageDecrypt)
}

func (s *subtleCrypto) crypt(ctx context.Context, algorithm webcrypto.Algorithm, key *webcrypto.CryptoKey, data []byte, usage webcrypto.KeyUsage) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := algorithm.Validate(); err != nil {
		return nil, err
	}
	name := algorithm.AlgorithmName()
	if err := checkParamsType(algorithm); err != nil {
		return nil, err
	}
	if err := requireUsage(key, name, usage); err != nil {
		return nil, err
	}
	encrypt := usage == webcrypto.UsageEncrypt

	switch p := algorithm.(type) {
	case *webcrypto.AESCtrParams:
		if encrypt {
			return s.aes.EncryptCTR(key.Material().([]byte), p.Counter, p.Length, data)
		}
		return s.aes.DecryptCTR(key.Material().([]byte), p.Counter, p.Length, data)

	case *webcrypto.AESCbcParams:
		if encrypt {
			return s.aes.EncryptCBC(key.Material().([]byte), p.IV, data)
		}
		return s.aes.DecryptCBC(key.Material().([]byte), p.IV, data)

	case *webcrypto.AESGcmParams:
		if encrypt {
			return s.aes.EncryptGCM(key.Material().([]byte), p.IV, p.AdditionalData, p.TagLength, data)
		}
		return s.aes.DecryptGCM(key.Material().([]byte), p.IV, p.AdditionalData, p.TagLength, data)

	case *webcrypto.RSAOAEPParams:
		hash, err := cryptoHash(key.Algorithm.Hash)
		if err != nil {
			return nil, err
		}
		if encrypt {
			return s.rsa.EncryptOAEP(hash, key.Material().(*rsa.PublicKey), p.Label, data)
		}
		return s.rsa.DecryptOAEP(hash, key.Material().(*rsa.PrivateKey), p.Label, data)

	default:
		return nil, fmt.Errorf("%w: %s with %s", webcrypto.ErrNotSupported, usage, name)
	}
}

func (s *subtleCrypto) DeriveBits(ctx context.Context, algorithm webcrypto.Algorithm, baseKey *webcrypto.CryptoKey, length int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := algorithm.Validate(); err != nil {
		return nil, err
	}
	name := algorithm.AlgorithmName()
	if err := checkParamsType(algorithm); err != nil {
		return nil, err
	}
	if err := requireUsage(baseKey, name, webcrypto.UsageDeriveBits); err != nil {
		return nil, err
	}

	switch p := algorithm.(type) {
	case *webcrypto.ECDHKeyDeriveParams:
		peer := p.Public
		if peer.Type != webcrypto.KeyTypePublic || peer.Algorithm.Name != webcrypto.AlgorithmECDH {
			return nil, fmt.Errorf("%w: ECDH peer must be an ECDH public key", webcrypto.ErrInvalidAccess)
		}
		if peer.Algorithm.NamedCurve != baseKey.Algorithm.NamedCurve {
			return nil, fmt.Errorf("%w: ECDH peer is on %s, base key on %s", webcrypto.ErrInvalidAccess, peer.Algorithm.NamedCurve, baseKey.Algorithm.NamedCurve)
		}
		return s.ec.DeriveBits(baseKey.Material().(*ecdh.PrivateKey), peer.Material().(*ecdh.PublicKey), length)

	case *webcrypto.HKDFParams:
		hash, err := cryptoHash(p.Hash)
		if err != nil {
			return nil, err
		}
		return s.kdf.HKDF(hash, baseKey.Material().([]byte), p.Salt, p.Info, length)

	case *webcrypto.PBKDF2Params:
		hash, err := cryptoHash(p.Hash)
		if err != nil {
			return nil, err
		}
		return s.kdf.PBKDF2(hash, baseKey.Material().([]byte), p.Salt, p.Iterations, length)

	default:
		return nil, fmt.Errorf("%w: deriveBits with %s", webcrypto.ErrNotSupported, name)
	}
}

func (s *subtleCrypto) Digest(ctx context.Context, hashName webcrypto.HashName, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hash, err := cryptoHash(hashName)
	if err != nil {
		return nil, err
	}
	return digestOf(hash, data)
}

// checkParamsType rejects an operation params record whose type belongs to
// another algorithm than the one it names.
func checkParamsType(algorithm webcrypto.Algorithm) error {
	name := algorithm.AlgorithmName()
	var ok bool
	var want string
	switch name {
	case webcrypto.AlgorithmHMAC, webcrypto.AlgorithmRSASSAPKCS1v15:
		_, ok = algorithm.(*webcrypto.AlgorithmIdentifier)
		want = "AlgorithmIdentifier"
	case webcrypto.AlgorithmRSAPSS:
		_, ok = algorithm.(*webcrypto.RSAPSSParams)
		want = "RSAPSSParams"
	case webcrypto.AlgorithmECDSA:
		_, ok = algorithm.(*webcrypto.ECDSAParams)
		want = "ECDSAParams"
	case webcrypto.AlgorithmAESCTR:
		_, ok = algorithm.(*webcrypto.AESCtrParams)
		want = "AESCtrParams"
	case webcrypto.AlgorithmAESCBC:
		_, ok = algorithm.(*webcrypto.AESCbcParams)
		want = "AESCbcParams"
	case webcrypto.AlgorithmAESGCM:
		_, ok = algorithm.(*webcrypto.AESGcmParams)
		want = "AESGcmParams"
	case webcrypto.AlgorithmRSAOAEP:
		_, ok = algorithm.(*webcrypto.RSAOAEPParams)
		want = "RSAOAEPParams"
	case webcrypto.AlgorithmECDH:
		_, ok = algorithm.(*webcrypto.ECDHKeyDeriveParams)
		want = "ECDHKeyDeriveParams"
	case webcrypto.AlgorithmHKDF:
		_, ok = algorithm.(*webcrypto.HKDFParams)
		want = "HKDFParams"
	case webcrypto.AlgorithmPBKDF2:
		_, ok = algorithm.(*webcrypto.PBKDF2Params)
		want = "PBKDF2Params"
	default:
		return nil
	}
	if !ok {
		return paramsTypeError(name, want)
	}
	return nil
}

func paramsTypeError(name webcrypto.AlgorithmName, want string) error {
	return fmt.Errorf("%w: %s requires %s", webcrypto.ErrSyntax, name, want)
}

// publicExponent decodes a big-endian exponent such as [0x01, 0x00, 0x01].
func publicExponent(b []byte) (int, error) {
	e := new(big.Int).SetBytes(b)
	if !e.IsInt64() || e.Int64() > 1<<31-1 || e.Sign() == 0 {
		return 0, fmt.Errorf("%w: RSA public exponent out of range", webcrypto.ErrNotSupported)
	}
	return int(e.Int64()), nil
}
